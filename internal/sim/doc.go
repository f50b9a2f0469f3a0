// Package sim is an in-process chat backend speaking the same REST and
// WebSocket protocol as the production server.
//
// It keeps sessions in memory, authenticates with a single bearer token (held
// only as a bcrypt hash) and answers every turn through a Responder (echo by
// default), streaming the reply word by word. cmd/chatsim runs it for local
// development and the integration tests drive the real client against it.
//
// Routes:
//   - POST /api/chat/sessions                  create a session
//   - GET  /api/chat/sessions                  list sessions, newest first
//   - GET  /api/chat/sessions/:id/messages     persisted history
//   - GET  /api/chat/ws/:id?token=...          chat socket
//   - GET  /health
package sim
