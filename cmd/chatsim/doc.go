// Package main runs the simulated chat backend.
//
// The simulator serves the same REST and WebSocket protocol as the
// production chat server from memory, answering each turn with an echo
// streamed word by word. Point the client at it to develop without the
// real backend.
//
// Configuration:
//   - Environment variables (SIM_ADDR, SIM_TOKEN, SIM_CHUNK_DELAY, LOG_*)
//   - CLI flags (override env vars)
//
// Usage:
//
//	./chatsim -addr :8000 -token dev-token
//	CHAT_TOKEN=dev-token ./chat
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
