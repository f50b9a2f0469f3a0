// Package main is the terminal chat client.
//
// Running chat with no subcommand opens the interactive view. The sessions
// and history subcommands print saved conversations without opening a
// socket.
//
// Configuration comes from the environment (CHAT_*, LOG_*, METRICS_ADDR);
// flags override it.
//
// Usage:
//
//	chat --api-url http://127.0.0.1:8000 --token $TOKEN
//	chat sessions
//	chat history <session-id> --format yaml
package main
