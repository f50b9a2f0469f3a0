// Package config provides 12-factor configuration for the chat client and
// the simulated backend.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags in cmd/chat override environment values.
//
// Configuration Sections:
//   - API: REST collaborator (base URL, token, timeout, retries, rate limit)
//   - Stream: WebSocket handshake timeout, auth close code, stop policy
//   - Logging: Log level, format and output
//   - Metrics: Prometheus listener
//   - Sim: Simulated backend address, token and chunk pacing
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Talking to %s\n", cfg.API.BaseURL)
//
// Environment Variables:
//   - CHAT_API_URL, CHAT_TOKEN, CHAT_HTTP_TIMEOUT, CHAT_HTTP_RETRIES, CHAT_HTTP_RPS
//   - CHAT_WS_HANDSHAKE_TIMEOUT, CHAT_WS_AUTH_CLOSE_CODE, CHAT_STOP_POLICY, CHAT_STOPPED_NOTICE
//   - LOG_LEVEL, LOG_DEV, LOG_OUTPUT
//   - METRICS_ADDR
//   - SIM_ADDR, SIM_TOKEN, SIM_CHUNK_DELAY
package config
