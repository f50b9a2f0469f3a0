// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// The interactive client owns the terminal, so its logs normally go to a
// file (see LOG_OUTPUT); the simulator logs to stderr.
//
// Example Usage:
//
//	logger, err := logging.New(logging.Config{Level: "info", Output: "chat.log"})
//	logger.Info("Connected", zap.String("session_id", id))
//	logger.Warn("Socket closed", zap.Int("code", code))
package logging
