// Package logging provides structured logging for gelfship's own diagnostics.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the command and the transports.
// It is deliberately separate from the GELF handler: entries written here
// stay local and are never shipped to Graylog.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output, or colourised console output via tint, for development
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error, critical)
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error, critical
//	  format: "json"     # json, text, console
//	  output: "stderr"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("forwarding", "transport", "udp")
//
// # Security
//
// Never log secrets, tokens, or passwords.
package logging
