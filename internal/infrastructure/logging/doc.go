// Package logging provides structured logging for the sensor bridge.
//
// This package wraps Go's standard log/slog package so every component
// logs with the same handler, level filtering, and default fields.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("subscribed", "topic", "sensors/t1")
//	logger.Error("point write failed", "error", err)
//
// Never log the InfluxDB token or MQTT password.
package logging
