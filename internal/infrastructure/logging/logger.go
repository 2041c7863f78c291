package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nerrad567/gray-logic-sensorbridge/internal/infrastructure/config"
)

// serviceName is attached to every log entry.
const serviceName = "sensorbridge"

// Logger wraps slog.Logger with sensor bridge defaults.
//
// All methods are safe for concurrent use; the ingestion callbacks, every
// flusher, and the HTTP handlers share one Logger.
type Logger struct {
	*slog.Logger
}

// New creates a Logger from the logging section of config.yaml.
//
// Output is "stdout" (default), "stderr", or "discard". Format is "json"
// (default) or "text". Every entry carries service and version attributes.
func New(cfg config.LoggingConfig, version string) *Logger {
	handler := newHandler(outputWriter(cfg.Output), cfg.Format, parseLevel(cfg.Level))

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", serviceName),
		slog.String("version", version),
	})

	return &Logger{
		Logger: slog.New(handler),
	}
}

// outputWriter maps the configured output name to a writer.
func outputWriter(output string) io.Writer {
	switch strings.ToLower(output) {
	case "stderr":
		return os.Stderr
	case "discard":
		return io.Discard
	default:
		return os.Stdout
	}
}

// newHandler builds the slog handler for the configured format.
func newHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(format) == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// parseLevel converts a string log level to slog.Level.
//
// Supported levels: debug, info, warn, error
// Defaults to info if unrecognised.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a new Logger with additional default attributes.
//
// Example:
//
//	flushLogger := logger.With("component", "flusher", "flusher", "fast")
//	flushLogger.Info("tick complete") // Includes component=flusher
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// Default creates a logger for use before configuration is loaded.
// It writes JSON to stdout at info level.
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}, "dev")
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *Logger {
	return New(config.LoggingConfig{Output: "discard"}, "test")
}
