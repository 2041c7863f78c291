package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/nerrad567/gray-logic-sensorbridge/internal/infrastructure/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LoggingConfig
	}{
		{"json stdout", config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}},
		{"text stderr", config.LoggingConfig{Level: "debug", Format: "text", Output: "stderr"}},
		{"discard", config.LoggingConfig{Output: "discard"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if logger := New(tt.cfg, "1.0.0"); logger == nil {
				t.Fatal("expected non-nil logger")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if result := parseLevel(tt.input); result != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestOutputWriter(t *testing.T) {
	if outputWriter("stderr") != os.Stderr {
		t.Error("outputWriter(stderr) did not return os.Stderr")
	}
	if outputWriter("discard") != io.Discard {
		t.Error("outputWriter(discard) did not return io.Discard")
	}
	if outputWriter("") != os.Stdout {
		t.Error("outputWriter(\"\") did not default to os.Stdout")
	}
}

func TestNewHandler_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "text", slog.LevelInfo))

	logger.Info("subscribed", "topic", "sensors/t1")

	if !strings.Contains(buf.String(), "topic=sensors/t1") {
		t.Errorf("text output = %q, want key=value pairs", buf.String())
	}
}

func TestNewHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "json", slog.LevelWarn))

	logger.Info("dropped")
	logger.Warn("kept")

	output := buf.String()
	if strings.Contains(output, "dropped") {
		t.Error("info entry written at warn level")
	}
	if !strings.Contains(output, "kept") {
		t.Error("warn entry missing at warn level")
	}
}

func TestLogger_With(t *testing.T) {
	logger := Discard()
	childLogger := logger.With("component", "flusher")

	if childLogger == nil {
		t.Fatal("expected non-nil child logger")
	}
	if childLogger == logger {
		t.Error("expected child logger to be different from parent")
	}
}

func TestDefault(t *testing.T) {
	if logger := Default(); logger == nil {
		t.Fatal("expected non-nil default logger")
	}
}

func TestLogger_OutputContainsDefaultFields(t *testing.T) {
	var buf bytes.Buffer

	handler := newHandler(&buf, "json", slog.LevelInfo).WithAttrs([]slog.Attr{
		slog.String("service", serviceName),
		slog.String("version", "test"),
	})

	logger := &Logger{Logger: slog.New(handler)}
	logger.Info("point written", "topic", "sensors/t1")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}

	if logEntry["service"] != serviceName {
		t.Errorf("expected service=%q, got %v", serviceName, logEntry["service"])
	}
	if logEntry["version"] != "test" {
		t.Errorf("expected version='test', got %v", logEntry["version"])
	}
	if logEntry["msg"] != "point written" {
		t.Errorf("expected msg='point written', got %v", logEntry["msg"])
	}
	if logEntry["topic"] != "sensors/t1" {
		t.Errorf("expected topic='sensors/t1', got %v", logEntry["topic"])
	}
}
