package observability

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestInitLogger(t *testing.T) {
	InitLogger(false)
	if Logger == nil {
		t.Error("Logger should not be nil after initialization")
	}

	InitLogger(true)
	if Logger == nil {
		t.Error("Logger should not be nil after initialization")
	}

	InitLoggerWithLevel(false, slog.LevelDebug)
	if Logger == nil {
		t.Error("Logger should not be nil after initialization")
	}
}

func TestLoggingFunctions(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	Logger = slog.New(handler)

	t.Run("Info", func(t *testing.T) {
		buf.Reset()
		Info("test info message", "key", "value")
		if !strings.Contains(buf.String(), "test info message") {
			t.Error("Info should log the message")
		}
		if !strings.Contains(buf.String(), "key=value") {
			t.Error("Info should log the key-value pair")
		}
	})

	t.Run("Warn", func(t *testing.T) {
		buf.Reset()
		Warn("test warn message")
		if !strings.Contains(buf.String(), "WARN") {
			t.Error("Warn should log at WARN level")
		}
	})

	t.Run("Error", func(t *testing.T) {
		buf.Reset()
		Error("test error message")
		if !strings.Contains(buf.String(), "ERROR") {
			t.Error("Error should log at ERROR level")
		}
	})

	t.Run("Debug", func(t *testing.T) {
		buf.Reset()
		Debug("test debug message")
		if !strings.Contains(buf.String(), "DEBUG") {
			t.Error("Debug should log at DEBUG level")
		}
	})
}

func TestWithTicker(t *testing.T) {
	var buf bytes.Buffer
	Logger = slog.New(slog.NewTextHandler(&buf, nil))

	WithTicker("AAPL").Info("test message")

	if !strings.Contains(buf.String(), "ticker=AAPL") {
		t.Error("WithTicker should add ticker field to logger")
	}
}

func TestWithRun(t *testing.T) {
	var buf bytes.Buffer
	Logger = slog.New(slog.NewTextHandler(&buf, nil))

	WithRun("run-123").Info("test message")

	if !strings.Contains(buf.String(), "run_id=run-123") {
		t.Error("WithRun should add run_id field to logger")
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	Logger = slog.New(slog.NewTextHandler(&buf, nil))

	WithError(errors.New("test error")).Info("test message")

	if !strings.Contains(buf.String(), "error=") {
		t.Error("WithError should add error field to logger")
	}
}

func TestLoggingWithNilLogger(t *testing.T) {
	// Functions should lazily initialize rather than panic
	Logger = nil
	Info("test message")

	Logger = nil
	Warn("test message")

	Logger = nil
	_ = WithTicker("AAPL")

	Logger = nil
	_ = WithError(errors.New("test"))
}
