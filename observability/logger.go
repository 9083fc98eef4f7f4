// Package observability holds the shared logging and metrics plumbing.
package observability

import (
	"log/slog"
	"os"
)

// Logger is the global logger. Package-level helpers initialize it
// lazily so library code can log before main wires anything up.
var Logger *slog.Logger

// InitLogger sets up the global logger at info level. Production gets
// JSON output, development gets text.
func InitLogger(production bool) {
	InitLoggerWithLevel(production, slog.LevelInfo)
}

// InitLoggerWithLevel sets up the global logger at an explicit level.
func InitLoggerWithLevel(production bool, level slog.Level) {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if production {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	Logger = slog.New(handler)
	slog.SetDefault(Logger)
}

func logger() *slog.Logger {
	if Logger == nil {
		InitLogger(false)
	}
	return Logger
}

func Info(msg string, args ...any) {
	logger().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	logger().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	logger().Error(msg, args...)
}

func Debug(msg string, args ...any) {
	logger().Debug(msg, args...)
}

// Fatal logs at error level and exits the process.
func Fatal(msg string, args ...any) {
	logger().Error(msg, args...)
	os.Exit(1)
}

// WithTicker returns a logger scoped to one instrument.
func WithTicker(ticker string) *slog.Logger {
	return logger().With("ticker", ticker)
}

// WithRun returns a logger scoped to one backtest run.
func WithRun(runID string) *slog.Logger {
	return logger().With("run_id", runID)
}

// WithError returns a logger carrying the error as a field.
func WithError(err error) *slog.Logger {
	return logger().With("error", err)
}
