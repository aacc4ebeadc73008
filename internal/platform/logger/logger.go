// Package logger provides the process-wide structured logger built on log/slog.
//
// Setup is called once from main; until then L is a text logger on stderr so
// packages and tests can log without ceremony.
package logger

import (
	"io"
	"log/slog"
	"os"
)

var L = slog.New(slog.NewTextHandler(os.Stderr, nil))

// Setup installs the logger for the given environment: JSON for production
// log aggregation, human-readable text everywhere else.
func Setup(env string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}

	var handler slog.Handler
	switch env {
	case "production", "prod":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	L = slog.New(handler)
	slog.SetDefault(L)
	return L
}

// With returns a child of the base logger carrying the given attributes.
func With(args ...any) *slog.Logger { return L.With(args...) }

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level.
func Error(msg string, args ...any) { L.Error(msg, args...) }
