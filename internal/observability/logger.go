package observability

import (
	"io"
	"log/slog"
)

// CoreLogger is a thin wrapper around slog.Logger that adds error-capture
// helpers used throughout the codebase.
//
// The TUI owns the terminal, so logs always go to a file (or nowhere).
type CoreLogger struct {
	*slog.Logger
}

func NewCoreLogger(logger *slog.Logger) *CoreLogger {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &CoreLogger{Logger: logger}
}

// NewNoOpLogger returns a logger that discards everything.
//
// Intended for tests.
func NewNoOpLogger() *CoreLogger {
	return NewCoreLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// CaptureError logs an error at the error level.
//
// Nil errors are ignored so callers can pass through error values unchecked.
func (l *CoreLogger) CaptureError(err error, args ...any) {
	if err == nil {
		return
	}
	l.Error(err.Error(), args...)
}

// CaptureWarn logs a message at the warning level.
func (l *CoreLogger) CaptureWarn(msg string, args ...any) {
	l.Warn(msg, args...)
}
