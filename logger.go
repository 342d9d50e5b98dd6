package counterpage

import (
	"io"
	"log"
	"log/slog"
)

// Logger provides structured, request-scoped logging.
type Logger struct {
	slog *slog.Logger
}

// NewLoggerTo creates a Logger that writes JSON to w, dropping records below
// level.
func NewLoggerTo(w io.Writer, level slog.Level) *Logger {
	return &Logger{
		slog: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})),
	}
}

// Info logs at INFO level.
func (l *Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, args...)
}

// Warn logs at WARN level.
func (l *Logger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, args...)
}

// Error logs at ERROR level.
func (l *Logger) Error(msg string, args ...any) {
	l.slog.Error(msg, args...)
}

// Debug logs at DEBUG level.
func (l *Logger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, args...)
}

// With returns a new Logger with the given key-value pairs attached to every log entry.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...)}
}

// StdLogger adapts the Logger for APIs that take a *log.Logger, such as
// http.Server.ErrorLog. Lines are logged at ERROR level.
func (l *Logger) StdLogger() *log.Logger {
	return slog.NewLogLogger(l.slog.Handler(), slog.LevelError)
}
