package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

type Fields map[string]interface{}

var current atomic.Pointer[slog.Logger]

func init() {
	Init(os.Stderr, "info")
}

// Init replaces the process logger. Output is one JSON object per line.
func Init(w io.Writer, level string) {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	current.Store(slog.New(h))
}

// Logger returns the underlying slog logger for libraries that want one.
func Logger() *slog.Logger { return current.Load() }

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func output(level slog.Level, msg string, fields Fields) {
	l := current.Load()
	if !l.Enabled(context.Background(), level) {
		return
	}
	attrs := make([]slog.Attr, 0, len(fields))
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.LogAttrs(context.Background(), level, msg, attrs...)
}

// Debug logs a debug message with optional fields.
func Debug(msg string, fields Fields) {
	output(slog.LevelDebug, msg, fields)
}

// Info logs an informational message with optional fields.
func Info(msg string, fields Fields) {
	output(slog.LevelInfo, msg, fields)
}

// Warn logs a warning with optional fields.
func Warn(msg string, fields Fields) {
	output(slog.LevelWarn, msg, fields)
}

// Error logs an error message and includes the error text in the fields.
func Error(msg string, err error, fields Fields) {
	if fields == nil {
		fields = Fields{}
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	output(slog.LevelError, msg, fields)
}

// Fatal logs a fatal error and exits the process.
func Fatal(msg string, err error, fields Fields) {
	Error(msg, err, fields)
	os.Exit(1)
}
