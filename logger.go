package propstore

import (
	"log/slog"
	"os"
	"reflect"
)

// Logger wraps slog.Logger with propstore-specific helpers.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses a text handler to stderr at warning level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelWarn,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// LogDuplicateProperty logs an add of a column name that is already taken.
func (l *Logger) LogDuplicateProperty(name string, existing, requested reflect.Type) {
	l.Warn("property already exists",
		"name", name,
		"existing_type", existing.String(),
		"requested_type", requested.String(),
	)
}

// LogTypeMismatch logs a typed lookup against a column of another type.
func (l *Logger) LogTypeMismatch(name string, stored, requested reflect.Type) {
	l.Warn("property type mismatch",
		"name", name,
		"stored_type", stored.String(),
		"requested_type", requested.String(),
	)
}

// LogInvalidAccess logs an access through an unbound or removed property.
func (l *Logger) LogInvalidAccess(name string, err error) {
	l.Warn("invalid property access",
		"name", name,
		"error", err,
	)
}

// LogCompaction logs a finished garbage collection pass.
func (l *Logger) LogCompaction(kind string, before, after int, generation uint32) {
	l.Debug("garbage collection completed",
		"kind", kind,
		"rows_before", before,
		"rows_after", after,
		"removed", before-after,
		"generation", generation,
	)
}
