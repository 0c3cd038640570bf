// Package logging wraps slog with the handlers the command line tool uses.
package logging

import (
	"io"
	"log/slog"
)

// Logger wraps slog.Logger so call sites share consistent field names.
type Logger struct {
	*slog.Logger
}

// New creates a Logger writing to w. format is "json" or "text"; anything
// else falls back to text.
func New(w io.Writer, format string, level slog.Level) *Logger {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return &Logger{Logger: slog.New(h)}
}

// Noop returns a Logger that discards everything.
func Noop() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// WithSource tags subsequent records with the input being processed.
func (l *Logger) WithSource(name string) *Logger {
	return &Logger{Logger: l.With("source", name)}
}
