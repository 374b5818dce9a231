// Package logging configures slog loggers for tserr subsystems.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Format selects the handler used for log output
type Format string

const (
	// TextFormat outputs human-readable key=value lines
	TextFormat Format = "text"
	// JSONFormat outputs one JSON object per line
	JSONFormat Format = "json"
)

// Options holds logger configuration
type Options struct {
	Level  string // debug, info, warn, error
	Format Format
	Output io.Writer // defaults to stderr
}

// ParseLevel maps a config/env level string to a slog.Level.
// Unknown values fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// New creates a logger from options
func New(opts Options) *slog.Logger {
	w := opts.Output
	if w == nil {
		w = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var handler slog.Handler
	if opts.Format == JSONFormat {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	return slog.New(handler)
}

// NewDiscard returns a logger that drops everything. Used by tests and by
// code paths where no logger was supplied.
func NewDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// FileLogger creates a logger writing to <rootDir>/.tserr/logs/tserr.log.
// The caller owns the returned closer. Falls back to a discard logger when
// the log directory cannot be created.
func FileLogger(rootDir string, opts Options) (*slog.Logger, io.Closer, error) {
	logsDir := filepath.Join(rootDir, ".tserr", "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return NewDiscard(), nopCloser{}, err
	}

	logPath := filepath.Join(logsDir, "tserr.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return NewDiscard(), nopCloser{}, err
	}

	opts.Output = f
	return New(opts), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
