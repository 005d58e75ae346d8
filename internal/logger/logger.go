// ABOUTME: Structured logging configuration using log/slog.
// ABOUTME: Logs go to stderr for commands and to a debug file while the TUI owns the terminal.

package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DebugLogName is the log file created in the config directory
const DebugLogName = "debug.log"

// Init configures the default slog logger writing to w.
// level: debug, info, warn, error (default: info)
// format: text, json (default: text)
func Init(w io.Writer, level, format string) {
	slog.SetDefault(slog.New(newHandler(w, level, format)))
}

// InitFile configures the default logger to append to debug.log in configDir
// so output never interferes with terminal rendering. With an empty configDir
// logging is discarded. The returned function closes the file.
func InitFile(configDir, level, format string) (func() error, error) {
	if configDir == "" {
		Init(io.Discard, level, format)
		return func() error { return nil }, nil
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(filepath.Join(configDir, DebugLogName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}

	Init(f, level, format)
	return f.Close, nil
}

func newHandler(w io.Writer, level, format string) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}
	if strings.ToLower(format) == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// ParseLevel converts a string log level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
