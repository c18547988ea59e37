package util

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// InitLogger configures the global slog logger with JSON output and level.
// Accepts levels: debug, info, warn, error. Defaults to info on unknown
// input. When logFile is non-empty the stream is duplicated to that file.
func InitLogger(level, logFile string) *slog.Logger {
	var slogLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn", "warning":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}
	var out io.Writer = os.Stdout
	if logFile != "" {
		if w, err := openLogFile(logFile); err == nil {
			out = io.MultiWriter(os.Stdout, w)
		} else {
			slog.Warn("log file unavailable, logging to stdout only", "path", logFile, "err", err)
		}
	}
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: slogLevel,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}
