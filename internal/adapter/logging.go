package adapter

import (
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig carries the diagnostics settings. The CLI fills Path and Level
// from its --log-path and --log-level flags; MaxSizeMB and MaxBackups fall
// back to their defaults when left at zero.
type LogConfig struct {
	Path       string
	Level      string
	MaxSizeMB  int
	MaxBackups int
}

// NewLogger builds the project's structured logger. When Path is empty,
// logs go to stderr; otherwise they go to a lumberjack-rotated file, so a
// long-running CI invocation never accumulates one unbounded log file.
func NewLogger(cfg LogConfig) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	if cfg.Path == "" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		writer := &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    orDefault(cfg.MaxSizeMB, 50),
			MaxBackups: orDefault(cfg.MaxBackups, 3),
		}
		handler = slog.NewJSONHandler(writer, opts)
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}

	return v
}
