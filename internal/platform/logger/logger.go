package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New returns a JSON structured logger. The level is taken from
// VERISEQ_LOG_LEVEL (debug, info, warn, error) and defaults to info.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: levelFromEnv(),
	}))
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("VERISEQ_LOG_LEVEL")) {
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
