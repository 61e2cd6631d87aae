// Package logging configures the process-wide slog.Logger, following the
// corpus's own initLogger shape (JSON or text handler chosen by config).
package logging

import (
	"log/slog"
	"os"

	"lsmgo/internal/config"
)

// Init builds and installs the global slog.Logger described by cfg.
func Init(cfg config.LoggerConfig) *slog.Logger {
	level := parseLevel(cfg.Level)
	opts := &slog.HandlerOptions{AddSource: true, Level: level}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	logger.Info("logger initialized", "level", cfg.Level, "json", cfg.JSON)
	return logger
}

func parseLevel(s string) slog.Level {
	switch s {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "WARN", "warn":
		return slog.LevelWarn
	case "ERROR", "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
