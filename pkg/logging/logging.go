// Package logging configures structured logging for the server.
//
// Usage:
//
//	logging.Setup()                                    // from LOG_LEVEL / LOG_FORMAT env
//	logging.SetupWithLevel(slog.LevelDebug, "text")    // explicit override
//
// Environment variables:
//
//	LOG_LEVEL: debug, info, warn, error (default: info)
//	LOG_FORMAT: text (colored, default) or json
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup configures logging at the level and format specified by the
// LOG_LEVEL and LOG_FORMAT env vars.
func Setup() {
	SetupWithLevel(levelFromEnv(), os.Getenv("LOG_FORMAT"))
}

// SetupWithLevel installs the default logger at the given level.
// format "json" writes JSON lines to stdout; anything else writes colored
// text to stderr.
func SetupWithLevel(level slog.Level, format string) {
	slog.SetDefault(New(os.Stderr, os.Stdout, level, format))
}

// New builds a logger without installing it.
func New(textOut, jsonOut io.Writer, level slog.Level, format string) *slog.Logger {
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(jsonOut, &slog.HandlerOptions{
			Level: level,
		}))
	}
	return slog.New(tint.NewHandler(textOut, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
	}))
}

func levelFromEnv() slog.Level {
	return ParseLevel(os.Getenv("LOG_LEVEL"))
}

// ParseLevel maps debug, warn and error to slog levels; anything else is INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
