// Package logs builds the process logger from its textual configuration.
package logs

import (
	"log/slog"
	"os"
	"strings"
)

// GetLoggerFromString maps a LOG_LEVEL value to a text slog.Logger on stdout.
// Unknown values fall back to info rather than failing startup.
func GetLoggerFromString(level string) *slog.Logger {
	return GetLoggerFromLevel(parseLevel(level))
}

func GetLoggerFromLevel(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
