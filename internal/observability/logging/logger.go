package logging

import (
	"log/slog"
	"os"
	"strings"
)

// New builds the process-wide JSON logger, tagged with the service name so
// api and worker lines are distinguishable in a shared stream.
func New(service, level string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler).With(slog.String("service", service))
}

// parseLevel accepts the standard slog level names case-insensitively;
// anything unrecognized falls back to info.
func parseLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo
	}
	return level
}
