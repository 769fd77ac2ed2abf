package cli

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"onboarding-videos/internal/config"
)

// newLogger builds the diagnostic logger. Operator-facing progress goes to
// stdout separately; this only carries structured detail.
func newLogger(jsonOut bool, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(os.Getenv(config.EnvLogLevel))}
	if jsonOut {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func newRunID() string {
	return uuid.NewString()[:8]
}
