package app

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mkovalev/mybooks-backend/internal/config"
)

// NewLogger builds the process logger from LogConfig and installs it as the
// slog default. JSON is the production format; text adds source locations
// for local runs. Output goes to stderr so CLI results on stdout stay
// machine-readable.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	logger := buildLogger(os.Stderr, cfg)
	slog.SetDefault(logger)
	return logger
}

func buildLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	text := !strings.EqualFold(cfg.Format, "json")
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: text,
	}
	if text {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// parseLevel accepts debug, info, warn, error in any case; anything else
// falls back to info rather than failing startup over a typo.
func parseLevel(s string) slog.Level {
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
