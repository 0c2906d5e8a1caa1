package slogx

import (
	"log/slog"
	"os"
	"strings"
)

// DefaultService is used when Config.Service is left empty.
const DefaultService = "cynit-hub"

// Config controls handler construction. Zero values fall back to JSON output
// at info level under the default service name.
type Config struct {
	Service string
	Version string
	Env     string // "dev" enables source locations
	Level   string // "debug", "info", "warn", "error"
	Format  string // "json" or "text"
}

// New builds the process logger and installs it as the slog default, so code
// reaching for slog.Default ends up on the same handler.
func New(cfg Config) *slog.Logger {
	if cfg.Service == "" {
		cfg.Service = DefaultService
	}

	opts := &slog.HandlerOptions{
		AddSource: cfg.Env == "dev",
		Level:     parseLevel(cfg.Level),
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler).With(
		"service", cfg.Service,
		"version", cfg.Version,
		"env", cfg.Env,
	)

	slog.SetDefault(logger)
	return logger
}

func parseLevel(lvl string) slog.Level {
	switch strings.ToLower(lvl) {
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
