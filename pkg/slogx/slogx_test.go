package slogx

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, parseLevel(tc.in), "level %q", tc.in)
	}
}

func TestNewInstallsDefaultAndHonorsLevel(t *testing.T) {
	logger := New(Config{Level: "error", Format: "text"})
	require.NotNil(t, logger)
	require.Same(t, logger, slog.Default())

	ctx := context.Background()
	require.False(t, logger.Enabled(ctx, slog.LevelInfo))
	require.True(t, logger.Enabled(ctx, slog.LevelError))
}
