package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/polybus/internal/config"
)

var keys = []string{
	"PORT", "DATABASE_URL", "FRAME_RATE", "WINDOW_WIDTH", "WINDOW_HEIGHT",
	"JOURNAL_CAPACITY", "JOURNAL_FRAMES", "ISOLATE_HANDLER_FAILURES",
	"IDEMPOTENCY_TTL", "LOG_LEVEL",
}

// clearEnv unsets every config key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestParse_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Parse()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 60, cfg.FrameRate)
	assert.Equal(t, 800, cfg.WindowWidth)
	assert.Equal(t, 600, cfg.WindowHeight)
	assert.Equal(t, 1024, cfg.JournalCapacity)
	assert.False(t, cfg.JournalFrames)
	assert.False(t, cfg.IsolateHandlerFailures)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestParse_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("FRAME_RATE", "30")
	t.Setenv("JOURNAL_FRAMES", "true")
	t.Setenv("ISOLATE_HANDLER_FAILURES", "true")
	t.Setenv("IDEMPOTENCY_TTL", "5m")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Parse()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 30, cfg.FrameRate)
	assert.True(t, cfg.JournalFrames)
	assert.True(t, cfg.IsolateHandlerFailures)
	assert.Equal(t, 5*time.Minute, cfg.IdempotencyTTL)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantMsg string
	}{
		{"frame rate zero", "FRAME_RATE", "0", "FRAME_RATE"},
		{"frame rate not a number", "FRAME_RATE", "fast", "parse env"},
		{"negative width", "WINDOW_WIDTH", "-1", "window size"},
		{"zero capacity", "JOURNAL_CAPACITY", "0", "JOURNAL_CAPACITY"},
		{"bad ttl", "IDEMPOTENCY_TTL", "soon", "parse env"},
		{"zero ttl", "IDEMPOTENCY_TTL", "0s", "IDEMPOTENCY_TTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := config.Parse()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=7070\nJOURNAL_CAPACITY=8\n"), 0o600))
	t.Chdir(dir)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, 8, cfg.JournalCapacity)
}

func TestLoad_MissingDotEnvIsFine(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	_, err := config.Load()
	require.NoError(t, err)
}
