package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"BATTLESHIP_TCP_ADDR", "BATTLESHIP_HTTP_ADDR", "REDIS_CONNSTRING", "SQLITE_DSN",
	"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_TRACES_STDOUT", "LOG_LEVEL", "LOG_FORMAT",
	"BATTLESHIP_MAX_FRAME", "BATTLESHIP_BOT_DELAY",
}

// clearEnv blanks every key for the duration of the test. Empty values fall
// back to defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.TCPAddr)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, ":memory:", cfg.SQLiteDSN)
	assert.Empty(t, cfg.OTLPEndpoint)
	assert.False(t, cfg.TraceStdout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 1<<20, cfg.MaxFrame)
	assert.Equal(t, 500*time.Millisecond, cfg.BotDelay)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("BATTLESHIP_TCP_ADDR", "127.0.0.1:6000")
	t.Setenv("REDIS_CONNSTRING", "redis://localhost:6379/0")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel-collector:4317")
	t.Setenv("OTEL_TRACES_STDOUT", "true")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("BATTLESHIP_MAX_FRAME", "4096")
	t.Setenv("BATTLESHIP_BOT_DELAY", "0s")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:6000", cfg.TCPAddr)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "otel-collector:4317", cfg.OTLPEndpoint)
	assert.True(t, cfg.TraceStdout)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 4096, cfg.MaxFrame)
	assert.Zero(t, cfg.BotDelay)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables that are already set, so unset
	// the one the file provides.
	require.NoError(t, os.Unsetenv("BATTLESHIP_HTTP_ADDR"))

	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte("BATTLESHIP_HTTP_ADDR=localhost:9090\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("BATTLESHIP_HTTP_ADDR") })

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9090", cfg.HTTPAddr)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad tcp addr", "BATTLESHIP_TCP_ADDR", "not-an-address"},
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"bad log format", "LOG_FORMAT", "xml"},
		{"frame not a number", "BATTLESHIP_MAX_FRAME", "big"},
		{"frame exceeds header", "BATTLESHIP_MAX_FRAME", "100000000"},
		{"bad delay", "BATTLESHIP_BOT_DELAY", "soon"},
		{"bad stdout flag", "OTEL_TRACES_STDOUT", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}
