package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "tasks.db", cfg.DatabasePath)
	assert.Equal(t, "gemini-2.5-pro", cfg.GeminiModel)
	assert.Equal(t, "gemini-1.5-flash", cfg.GeminiFallbackModel)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.APITimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("TASKPILOT_ADDR", ":9999")
	t.Setenv("TASKPILOT_DB", "/var/lib/taskpilot/tasks.db")
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("API_TIMEOUT", "5")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "/var/lib/taskpilot/tasks.db", cfg.DatabasePath)
	assert.Equal(t, "secret", cfg.GeminiAPIKey)
	assert.Equal(t, 5*time.Second, cfg.APITimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taskpilot.toml")
	content := "addr = \":7070\"\nlog_level = \"warn\"\napi_timeout_seconds = 10\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("TASKPILOT_CONFIG", path)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.APITimeout)
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taskpilot.toml")
	require.NoError(t, os.WriteFile(path, []byte("addr = \":7070\"\n"), 0o600))
	t.Setenv("TASKPILOT_CONFIG", path)
	t.Setenv("TASKPILOT_ADDR", ":9999")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Setenv("TASKPILOT_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	_, err := Load()

	assert.Error(t, err)
}

func TestLoad_InvalidTimeout(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("API_TIMEOUT", "soon")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_TIMEOUT")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
