package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "https://api.ynab.com/v1", cfg.YNAB.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
	assert.Equal(t, 3, cfg.YNAB.MaxRetries)
	assert.Equal(t, 24*time.Hour, cfg.SettingsTTL())
	assert.Equal(t, "gemini-2.0-flash", cfg.AI.Model)
	assert.False(t, cfg.ReadOnly)
}

func TestLoadSecretsFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("YNAB_API_TOKEN", "token-123")
	t.Setenv("GEMINI_API_KEY", "key-456")
	t.Setenv("YNAB_READ_ONLY", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "token-123", cfg.YNAB.APIToken)
	assert.Equal(t, "key-456", cfg.AI.APIKey)
	assert.True(t, cfg.ReadOnly)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("YNAB_LOG_LEVEL", "debug")
	t.Setenv("YNAB_YNAB_TIMEOUT_SECONDS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout())
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("YNAB_LOG_LEVEL", "verbose")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log level")
}

func TestLoadRejectsNonPositiveTimeout(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("YNAB_YNAB_TIMEOUT_SECONDS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}
