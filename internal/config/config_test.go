package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everstacklabs/modelpick/internal/catalog"
)

// isolate points HOME and the working directory at empty temp dirs so no
// stray config.yaml or .env is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.OpenRouter.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Zero(t, cfg.HTTP.RateLimit)
	assert.Zero(t, cfg.Cache.MaxAge)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10, cfg.LogMaxSize)
	assert.Equal(t, 7, cfg.LogMaxAge)
	assert.Equal(t, "0", cfg.Selection.MaxCost)
	assert.Equal(t, 8000, cfg.Selection.MinContext)
	assert.Equal(t, []string{"text"}, cfg.Selection.InputModalities)
	assert.Equal(t, []string{"text"}, cfg.Selection.OutputModalities)
	assert.Equal(t, []string{"openrouter/auto"}, cfg.Selection.ExcludeModels)
	assert.Equal(t, "json", cfg.Selection.Output)
}

func TestLoadFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "modelpick.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
openrouter:
  api_key: file-key
http:
  timeout: 5s
  rate_limit: 2
cache:
  max_age: 10m
selection:
  max_cost: "0.000002"
  min_context: 32000
  features: [tools]
  output: brief
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.OpenRouter.APIKey)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 2.0, cfg.HTTP.RateLimit)
	assert.Equal(t, 10*time.Minute, cfg.Cache.MaxAge)
	assert.Equal(t, "0.000002", cfg.Selection.MaxCost)
	assert.Equal(t, 32000, cfg.Selection.MinContext)
	assert.Equal(t, []string{"tools"}, cfg.Selection.Features)
	assert.Equal(t, "brief", cfg.Selection.Output)
}

func TestLoadSearchesWorkingDirectory(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log_level: debug\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("OPENROUTER_API_KEY", "env-key")
	t.Setenv("MODELPICK_HTTP_TIMEOUT", "12s")
	t.Setenv("MODELPICK_LOG_FORMAT", "json")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.OpenRouter.APIKey)
	assert.Equal(t, 12*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadDotenv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("OPENROUTER_API_KEY=dotenv-key\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-key", cfg.OpenRouter.APIKey)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(*Config)
		field string
	}{
		{"zero timeout", func(c *Config) { c.HTTP.Timeout = 0 }, "http.timeout"},
		{"negative rate", func(c *Config) { c.HTTP.RateLimit = -1 }, "http.rate_limit"},
		{"negative max age", func(c *Config) { c.Cache.MaxAge = -time.Second }, "cache.max_age"},
		{"negative context", func(c *Config) { c.Selection.MinContext = -1 }, "selection.min_context"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{HTTP: HTTPConfig{Timeout: time.Second}}
			tt.mut(cfg)

			var ce *catalog.ConfigError
			require.True(t, errors.As(cfg.Validate(), &ce))
			assert.Equal(t, tt.field, ce.Field)
		})
	}

	assert.NoError(t, (&Config{HTTP: HTTPConfig{Timeout: time.Second}}).Validate())
}
