package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/config"
)

var envVars = []string{
	"MAHFAL_API_URL", "MAHFAL_API_SECRET", "MAHFAL_API_TIMEOUT", "MAHFAL_API_RPS",
	"MAHFAL_DRAFT_STORE", "MAHFAL_DRAFT_DSN", "MAHFAL_DRAFT_TTL",
	"LOG_LEVEL", "LOG_FORMAT", "OTEL_EXPORTER_OTLP_ENDPOINT", "MAHFAL_PUSHGATEWAY_URL",
}

// cleanEnv unsets every variable Load reads for the duration of the test.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, k := range envVars {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

// TestLoad_Defaults verifies that Load() returns the built-in defaults
// when no environment variables are set.
func TestLoad_Defaults(t *testing.T) {
	cleanEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, 10*time.Second, cfg.APITimeout)
	assert.Equal(t, 1.0, cfg.APIRPS)
	assert.Equal(t, "sqlite", cfg.DraftStore)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Empty(t, cfg.APISecret)
	assert.Empty(t, cfg.OTLPEndpoint)
}

// TestLoad_Overrides verifies that environment variables override defaults.
func TestLoad_Overrides(t *testing.T) {
	cleanEnv(t)
	t.Setenv("MAHFAL_API_URL", "https://leads.example.com")
	t.Setenv("MAHFAL_API_SECRET", "s3cret")
	t.Setenv("MAHFAL_API_TIMEOUT", "3s")
	t.Setenv("MAHFAL_API_RPS", "0.5")
	t.Setenv("MAHFAL_DRAFT_STORE", "redis")
	t.Setenv("MAHFAL_DRAFT_DSN", "redis://localhost:6379/2")
	t.Setenv("MAHFAL_DRAFT_TTL", "72h")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://leads.example.com", cfg.APIURL)
	assert.Equal(t, "s3cret", cfg.APISecret)
	assert.Equal(t, 3*time.Second, cfg.APITimeout)
	assert.Equal(t, 0.5, cfg.APIRPS)
	assert.Equal(t, "redis", cfg.DraftStore)
	assert.Equal(t, 72*time.Hour, cfg.DraftTTL)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.NoError(t, cfg.Validate())
	assert.Empty(t, cfg.Warnings())
}

func TestLoad_BadDuration(t *testing.T) {
	cleanEnv(t)
	t.Setenv("MAHFAL_API_TIMEOUT", "soon")

	_, err := config.Load()
	assert.ErrorContains(t, err, "parse env")
}

func TestLoadFile_EnvWins(t *testing.T) {
	cleanEnv(t)
	path := filepath.Join(t.TempDir(), "mahfal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_url: https://file.example.com
api_secret: from-file
api_timeout: 4s
draft_store: postgres
draft_dsn: postgres://mahfal@localhost/mahfal?sslmode=disable
`), 0o600))
	t.Setenv("MAHFAL_API_SECRET", "from-env")

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://file.example.com", cfg.APIURL)
	assert.Equal(t, "from-env", cfg.APISecret)
	assert.Equal(t, 4*time.Second, cfg.APITimeout)
	assert.Equal(t, "postgres", cfg.DraftStore)
	assert.Equal(t, "INFO", cfg.LogLevel)
}

func TestLoadFile_Errors(t *testing.T) {
	cleanEnv(t)
	_, err := config.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_timeout: [1, 2]"), 0o600))
	_, err = config.LoadFile(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		c := config.Default()
		c.APISecret = "s3cret"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr error
	}{
		{"valid", func(c *config.Config) {}, nil},
		{"missing secret", func(c *config.Config) { c.APISecret = "" }, config.ErrMissingSecret},
		{"blank secret", func(c *config.Config) { c.APISecret = "  " }, config.ErrMissingSecret},
		{"relative url", func(c *config.Config) { c.APIURL = "/leads" }, config.ErrInvalidConfig},
		{"ftp url", func(c *config.Config) { c.APIURL = "ftp://x" }, config.ErrInvalidConfig},
		{"zero timeout", func(c *config.Config) { c.APITimeout = 0 }, config.ErrInvalidConfig},
		{"negative rps", func(c *config.Config) { c.APIRPS = -1 }, config.ErrInvalidConfig},
		{"unknown store", func(c *config.Config) { c.DraftStore = "etcd" }, config.ErrInvalidConfig},
		{"unknown log format", func(c *config.Config) { c.LogFormat = "xml" }, config.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWarnings(t *testing.T) {
	c := config.Default()
	assert.Len(t, c.Warnings(), 1)

	c.APIURL = "http://localhost:8080"
	assert.Contains(t, c.Warnings()[0], "TLS")
}
