// Package config loads runtime configuration from an optional YAML file
// overlaid by environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultAPIURL is a demonstration endpoint, not a production API.
const DefaultAPIURL = "https://api.mahfal.com"

var (
	ErrMissingSecret = errors.New("MAHFAL_API_SECRET is required")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config holds client configuration.
type Config struct {
	APIURL     string        `yaml:"api_url" env:"MAHFAL_API_URL"`
	APISecret  string        `yaml:"api_secret" env:"MAHFAL_API_SECRET"`
	APITimeout time.Duration `yaml:"api_timeout" env:"MAHFAL_API_TIMEOUT"`
	APIRPS     float64       `yaml:"api_rps" env:"MAHFAL_API_RPS"`

	DraftStore string        `yaml:"draft_store" env:"MAHFAL_DRAFT_STORE"`
	DraftDSN   string        `yaml:"draft_dsn" env:"MAHFAL_DRAFT_DSN"`
	DraftTTL   time.Duration `yaml:"draft_ttl" env:"MAHFAL_DRAFT_TTL"`

	LogLevel       string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat      string `yaml:"log_format" env:"LOG_FORMAT"`
	OTLPEndpoint   string `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	PushgatewayURL string `yaml:"pushgateway_url" env:"MAHFAL_PUSHGATEWAY_URL"`
}

// Default returns the built-in configuration. It has no secret.
func Default() Config {
	return Config{
		APIURL:     DefaultAPIURL,
		APITimeout: 10 * time.Second,
		APIRPS:     1,
		DraftStore: "sqlite",
		DraftDSN:   "file:mahfal_drafts.db",
		LogLevel:   "INFO",
		LogFormat:  "text",
	}
}

// Load reads configuration from environment variables over defaults.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile reads path (when non-empty) over defaults, then applies
// environment variables, which take precedence.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Validate fails on configuration the client cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APISecret) == "" {
		return ErrMissingSecret
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api url %q", ErrInvalidConfig, c.APIURL)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("%w: api timeout must be positive", ErrInvalidConfig)
	}
	if c.APIRPS < 0 {
		return fmt.Errorf("%w: api rps must not be negative", ErrInvalidConfig)
	}
	switch c.DraftStore {
	case "memory", "sqlite", "postgres", "redis":
	default:
		return fmt.Errorf("%w: unknown draft store %q", ErrInvalidConfig, c.DraftStore)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

// Warnings lists settings that work but should not reach production.
func (c *Config) Warnings() []string {
	var out []string
	if c.APIURL == DefaultAPIURL {
		out = append(out, "MAHFAL_API_URL not set; using demonstration endpoint "+DefaultAPIURL)
	}
	if strings.HasPrefix(c.APIURL, "http://") {
		out = append(out, "MAHFAL_API_URL is not TLS; signed leads travel in clear text")
	}
	return out
}
