// Package config loads application settings from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds every runtime setting. All variables carry the CHOREQUEST_
// prefix, e.g. CHOREQUEST_PORT.
type Config struct {
	Port     int    `envconfig:"PORT" default:"8090"`
	DBPath   string `envconfig:"DB_PATH" default:"chorequest.db"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Timezone controls when scheduled jobs fire. Point calculations always
	// run in UTC regardless of this setting.
	Timezone string `envconfig:"TIMEZONE" default:"UTC"`

	// APIKey protects every endpoint except /health. Empty disables auth,
	// intended for LAN-only deployments.
	APIKey string `envconfig:"API_KEY"`

	// Home Assistant webhook target. Both must be set for delivery.
	HABaseURL   string `envconfig:"HA_BASE_URL"`
	HAWebhookID string `envconfig:"HA_WEBHOOK_ID"`

	// Weekly summary generation. Without an API key the job falls back to a
	// plain-text summary built from the week's stats.
	SummaryAPIKey string `envconfig:"SUMMARY_API_KEY"`
	SummaryAPIURL string `envconfig:"SUMMARY_API_URL" default:"https://api.anthropic.com/v1/messages"`
	SummaryModel  string `envconfig:"SUMMARY_MODEL" default:"claude-3-5-haiku-latest"`

	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"60"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// Load reads the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("chorequest", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("CHOREQUEST_PORT out of range: %d", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("CHOREQUEST_DB_PATH must not be empty")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("CHOREQUEST_TIMEZONE %q: %w", c.Timezone, err)
	}
	if c.RateLimitRequests <= 0 {
		return fmt.Errorf("CHOREQUEST_RATE_LIMIT_REQUESTS must be > 0")
	}
	if c.RateLimitWindow <= 0 {
		return fmt.Errorf("CHOREQUEST_RATE_LIMIT_WINDOW must be > 0")
	}
	return nil
}

// Location resolves the configured timezone. Validate guarantees it parses.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// WebhookConfigured reports whether Home Assistant delivery is enabled.
func (c *Config) WebhookConfigured() bool {
	return c.HABaseURL != "" && c.HAWebhookID != ""
}
