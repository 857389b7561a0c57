package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8090 {
		t.Errorf("expected default port 8090, got %d", cfg.Port)
	}
	if cfg.DBPath != "chorequest.db" {
		t.Errorf("expected default db path, got %s", cfg.DBPath)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("expected default timezone UTC, got %s", cfg.Timezone)
	}
	if cfg.WebhookConfigured() {
		t.Error("webhook should not be configured by default")
	}
	if cfg.RateLimitWindow != time.Minute {
		t.Errorf("expected default rate limit window 1m, got %s", cfg.RateLimitWindow)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CHOREQUEST_PORT", "9000")
	t.Setenv("CHOREQUEST_TIMEZONE", "Europe/Berlin")
	t.Setenv("CHOREQUEST_HA_BASE_URL", "http://homeassistant.local:8123")
	t.Setenv("CHOREQUEST_HA_WEBHOOK_ID", "chorequest-events")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if !cfg.WebhookConfigured() {
		t.Error("webhook should be configured")
	}
	if cfg.Location().String() != "Europe/Berlin" {
		t.Errorf("expected Europe/Berlin, got %s", cfg.Location())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Port = 70000 },
			wantErr: "PORT",
		},
		{
			name:    "empty db path",
			mutate:  func(c *Config) { c.DBPath = "" },
			wantErr: "DB_PATH",
		},
		{
			name:    "bad timezone",
			mutate:  func(c *Config) { c.Timezone = "Mars/Olympus" },
			wantErr: "TIMEZONE",
		},
		{
			name:    "zero rate limit",
			mutate:  func(c *Config) { c.RateLimitRequests = 0 },
			wantErr: "RATE_LIMIT_REQUESTS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				Port:              8090,
				DBPath:            "test.db",
				Timezone:          "UTC",
				RateLimitRequests: 60,
				RateLimitWindow:   time.Minute,
			}
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %s, got %v", tt.wantErr, err)
			}
		})
	}
}
