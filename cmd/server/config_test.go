package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.HTTPAddress != ":8080" {
		t.Errorf("http address = %s, want :8080", cfg.Server.HTTPAddress)
	}
	if !cfg.Deduplication.Enabled {
		t.Error("deduplication should default to enabled")
	}
	if cfg.Deduplication.WindowSeconds != 3600 {
		t.Errorf("window = %d, want 3600", cfg.Deduplication.WindowSeconds)
	}
	if cfg.Deduplication.Threshold != 0.85 {
		t.Errorf("threshold = %v, want 0.85", cfg.Deduplication.Threshold)
	}
	if cfg.Retention.Days != 30 {
		t.Errorf("retention days = %d, want 30", cfg.Retention.Days)
	}
	if !cfg.Channels.Console.Enabled {
		t.Error("console channel should default to enabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  http_address: ":9000"
database:
  path: /var/lib/blazealert/alerts.db
deduplication:
  window_seconds: 600
  threshold: 0.9
retention:
  days: 7
  sweep_interval: 30m
channels:
  file:
    enabled: true
    path: /var/log/alerts.jsonl
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Server.HTTPAddress != ":9000" {
		t.Errorf("http address = %s, want :9000", cfg.Server.HTTPAddress)
	}
	if cfg.Server.MetricsAddress != ":9090" {
		t.Errorf("metrics address = %s, want default :9090", cfg.Server.MetricsAddress)
	}
	if cfg.Deduplication.WindowSeconds != 600 {
		t.Errorf("window = %d, want 600", cfg.Deduplication.WindowSeconds)
	}
	if !cfg.Deduplication.Enabled {
		t.Error("omitted enabled key should keep dedup on")
	}

	opts := cfg.Deduplication.Options()
	if opts.Window != 10*time.Minute || opts.Threshold != 0.9 {
		t.Errorf("options = %+v", opts)
	}

	interval, err := cfg.Retention.SweepIntervalDuration()
	if err != nil || interval != 30*time.Minute {
		t.Errorf("sweep interval = %v (%v), want 30m", interval, err)
	}
	if !cfg.Channels.File.Enabled || cfg.Channels.File.Path != "/var/log/alerts.jsonl" {
		t.Errorf("file channel config = %+v", cfg.Channels.File)
	}
}

func TestLoadConfigExplicitDisable(t *testing.T) {
	path := writeConfig(t, `
deduplication:
  enabled: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Deduplication.Enabled {
		t.Error("explicit enabled: false should disable dedup")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold too high", func(c *Config) { c.Deduplication.Threshold = 1.5 }},
		{"negative window", func(c *Config) { c.Deduplication.WindowSeconds = -1 }},
		{"zero retention", func(c *Config) { c.Retention.Days = -3 }},
		{"bad sweep interval", func(c *Config) { c.Retention.SweepInterval = "soonish" }},
		{"file channel without path", func(c *Config) { c.Channels.File.Enabled = true }},
		{"webhook without url", func(c *Config) { c.Channels.Webhook.Enabled = true }},
		{"email without host", func(c *Config) { c.Channels.Email.Enabled = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
