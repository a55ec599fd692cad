// Package main provides the BlazeAlert server CLI.
package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/good-yellow-bee/blazealert/internal/dedup"
)

// Config represents the server configuration.
type Config struct {
	Server        ServerConfig    `yaml:"server"`
	Database      DatabaseConfig  `yaml:"database"`
	Deduplication DedupConfig     `yaml:"deduplication"`
	Routing       RoutingConfig   `yaml:"routing"`
	Retention     RetentionConfig `yaml:"retention"`
	Channels      ChannelsConfig  `yaml:"channels"`
	Verbose       bool            `yaml:"-"` // set via CLI flag
}

// ServerConfig contains listener settings.
type ServerConfig struct {
	HTTPAddress    string `yaml:"http_address"`    // REST API listen address (default: :8080)
	MetricsAddress string `yaml:"metrics_address"` // Prometheus listen address (default: :9090)
}

// DatabaseConfig contains SQLite settings.
type DatabaseConfig struct {
	Path string `yaml:"path"` // SQLite database file (default: data/blazealert.db)
}

// DedupConfig contains deduplication settings.
type DedupConfig struct {
	Enabled       bool    `yaml:"enabled"`
	WindowSeconds int     `yaml:"window_seconds"` // Merge window (default: 3600)
	Threshold     float64 `yaml:"threshold"`      // Fuzzy similarity threshold (default: 0.85)
}

// Options converts the config into deduplicator options.
func (c DedupConfig) Options() dedup.Options {
	return dedup.Options{
		Enabled:   c.Enabled,
		Window:    time.Duration(c.WindowSeconds) * time.Second,
		Threshold: c.Threshold,
	}
}

// RoutingConfig points at an optional routing rules file.
type RoutingConfig struct {
	RulesFile string `yaml:"rules_file"` // YAML rules file; empty keeps built-in defaults
	Watch     bool   `yaml:"watch"`      // Reload the rules file on change
}

// RetentionConfig controls the periodic resolved-alert sweep.
type RetentionConfig struct {
	Days          int    `yaml:"days"`           // Resolved alerts older than this are deleted (default: 30)
	SweepInterval string `yaml:"sweep_interval"` // How often to sweep (default: 1h)
}

// SweepIntervalDuration returns the parsed sweep interval.
func (c RetentionConfig) SweepIntervalDuration() (time.Duration, error) {
	return time.ParseDuration(c.SweepInterval)
}

// ChannelsConfig enables and configures delivery channels.
type ChannelsConfig struct {
	Console ConsoleChannelConfig `yaml:"console"`
	File    FileChannelConfig    `yaml:"file"`
	Webhook WebhookChannelConfig `yaml:"webhook"`
	Email   EmailChannelConfig   `yaml:"email"`
}

// ConsoleChannelConfig configures the console channel.
type ConsoleChannelConfig struct {
	Enabled bool `yaml:"enabled"`
}

// FileChannelConfig configures the JSON-lines file channel.
type FileChannelConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// WebhookChannelConfig configures the webhook channel.
type WebhookChannelConfig struct {
	Enabled        bool              `yaml:"enabled"`
	URL            string            `yaml:"url"`
	Headers        map[string]string `yaml:"headers"`
	TimeoutSeconds int               `yaml:"timeout_seconds"`
	RatePerMinute  int               `yaml:"rate_per_minute"`
}

// EmailChannelConfig configures the SMTP channel.
type EmailChannelConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	Username    string   `yaml:"username"`
	Password    string   `yaml:"password"`
	From        string   `yaml:"from"`
	Recipients  []string `yaml:"recipients"`
	RatePerHour int      `yaml:"rate_per_hour"`
}

// LoadConfig loads configuration from a YAML file. Keys absent from
// the file keep their defaults, so "deduplication: {enabled: false}"
// disables dedup while an omitted block leaves it on.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{
		Deduplication: DedupConfig{Enabled: true},
		Channels: ChannelsConfig{
			Console: ConsoleChannelConfig{Enabled: true},
		},
	}
	cfg.setDefaults()
	return cfg
}

// setDefaults sets default values for missing config fields.
func (c *Config) setDefaults() {
	if c.Server.HTTPAddress == "" {
		c.Server.HTTPAddress = ":8080"
	}
	if c.Server.MetricsAddress == "" {
		c.Server.MetricsAddress = ":9090"
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/blazealert.db"
	}
	if c.Deduplication.WindowSeconds == 0 {
		c.Deduplication.WindowSeconds = 3600
	}
	if c.Deduplication.Threshold == 0 {
		c.Deduplication.Threshold = dedup.DefaultThreshold
	}
	if c.Retention.Days == 0 {
		c.Retention.Days = 30
	}
	if c.Retention.SweepInterval == "" {
		c.Retention.SweepInterval = "1h"
	}
	if c.Channels.Webhook.TimeoutSeconds == 0 {
		c.Channels.Webhook.TimeoutSeconds = 30
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Deduplication.WindowSeconds < 0 {
		return fmt.Errorf("deduplication.window_seconds must not be negative")
	}
	if c.Deduplication.Threshold <= 0 || c.Deduplication.Threshold > 1 {
		return fmt.Errorf("deduplication.threshold must be in (0, 1]")
	}
	if c.Retention.Days <= 0 {
		return fmt.Errorf("retention.days must be positive")
	}
	if _, err := c.Retention.SweepIntervalDuration(); err != nil {
		return fmt.Errorf("retention.sweep_interval: %w", err)
	}
	if c.Channels.File.Enabled && c.Channels.File.Path == "" {
		return fmt.Errorf("channels.file.path is required when the file channel is enabled")
	}
	if c.Channels.Webhook.Enabled && c.Channels.Webhook.URL == "" {
		return fmt.Errorf("channels.webhook.url is required when the webhook channel is enabled")
	}
	if c.Channels.Email.Enabled {
		if c.Channels.Email.Host == "" {
			return fmt.Errorf("channels.email.host is required when the email channel is enabled")
		}
		if c.Channels.Email.From == "" {
			return fmt.Errorf("channels.email.from is required when the email channel is enabled")
		}
		if len(c.Channels.Email.Recipients) == 0 {
			return fmt.Errorf("channels.email.recipients is required when the email channel is enabled")
		}
	}
	return nil
}
