package routing

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/good-yellow-bee/blazealert/internal/models"
)

// RulesConfig is the on-disk shape of a routing rules file.
type RulesConfig struct {
	Rules []models.RoutingRule `yaml:"rules"`
}

// LoadRulesFromFile loads routing rules from a YAML file.
func LoadRulesFromFile(path string) ([]models.RoutingRule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rules file: %w", err)
	}
	defer f.Close()

	return LoadRules(f)
}

// LoadRules loads routing rules from a reader.
func LoadRules(r io.Reader) ([]models.RoutingRule, error) {
	var config RulesConfig
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("parse rules YAML: %w", err)
	}

	for i := range config.Rules {
		if err := validateRule(&config.Rules[i]); err != nil {
			return nil, fmt.Errorf("invalid rule at index %d: %w", i, err)
		}
	}

	return config.Rules, nil
}

func validateRule(rule *models.RoutingRule) error {
	if rule.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(rule.Severities) == 0 {
		return fmt.Errorf("at least one severity is required")
	}
	for _, sev := range rule.Severities {
		if _, err := models.ParseSeverity(string(sev)); err != nil {
			return fmt.Errorf("severity %q: %w", sev, err)
		}
	}
	if len(rule.Channels) == 0 {
		return fmt.Errorf("at least one channel is required")
	}
	for _, ch := range rule.Channels {
		switch ch {
		case models.ChannelConsole, models.ChannelFile, models.ChannelWebhook, models.ChannelEmail:
		default:
			return fmt.Errorf("unknown channel %q", ch)
		}
	}
	return nil
}
