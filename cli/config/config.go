package config

import (
	"fmt"
	"time"
)

// Config represents a flare.yaml configuration file.
// All values are optional and act as defaults for flare send flags.
// CLI flags always override config values.
type Config struct {
	Source  string        `yaml:"source"`
	Log     LogConfig     `yaml:"log"`
	Adapter AdapterConfig `yaml:"adapter"`
}

// LogConfig holds logging defaults from the config file.
type LogConfig struct {
	Level string `yaml:"level"`
}

// AdapterConfig holds adapter defaults from the config file.
type AdapterConfig struct {
	Type    string            `yaml:"type"`
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// Validate checks cross-field constraints that YAML unmarshaling cannot
// express. A zero-value Config is valid: every field has a usable default.
func (c *Config) Validate() error {
	switch c.Adapter.Type {
	case "", "none", "redis", "webhook":
	default:
		return fmt.Errorf("unknown adapter type %q (want none, redis, or webhook)", c.Adapter.Type)
	}
	if c.Adapter.Type == "redis" || c.Adapter.Type == "webhook" {
		if c.Adapter.URL == "" {
			return fmt.Errorf("adapter type %q requires a url", c.Adapter.Type)
		}
	}
	if c.Adapter.Retries != nil && *c.Adapter.Retries < 0 {
		return fmt.Errorf("adapter retries must be non-negative, got %d", *c.Adapter.Retries)
	}
	return nil
}
