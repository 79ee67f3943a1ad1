// Package config loads viewer configuration from a YAML file with
// environment variable expansion.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Defaults for tunables the config file may omit.
const (
	DefaultPageSize            = 5
	DefaultBatchTimeoutSeconds = 10
	DefaultNearEndLines        = 6
)

// Config holds the viewer settings.
type Config struct {
	// ServerURL is the question/answer service base URL. When set, lookups
	// go to the service; otherwise ContentDir must hold an offline snapshot.
	ServerURL string `yaml:"server_url"`

	// ContentDir is the offline snapshot directory (qa.db or *.jsonl).
	ContentDir string `yaml:"content_dir"`

	// PageSize is how many ancestors a scroll-triggered batch resolves.
	PageSize int `yaml:"page_size"`

	// BatchTimeoutSeconds bounds one batch of ancestor lookups.
	BatchTimeoutSeconds int `yaml:"batch_timeout_seconds"`

	// NearEndLines is how close to the bottom of the lineage panel the
	// scroll position must get before the next batch is requested.
	NearEndLines int `yaml:"near_end_lines"`

	// LogFile overrides where the debug log is written.
	LogFile string `yaml:"log_file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		PageSize:            DefaultPageSize,
		BatchTimeoutSeconds: DefaultBatchTimeoutSeconds,
		NearEndLines:        DefaultNearEndLines,
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "qav", "config.yml")
}

// Load reads the config file at path, expanding $VAR references from the
// environment. A missing file yields the defaults; a malformed one is an
// error. Omitted tunables fall back to their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	if c.BatchTimeoutSeconds == 0 {
		c.BatchTimeoutSeconds = DefaultBatchTimeoutSeconds
	}
	if c.NearEndLines == 0 {
		c.NearEndLines = DefaultNearEndLines
	}
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	if c.PageSize < 1 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.BatchTimeoutSeconds < 1 {
		return fmt.Errorf("batch_timeout_seconds must be positive, got %d", c.BatchTimeoutSeconds)
	}
	if c.NearEndLines < 1 {
		return fmt.Errorf("near_end_lines must be positive, got %d", c.NearEndLines)
	}
	return nil
}
