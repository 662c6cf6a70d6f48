// Package config holds all claimpilot configuration, loaded from
// .claimpilot/config.yaml with environment overrides for credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"claimpilot/internal/driver"
)

// Config holds all claimpilot configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Portal connection and navigation
	Portal PortalConfig `yaml:"portal"`

	// Billing classification and coding
	Billing BillingConfig `yaml:"billing"`

	// Input/output spreadsheet handling
	Sheet SheetConfig `yaml:"sheet"`

	// Browser driver
	Browser driver.Config `yaml:"browser"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Name:    "claimpilot",
		Version: "1.0.0",
		Portal:  DefaultPortalConfig(),
		Billing: DefaultBillingConfig(),
		Sheet:   DefaultSheetConfig(),
		Browser: driver.DefaultConfig(),
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads a config file, applies defaults for missing sections, and
// applies environment overrides for credentials.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the config to path, creating parent directories.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// DefaultPath returns the workspace-relative config path.
func DefaultPath(workspace string) string {
	return filepath.Join(workspace, ".claimpilot", "config.yaml")
}

// applyEnvOverrides pulls credentials from the environment so they never
// have to live in the config file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CLAIMPILOT_PORTAL_USERNAME"); v != "" {
		c.Portal.Username = v
	}
	if v := os.Getenv("CLAIMPILOT_PORTAL_PASSWORD"); v != "" {
		c.Portal.Password = v
	}
	if v := os.Getenv("CLAIMPILOT_PORTAL_URL"); v != "" {
		c.Portal.BaseURL = v
	}
}

// Validate checks the settings a run cannot proceed without.
func (c Config) Validate() error {
	if c.Portal.BaseURL == "" {
		return fmt.Errorf("portal.base_url is required")
	}
	return nil
}
