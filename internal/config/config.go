// Package config loads the Celebro CLI configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config defines the CLI configuration.
type Config struct {
	// DBPath is the SQLite database location.
	DBPath string `yaml:"db_path"`
	// DefaultEvent is used when a command omits --event.
	DefaultEvent string `yaml:"default_event"`
	// DefaultAssignee is used when a task is added without --assignee.
	DefaultAssignee string `yaml:"default_assignee"`
	// Notifications toggles task_ready notification creation.
	Notifications bool `yaml:"notifications"`
}

// Default returns the default configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		DBPath:        filepath.Join(home, ".celebro", "celebro.db"),
		Notifications: true,
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".celebro", "config.yaml")
}

// Load reads the config file at path, layered over the defaults. A missing
// file is not an error; defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
