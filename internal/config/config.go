// Package config loads wiki settings from a yaml file
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AbdouB/wiki/internal/db"
	"github.com/AbdouB/wiki/internal/search"
	"gopkg.in/yaml.v3"
)

// Config holds wiki settings
type Config struct {
	DataDir  string  `yaml:"data_dir"`
	LogLevel string  `yaml:"log_level"`
	Suggest  Suggest `yaml:"suggest"`
}

// Suggest tunes link suggestions
type Suggest struct {
	Threshold float64 `yaml:"threshold"`
	Limit     int     `yaml:"limit"`
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		DataDir:  db.DefaultDataDir(),
		LogLevel: "warning",
		Suggest: Suggest{
			Threshold: search.DefaultThreshold,
			Limit:     search.DefaultLimit,
		},
	}
}

// DefaultPath returns the config file looked up when none is given
func DefaultPath() string {
	// Try project-local first
	localPath := filepath.Join(".wiki", "config.yaml")
	if _, err := os.Stat(localPath); err == nil {
		return localPath
	}

	// Fall back to home directory
	home, err := os.UserHomeDir()
	if err != nil {
		return localPath
	}
	return filepath.Join(home, ".wiki", "config.yaml")
}

// Load reads path over the defaults. A missing file at the default location is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = db.DefaultDataDir()
	}
	if cfg.Suggest.Threshold <= 0 || cfg.Suggest.Threshold > 1 {
		return nil, fmt.Errorf("suggest.threshold must be in (0, 1], got %v", cfg.Suggest.Threshold)
	}
	if cfg.Suggest.Limit <= 0 {
		cfg.Suggest.Limit = search.DefaultLimit
	}
	return cfg, nil
}
