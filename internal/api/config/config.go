package config

import (
	"golang-crypto-picker/pkg/config"
)

// Config holds the full configuration for the read-only API service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	API      config.API      `mapstructure:"api"`
	CacheTTL string          `mapstructure:"cache_ttl"`
}

// Load loads the API configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.CacheTTL == "" {
		cfg.CacheTTL = "30s"
	}
	return &cfg, nil
}
