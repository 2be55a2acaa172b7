package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Units     UnitsConfig
	Preload   PreloadConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8600"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// UnitsConfig holds unit manifest configuration.
type UnitsConfig struct {
	ManifestPath string `envconfig:"UNIT_MANIFEST" default:"units.yaml"`
	FetchTimeout int    `envconfig:"UNIT_FETCH_TIMEOUT_SECONDS" default:"30"`
}

// PreloadConfig holds speculative preload configuration.
type PreloadConfig struct {
	Enabled  bool   `envconfig:"PRELOAD_ENABLED" default:"true"`
	Strategy string `envconfig:"PRELOAD_STRATEGY" default:"metadata"` // "all", "metadata", "none"
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8600",
			Host: "0.0.0.0",
		},
		Units: UnitsConfig{
			ManifestPath: "units.yaml",
			FetchTimeout: 30,
		},
		Preload: PreloadConfig{
			Enabled:  true,
			Strategy: "metadata",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
