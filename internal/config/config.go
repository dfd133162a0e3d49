// Package config holds the environment-driven settings of the pipeline.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	OpenLibraryURL     string        `envconfig:"OPENLIBRARY_URL" default:"https://openlibrary.org"`
	OpenLibraryTimeout time.Duration `envconfig:"OPENLIBRARY_TIMEOUT" default:"10s"`
	RequestDelay       time.Duration `envconfig:"REQUEST_DELAY" default:"100ms"`

	Concurrency        int `envconfig:"CONCURRENCY" default:"20"`
	CheckpointInterval int `envconfig:"CHECKPOINT_INTERVAL" default:"500"`

	OutputDir string `envconfig:"OUTPUT_DIR" default:"data/modified"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.OpenLibraryURL == "" {
		return fmt.Errorf("OPENLIBRARY_URL is required")
	}
	if c.OpenLibraryTimeout < time.Second {
		return fmt.Errorf("OPENLIBRARY_TIMEOUT must be >= 1s")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("CONCURRENCY must be >= 1")
	}
	if c.CheckpointInterval < 1 {
		return fmt.Errorf("CHECKPOINT_INTERVAL must be >= 1")
	}
	if c.RequestDelay < 0 {
		return fmt.Errorf("REQUEST_DELAY cannot be negative")
	}
	return nil
}
