package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Concurrency != 20 {
		t.Errorf("Concurrency = %d, want 20", cfg.Concurrency)
	}
	if cfg.CheckpointInterval != 500 {
		t.Errorf("CheckpointInterval = %d, want 500", cfg.CheckpointInterval)
	}
	if cfg.OpenLibraryTimeout != 10*time.Second {
		t.Errorf("OpenLibraryTimeout = %v, want 10s", cfg.OpenLibraryTimeout)
	}
	if cfg.RequestDelay != 100*time.Millisecond {
		t.Errorf("RequestDelay = %v, want 100ms", cfg.RequestDelay)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CONCURRENCY", "5")
	t.Setenv("OPENLIBRARY_URL", "http://localhost:8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Concurrency != 5 {
		t.Errorf("Concurrency = %d, want 5", cfg.Concurrency)
	}
	if cfg.OpenLibraryURL != "http://localhost:8080" {
		t.Errorf("OpenLibraryURL = %q", cfg.OpenLibraryURL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }},
		{"empty url", func(c *Config) { c.OpenLibraryURL = "" }},
		{"tiny timeout", func(c *Config) { c.OpenLibraryTimeout = time.Millisecond }},
		{"zero checkpoint interval", func(c *Config) { c.CheckpointInterval = 0 }},
		{"negative delay", func(c *Config) { c.RequestDelay = -time.Second }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
