// Package config loads service configuration from a YAML file with sensible
// defaults for everything left unset. API keys normally come from the
// environment, not the file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type LLM struct {
	Provider       string `yaml:"provider"`
	Model          string `yaml:"model"`
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (l LLM) Timeout() time.Duration { return time.Duration(l.TimeoutSeconds) * time.Second }

type Fetch struct {
	TimeoutSeconds int   `yaml:"timeout_seconds"`
	MaxBytes       int64 `yaml:"max_bytes"`
}

func (f Fetch) Timeout() time.Duration { return time.Duration(f.TimeoutSeconds) * time.Second }

// Defaults supplies loop and target parameters when a request omits them.
type Defaults struct {
	Loops       int `yaml:"loops"`
	TargetWords int `yaml:"target_words"`
}

type Config struct {
	Listen   string   `yaml:"listen"`
	LLM      LLM      `yaml:"llm"`
	Fetch    Fetch    `yaml:"fetch"`
	Defaults Defaults `yaml:"defaults"`
}

func Default() *Config {
	return &Config{
		Listen: ":8080",
		LLM:    LLM{TimeoutSeconds: 60},
		Fetch:  Fetch{TimeoutSeconds: 10, MaxBytes: 2 << 20},
		Defaults: Defaults{
			Loops:       1,
			TargetWords: 1000,
		},
	}
}

// Load reads a YAML config file over the defaults and validates the result.
// An empty path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return fmt.Errorf("llm.timeout_seconds must be positive, got %d", c.LLM.TimeoutSeconds)
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be positive, got %d", c.Fetch.TimeoutSeconds)
	}
	if c.Defaults.Loops < 1 {
		return fmt.Errorf("defaults.loops must be at least 1, got %d", c.Defaults.Loops)
	}
	if c.Defaults.TargetWords < 0 {
		return fmt.Errorf("defaults.target_words must be non-negative, got %d", c.Defaults.TargetWords)
	}
	return nil
}
