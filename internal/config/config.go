// Package config loads client configuration from an optional YAML file,
// with environment variables layered on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds everything the client and its consumers need to run.
type Config struct {
	APIKey        string `yaml:"api_key"`
	Model         string `yaml:"model"`
	BaseURL       string `yaml:"base_url"`
	MaxTokens     int    `yaml:"max_tokens"`
	OutputDir     string `yaml:"output_dir"`
	CodeExecution bool   `yaml:"code_execution"`
	LogLevel      string `yaml:"log_level"`
	LogFile       string `yaml:"log_file"`
}

// Default returns the baseline configuration before file and env layers.
func Default() Config {
	return Config{
		Model:     "claude-sonnet-4-20250514",
		MaxTokens: 4096,
		OutputDir: "output",
	}
}

// DefaultPath returns the conventional config file location, or "" when the
// home directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "agnt", "config.yaml")
}

// Load reads a YAML config file, expands environment variables in its
// values, and unmarshals over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("cannot read config file %q: %w", path, err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}

	return &cfg, nil
}

// ApplyEnv overlays the well-known environment variables. Env beats file.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("ANTHROPIC_BASE_URL"); v != "" {
		c.BaseURL = v
	}
}

// Validate reports configuration the client cannot run with.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("no API key: set ANTHROPIC_API_KEY or api_key in the config file")
	}
	return nil
}
