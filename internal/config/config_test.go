package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Run("overrides defaults", func(t *testing.T) {
		path := writeConfig(t, "model: claude-x\nmax_tokens: 2048\ncode_execution: true\n")
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Model != "claude-x" {
			t.Errorf("Model = %q, want claude-x", cfg.Model)
		}
		if cfg.MaxTokens != 2048 {
			t.Errorf("MaxTokens = %d, want 2048", cfg.MaxTokens)
		}
		if !cfg.CodeExecution {
			t.Error("CodeExecution = false, want true")
		}
		// Untouched keys keep their defaults.
		if cfg.OutputDir != "output" {
			t.Errorf("OutputDir = %q, want output", cfg.OutputDir)
		}
	})

	t.Run("expands environment variables", func(t *testing.T) {
		t.Setenv("TEST_AGNT_KEY", "sk-from-env")
		path := writeConfig(t, "api_key: ${TEST_AGNT_KEY}\n")
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.APIKey != "sk-from-env" {
			t.Errorf("APIKey = %q, want sk-from-env", cfg.APIKey)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeConfig(t, "model: [unclosed\n")
		if _, err := Load(path); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-env")
	t.Setenv("ANTHROPIC_MODEL", "claude-env")

	cfg := Default()
	cfg.APIKey = "sk-file"
	cfg.ApplyEnv()

	if cfg.APIKey != "sk-env" {
		t.Errorf("APIKey = %q, env should beat file", cfg.APIKey)
	}
	if cfg.Model != "claude-env" {
		t.Errorf("Model = %q, want claude-env", cfg.Model)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Error("expected error without API key")
	}
	cfg.APIKey = "sk-1"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
