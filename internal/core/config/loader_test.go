package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_EnvSubstitution(t *testing.T) {
	// Setup env var
	os.Setenv("TEST_HF_TOKEN", "hf_abc123")
	defer os.Unsetenv("TEST_HF_TOKEN")

	configContent := `
provider:
  url: https://api-inference.huggingface.co/models/gpt2
  token: ${TEST_HF_TOKEN}
`
	tmpFile, err := os.CreateTemp("", "config_*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write([]byte(configContent)); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	tmpFile.Close()

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Provider.Token != "hf_abc123" {
		t.Errorf("Expected token hf_abc123, got %s", cfg.Provider.Token)
	}
}

func TestLoad_Defaults(t *testing.T) {
	configContent := `
provider:
  url: https://api-inference.huggingface.co/models/gpt2
`
	tmpFile, err := os.CreateTemp("", "config_*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write([]byte(configContent)); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	tmpFile.Close()

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Provider.Timeout != 30*time.Second {
		t.Errorf("Expected default timeout 30s, got %v", cfg.Provider.Timeout)
	}
	if cfg.Interview.SessionTTL != 30*time.Minute {
		t.Errorf("Expected default session TTL 30m, got %v", cfg.Interview.SessionTTL)
	}
}

func TestLoad_MissingProviderURL(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "config_*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())
	tmpFile.Close()

	if _, err := Load(tmpFile.Name()); err == nil {
		t.Error("Expected error for missing provider.url")
	}
}
