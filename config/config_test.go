package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Explain.NumFeatures != 5 {
		t.Errorf("expected NumFeatures=5, got %d", cfg.Explain.NumFeatures)
	}
	if cfg.Explain.NumSamples != 5000 {
		t.Errorf("expected NumSamples=5000, got %d", cfg.Explain.NumSamples)
	}
	if cfg.Explain.KernelWidth != 16 {
		t.Errorf("expected KernelWidth=16, got %f", cfg.Explain.KernelWidth)
	}
	if cfg.Oracle.Timeout.Std() != 10*time.Second {
		t.Errorf("expected Timeout=10s, got %s", cfg.Oracle.Timeout.Std())
	}
	if !cfg.Normalize.MaskURLs || !cfg.Normalize.MaskPhones || !cfg.Normalize.MaskNumbers {
		t.Errorf("expected all masks enabled, got %+v", cfg.Normalize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "spamlens.yaml")

	content := `
explain:
  num_features: 3
  target: ham
oracle:
  timeout: 250ms
cache:
  ttl: 1h
normalize:
  mask_numbers: false
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Explain.NumFeatures != 3 {
		t.Errorf("expected NumFeatures=3, got %d", cfg.Explain.NumFeatures)
	}
	if cfg.Explain.NumSamples != 5000 {
		t.Errorf("expected untouched NumSamples=5000, got %d", cfg.Explain.NumSamples)
	}
	if cfg.Explain.Target != "ham" {
		t.Errorf("expected Target=ham, got %s", cfg.Explain.Target)
	}
	if cfg.Oracle.Timeout.Std() != 250*time.Millisecond {
		t.Errorf("expected Timeout=250ms, got %s", cfg.Oracle.Timeout.Std())
	}
	if cfg.Cache.TTL.Std() != time.Hour {
		t.Errorf("expected TTL=1h, got %s", cfg.Cache.TTL.Std())
	}
	if cfg.Normalize.MaskNumbers {
		t.Error("expected MaskNumbers=false")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"bad duration", "oracle:\n  timeout: soon\n"},
		{"negative samples", "explain:\n  num_samples: -1\n"},
		{"negative alpha", "explain:\n  ridge_alpha: -0.5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	if err := EnsureDataDir(tmpDir); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(tmpDir, ".spamlens", "config.yaml")

	content := `
server:
  addr: ":9090"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("expected Addr=:9090, got %s", cfg.Server.Addr)
	}
}

func TestSave_RoundTripsDurations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spamlens.yaml")

	cfg := DefaultConfig()
	cfg.Server.RequestTimeout = Duration(45 * time.Second)
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.RequestTimeout.Std() != 45*time.Second {
		t.Errorf("expected 45s, got %s", loaded.Server.RequestTimeout.Std())
	}
}

func TestStorePath(t *testing.T) {
	path := StorePath("/home/user/messages")
	expected := filepath.Join("/home/user/messages", ".spamlens", "spamlens.db")
	if path != expected {
		t.Errorf("expected %s, got %s", expected, path)
	}
}
