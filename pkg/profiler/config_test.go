package profiler

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Timeout)
	}
	if !cfg.IgnoreTimeout {
		t.Error("IgnoreTimeout should default to true")
	}
	if cfg.Verbose {
		t.Error("Verbose should default to false")
	}
	if !cfg.AllowFormatting {
		t.Error("AllowFormatting should default to true")
	}
	if cfg.ResultPath != "./profile" {
		t.Errorf("ResultPath = %q, want ./profile", cfg.ResultPath)
	}
	if !cfg.Autonaming {
		t.Error("Autonaming should default to true")
	}
	if cfg.LogFunction == nil {
		t.Error("LogFunction should default to the stdout writer")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
timeout: 2.5s
ignore_timeout: false
verbose: true
result_path: /tmp/timings
autonaming: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Timeout != 2500*time.Millisecond {
		t.Errorf("Timeout = %v, want 2.5s", cfg.Timeout)
	}
	if cfg.IgnoreTimeout {
		t.Error("ignore_timeout: false not applied")
	}
	if !cfg.Verbose {
		t.Error("verbose: true not applied")
	}
	if cfg.ResultPath != "/tmp/timings" {
		t.Errorf("ResultPath = %q", cfg.ResultPath)
	}
	if cfg.Autonaming {
		t.Error("autonaming: false not applied")
	}
	// Unset keys keep their defaults
	if !cfg.AllowFormatting {
		t.Error("AllowFormatting default lost")
	}
}

func TestLoadConfigBareSecondsTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("timeout: \"3\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", cfg.Timeout)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing config file did not error")
	}
}

func TestLoadConfigBadTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("timeout: soon\n"), 0o644)

	if _, err := LoadConfig(path); err == nil {
		t.Error("invalid timeout did not error")
	}
}

func TestNormalizedFillsCapabilities(t *testing.T) {
	cfg := Config{Timeout: -5 * time.Second}.normalized()

	if cfg.LogFunction == nil {
		t.Error("nil LogFunction not defaulted")
	}
	if cfg.ResultPath != "./profile" {
		t.Errorf("empty ResultPath not defaulted: %q", cfg.ResultPath)
	}
	if cfg.Timeout != 0 {
		t.Errorf("negative timeout = %v, want clamped to 0", cfg.Timeout)
	}
}
