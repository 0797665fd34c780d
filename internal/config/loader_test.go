package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadCustomPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	body := "step_delay_ms: 120\nlevels_dir: /tmp/levels\ntelemetry: true\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.StepDelayMS != 120 || cfg.LevelsDir != "/tmp/levels" || !cfg.Telemetry {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.StepDelay() != 120*time.Millisecond {
		t.Errorf("StepDelay = %v, want 120ms", cfg.StepDelay())
	}
}

func TestLoadCustomPathErrors(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Load should fail for a missing explicit path")
	}

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte(":\n  - ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("Load should fail for unparseable explicit config")
	}
}

func TestEmbeddedDefaultParses(t *testing.T) {
	// The embedded default must at least carry a sane step delay.
	t.Setenv("HOME", t.TempDir()) // keep a real user config out of the search path

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.StepDelayMS <= 0 {
		t.Errorf("embedded default step delay = %d, want positive", cfg.StepDelayMS)
	}
}
