package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "MOCK_PROBABILITY", "DISPATCH_MODE", "DETECT_TIMEOUT_MS", "SIGHTINGS_DB"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != 3000 {
		t.Errorf("Expected default port 3000, got %d", cfg.Port)
	}
	if cfg.MockProbability != 0.3 {
		t.Errorf("Expected mock probability 0.3, got %v", cfg.MockProbability)
	}
	if cfg.DispatchMode != DispatchSerial {
		t.Errorf("Expected serial dispatch, got %s", cfg.DispatchMode)
	}
	if cfg.DetectTimeout != 5*time.Second {
		t.Errorf("Expected 5s detect timeout, got %v", cfg.DetectTimeout)
	}
	if cfg.SightingsDatabase != "" {
		t.Errorf("Expected sightings archive disabled, got %q", cfg.SightingsDatabase)
	}
	if cfg.Addr() != ":3000" {
		t.Errorf("Expected addr :3000, got %s", cfg.Addr())
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8181")
	t.Setenv("MOCK_PROBABILITY", "1")
	t.Setenv("DISPATCH_MODE", "concurrent")
	t.Setenv("SIGHTING_WINDOW_MS", "500")

	cfg := Load()

	if cfg.Port != 8181 {
		t.Errorf("Expected port 8181, got %d", cfg.Port)
	}
	if cfg.MockProbability != 1 {
		t.Errorf("Expected mock probability 1, got %v", cfg.MockProbability)
	}
	if cfg.DispatchMode != DispatchConcurrent {
		t.Errorf("Expected concurrent dispatch, got %s", cfg.DispatchMode)
	}
	if cfg.SightingWindow != 500*time.Millisecond {
		t.Errorf("Expected 500ms window, got %v", cfg.SightingWindow)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	t.Setenv("DISPATCH_MODE", "parallel")
	t.Setenv("CONFIDENCE_THRESHOLD", "high")

	cfg := Load()

	if cfg.Port != 3000 {
		t.Errorf("Expected fallback port 3000, got %d", cfg.Port)
	}
	if cfg.DispatchMode != DispatchSerial {
		t.Errorf("Expected fallback serial dispatch, got %s", cfg.DispatchMode)
	}
	if cfg.ConfidenceThreshold != 0.5 {
		t.Errorf("Expected fallback threshold 0.5, got %v", cfg.ConfidenceThreshold)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("STATIC_DIR=/srv/ui\n"), 0644); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	defer os.Chdir(wd)

	t.Setenv("STATIC_DIR", "")
	os.Unsetenv("STATIC_DIR")

	cfg := Load()
	if cfg.StaticDirectory != "/srv/ui" {
		t.Errorf("Expected STATIC_DIR from .env, got %q", cfg.StaticDirectory)
	}
}
