package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsComplete(t *testing.T) {
	cfg := Default()
	if cfg.Graphics.Width <= 0 || cfg.Graphics.Height <= 0 {
		t.Error("default graphics dimensions must be positive")
	}
	if cfg.Terrain.TilesX <= 0 || cfg.Terrain.TilesZ <= 0 || cfg.Terrain.TileSize <= 0 {
		t.Error("default terrain dimensions must be positive")
	}
	if cfg.Logging.Level == "" {
		t.Error("default log level must be set")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	cfg := Default()
	cfg.Graphics.Width = 1920
	cfg.Graphics.Wireframe = true
	cfg.Terrain.Seed = 42
	cfg.Logging.Level = "debug"

	path := filepath.Join(tempDir, "meshview.yaml")
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile failed: %v", err)
	}

	if loaded.Graphics.Width != 1920 {
		t.Errorf("width = %d, want 1920", loaded.Graphics.Width)
	}
	if !loaded.Graphics.Wireframe {
		t.Error("wireframe flag did not round-trip")
	}
	if loaded.Terrain.Seed != 42 {
		t.Errorf("seed = %d, want 42", loaded.Terrain.Seed)
	}
	if loaded.Logging.Level != "debug" {
		t.Errorf("level = %q, want debug", loaded.Logging.Level)
	}
}

func TestLoadFromFileMergesWithDefaults(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	// Partial file: unspecified fields keep their defaults.
	path := filepath.Join(tempDir, "meshview.yaml")
	partial := []byte("graphics:\n  width: 800\n")
	if err := os.WriteFile(path, partial, 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("loadFromFile failed: %v", err)
	}

	if cfg.Graphics.Width != 800 {
		t.Errorf("width = %d, want 800", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != Default().Graphics.Height {
		t.Errorf("height = %d, want default %d", cfg.Graphics.Height, Default().Graphics.Height)
	}
	if cfg.Terrain.TilesX != Default().Terrain.TilesX {
		t.Error("terrain defaults lost on partial load")
	}
}
