package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("LoadConfig() with no file = %+v, want defaults %+v", cfg, DefaultConfig())
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Path = "/scan/me"
	cfg.ShowHidden = true
	cfg.Duplicates.MinSize = 2048

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.Path != "/scan/me" {
		t.Errorf("loaded.Path = %q, want /scan/me", loaded.Path)
	}
	if !loaded.ShowHidden {
		t.Error("loaded.ShowHidden = false, want true")
	}
	if loaded.Duplicates.MinSize != 2048 {
		t.Errorf("loaded.Duplicates.MinSize = %d, want 2048", loaded.Duplicates.MinSize)
	}
}

func TestLoadConfigPartialFileOnlyOverridesPresentFields(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath() error = %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"path": "/custom"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Path != "/custom" {
		t.Errorf("cfg.Path = %q, want /custom", cfg.Path)
	}
	if cfg.Ops.UseTrash != DefaultConfig().Ops.UseTrash {
		t.Errorf("cfg.Ops.UseTrash = %v, want default %v (untouched field)", cfg.Ops.UseTrash, DefaultConfig().Ops.UseTrash)
	}
}
