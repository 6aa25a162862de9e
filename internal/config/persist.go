package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const (
	configDirName  = "sweepcore"
	configFileName = "config.json"
)

// DefaultConfig returns sweepcore's built-in settings, used whenever no
// config file is present and no flag overrides a value.
func DefaultConfig() Config {
	return Config{
		Path:       ".",
		ShowHidden: false,
		SafeMode:   true,
		Theme:      "dark",
		Scan: ScanSettings{
			FollowSymlinks:   false,
			CrossFilesystems: false,
			ApparentSize:     false,
		},
		Duplicates: DupeSettings{
			MinSize:      1024,
			QuickCompare: true,
			MaxGroups:    0,
		},
		Age: AgeSettings{
			StaleThresholdDays: 365,
			MinStaleSize:       1024 * 1024,
			MaxStaleDirs:       100,
			TopFilesPerBucket:  10,
		},
		Ops: OpsSettings{
			UseTrash:     true,
			UndoCapacity: 100,
		},
	}
}

// ConfigPath returns the path to the persisted config file under the
// user's config directory.
func ConfigPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, configDirName, configFileName), nil
}

// LoadConfig returns DefaultConfig overlaid with whatever the persisted
// file contains. A missing file is not an error.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	var stored fileConfig
	if err := json.Unmarshal(data, &stored); err != nil {
		return cfg, err
	}
	return mergeConfig(cfg, stored), nil
}

// SaveConfig persists cfg to the user's config directory.
func SaveConfig(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeConfig(base Config, stored fileConfig) Config {
	merged := base
	if stored.Path != nil {
		merged.Path = *stored.Path
	}
	if stored.ShowHidden != nil {
		merged.ShowHidden = *stored.ShowHidden
	}
	if stored.SafeMode != nil {
		merged.SafeMode = *stored.SafeMode
	}
	if stored.Theme != nil {
		merged.Theme = *stored.Theme
	}
	if stored.Scan != nil {
		merged.Scan = *stored.Scan
	}
	if stored.Duplicates != nil {
		merged.Duplicates = *stored.Duplicates
	}
	if stored.Age != nil {
		merged.Age = *stored.Age
	}
	if stored.Ops != nil {
		merged.Ops = *stored.Ops
	}
	return merged
}
