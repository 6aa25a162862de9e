// Package config layers default values, a JSON file under the user's config
// directory, and command-line flags into the settings each engine package
// needs, following the same layering the teacher CLI used for its own
// persisted settings.
package config

import (
	"time"

	"sweepcore/internal/age"
	"sweepcore/internal/duplicates"
	"sweepcore/internal/ops"
	"sweepcore/internal/scanner"
)

// Config is the fully resolved set of settings driving one sweepcore run.
type Config struct {
	Path       string `json:"path"`
	ShowHidden bool   `json:"showHidden"`
	SafeMode   bool   `json:"safeMode"`
	Theme      string `json:"theme"`

	Scan       ScanSettings `json:"scan"`
	Duplicates DupeSettings `json:"duplicates"`
	Age        AgeSettings  `json:"age"`
	Ops        OpsSettings  `json:"ops"`

	// RunDuplicates and RunAge are CLI-only switches, never persisted.
	RunDuplicates bool `json:"-"`
	RunAge        bool `json:"-"`
}

// ScanSettings mirrors the fields of scanner.Config worth persisting.
type ScanSettings struct {
	Threads          int      `json:"threads"`
	FollowSymlinks   bool     `json:"followSymlinks"`
	CrossFilesystems bool     `json:"crossFilesystems"`
	ApparentSize     bool     `json:"apparentSize"`
	MaxDepth         uint32   `json:"maxDepth"`
	IgnoreGlobs      []string `json:"ignoreGlobs"`
}

// DupeSettings mirrors the fields of duplicates.Config worth persisting.
type DupeSettings struct {
	MinSize      uint64   `json:"minSize"`
	MaxSize      uint64   `json:"maxSize"`
	QuickCompare bool     `json:"quickCompare"`
	ExcludeGlobs []string `json:"excludeGlobs"`
	MaxGroups    int      `json:"maxGroups"`
}

// AgeSettings mirrors the fields of age.Config worth persisting.
type AgeSettings struct {
	StaleThresholdDays int    `json:"staleThresholdDays"`
	MinStaleSize       uint64 `json:"minStaleSize"`
	MaxStaleDirs       int    `json:"maxStaleDirs"`
	TopFilesPerBucket  int    `json:"topFilesPerBucket"`
}

// OpsSettings mirrors the operations engine's persisted preferences.
type OpsSettings struct {
	UseTrash     bool `json:"useTrash"`
	UndoCapacity int  `json:"undoCapacity"`
}

func (c Config) ScannerConfig() scanner.Config {
	cfg := scanner.Config{
		Root:             c.Path,
		Threads:          c.Scan.Threads,
		FollowSymlinks:   c.Scan.FollowSymlinks,
		CrossFilesystems: c.Scan.CrossFilesystems,
		ApparentSize:     c.Scan.ApparentSize,
		IncludeHidden:    c.ShowHidden,
		IgnorePatterns:   c.Scan.IgnoreGlobs,
	}
	if c.Scan.MaxDepth > 0 {
		depth := c.Scan.MaxDepth
		cfg.MaxDepth = &depth
	}
	return cfg
}

func (c Config) DuplicatesConfig() duplicates.Config {
	cfg := duplicates.DefaultConfig()
	cfg.MinSize = c.Duplicates.MinSize
	cfg.MaxSize = c.Duplicates.MaxSize
	cfg.QuickCompare = c.Duplicates.QuickCompare
	cfg.ExcludeGlobs = c.Duplicates.ExcludeGlobs
	cfg.MaxGroups = c.Duplicates.MaxGroups
	return cfg
}

func (c Config) AgeConfig() age.Config {
	cfg := age.DefaultConfig()
	if c.Age.StaleThresholdDays > 0 {
		cfg.StaleThreshold = time.Duration(c.Age.StaleThresholdDays) * 24 * time.Hour
	}
	if c.Age.MinStaleSize > 0 {
		cfg.MinStaleSize = c.Age.MinStaleSize
	}
	if c.Age.MaxStaleDirs > 0 {
		cfg.MaxStaleDirs = c.Age.MaxStaleDirs
	}
	if c.Age.TopFilesPerBucket > 0 {
		cfg.TopFilesPerBucket = c.Age.TopFilesPerBucket
	}
	return cfg
}

func (c Config) OpsRequestDefaults() ops.Request {
	return ops.Request{UseTrash: c.Ops.UseTrash, SafeMode: c.SafeMode}
}

type fileConfig struct {
	Path       *string       `json:"path"`
	ShowHidden *bool         `json:"showHidden"`
	SafeMode   *bool         `json:"safeMode"`
	Theme      *string       `json:"theme"`
	Scan       *ScanSettings `json:"scan"`
	Duplicates *DupeSettings `json:"duplicates"`
	Age        *AgeSettings  `json:"age"`
	Ops        *OpsSettings  `json:"ops"`
}
