package fsmodel

import (
	"sync"
	"time"
)

// SizedPath pairs a path with a size, used for the largest-file extremum.
type SizedPath struct {
	Path string
	Size uint64
}

// TimedPath pairs a path with a modification time, used for the
// oldest/newest-file extrema.
type TimedPath struct {
	Path     string
	Modified time.Time
}

// TreeStats summarizes a scanned Tree.
type TreeStats struct {
	TotalSize     uint64
	TotalFiles    uint64
	TotalDirs     uint64
	TotalSymlinks uint64
	MaxDepth      uint32

	LargestFile *SizedPath
	OldestFile  *TimedPath
	NewestFile  *TimedPath

	mu sync.Mutex
}

// RecordFile folds one file's metadata into the running statistics. It is
// safe to call concurrently from scanner workers; callers must not copy a
// TreeStats that has been passed to RecordFile (it embeds a mutex).
func (s *TreeStats) RecordFile(path string, size uint64, modified time.Time, depth uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.TotalFiles++
	s.TotalSize += size
	if depth > s.MaxDepth {
		s.MaxDepth = depth
	}

	if s.LargestFile == nil || size > s.LargestFile.Size {
		s.LargestFile = &SizedPath{Path: path, Size: size}
	}
	if s.OldestFile == nil || modified.Before(s.OldestFile.Modified) {
		s.OldestFile = &TimedPath{Path: path, Modified: modified}
	}
	if s.NewestFile == nil || modified.After(s.NewestFile.Modified) {
		s.NewestFile = &TimedPath{Path: path, Modified: modified}
	}
}

// RecordDir folds one directory's depth into the running statistics.
func (s *TreeStats) RecordDir(depth uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TotalDirs++
	if depth > s.MaxDepth {
		s.MaxDepth = depth
	}
}

// RecordSymlink increments the symlink counter.
func (s *TreeStats) RecordSymlink() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TotalSymlinks++
}

// Snapshot returns a copy of the stats safe to read without further locking.
func (s *TreeStats) Snapshot() TreeStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TreeStats{
		TotalSize:     s.TotalSize,
		TotalFiles:    s.TotalFiles,
		TotalDirs:     s.TotalDirs,
		TotalSymlinks: s.TotalSymlinks,
		MaxDepth:      s.MaxDepth,
		LargestFile:   s.LargestFile,
		OldestFile:    s.OldestFile,
		NewestFile:    s.NewestFile,
	}
}

// ScanConfigSnapshot records the scan options that produced a Tree, per
// spec.md §3's "config: ScanConfig snapshot" field. It mirrors
// scanner.Config's fields directly rather than embedding that type, since
// scanner already depends on fsmodel and a back-reference would cycle.
type ScanConfigSnapshot struct {
	Root             string
	MaxDepth         *uint32
	IncludeHidden    bool
	FollowSymlinks   bool
	CrossFilesystems bool
	IgnorePatterns   []string
	Threads          int
	ApparentSize     bool
}

// Tree is an immutable, fully-aggregated scan result.
type Tree struct {
	Root      *Node
	RootPath  string
	Stats     TreeStats
	Warnings  []ScanWarning
	ScanTime  time.Duration
	Config    ScanConfigSnapshot
	ScannedAt time.Time
}
