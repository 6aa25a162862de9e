// Package duplicates finds groups of files with identical content inside an
// already-scanned tree, using a three-phase size/partial-hash/full-hash
// pipeline to avoid hashing files that cannot possibly match.
package duplicates

import (
	"time"

	"sweepcore/internal/pathutil"
)

// Config controls one duplicate search.
type Config struct {
	// MinSize and MaxSize bound which files are considered at all.
	MinSize uint64
	MaxSize uint64 // 0 means unbounded

	// QuickCompare runs the partial-hash phase before the full hash; when
	// false every size-matched candidate goes straight to a full hash.
	QuickCompare bool

	PartialHeadBytes int
	PartialTailBytes int

	ExcludeGlobs []string

	// MaxGroups truncates the sorted report; 0 means unlimited.
	MaxGroups int

	Threads int

	// ProgressEvery gates how often Find publishes a Progress snapshot to
	// subscribers of Finder.Subscribe. Zero uses defaultProgressEvery.
	ProgressEvery time.Duration
}

const defaultProgressEvery = 200 * time.Millisecond

// DefaultConfig mirrors the finder's historical defaults: a 1-byte minimum
// size (every non-empty file is a candidate), quick comparison enabled,
// 4KiB head/tail partial hash.
func DefaultConfig() Config {
	return Config{
		MinSize:          1,
		QuickCompare:     true,
		PartialHeadBytes: 4096,
		PartialTailBytes: 4096,
		ProgressEvery:    defaultProgressEvery,
	}
}

func (c Config) inRange(size uint64) bool {
	if size < c.MinSize {
		return false
	}
	if c.MaxSize > 0 && size > c.MaxSize {
		return false
	}
	return true
}

func (c Config) excluded(name, fullPath string) bool {
	return len(c.ExcludeGlobs) > 0 && pathutil.MatchAny(c.ExcludeGlobs, name, fullPath)
}
