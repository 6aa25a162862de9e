// Package ops runs filesystem mutations (copy, move, rename, create,
// delete) asynchronously, reporting progress and surfacing conflicts for
// the caller to resolve, with an undo log recording each completed
// operation.
package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ConflictKind tags why an operation needs caller input before proceeding.
type ConflictKind int

const (
	ConflictFileExists ConflictKind = iota
	ConflictDirectoryExists
	ConflictSourceIsAncestor
	ConflictPermissionDenied
	ConflictSameFile
)

func (k ConflictKind) String() string {
	switch k {
	case ConflictFileExists:
		return "file already exists"
	case ConflictDirectoryExists:
		return "directory already exists"
	case ConflictSourceIsAncestor:
		return "cannot copy/move a directory into itself"
	case ConflictPermissionDenied:
		return "permission denied"
	case ConflictSameFile:
		return "source and destination are the same file"
	default:
		return "unknown conflict"
	}
}

// Conflict describes one operation that cannot proceed without a decision.
type Conflict struct {
	Source      string
	Destination string
	Kind        ConflictKind
}

// Resolution is the caller's answer to a Conflict.
type Resolution int

const (
	ResolutionSkip Resolution = iota
	ResolutionOverwrite
	ResolutionAutoRename
	ResolutionSkipAll
	ResolutionOverwriteAll
	ResolutionAbort
)

// IsGlobal reports whether a resolution applies to every remaining
// conflict in the current operation, not just the one it answers.
func (r Resolution) IsGlobal() bool {
	return r == ResolutionSkipAll || r == ResolutionOverwriteAll || r == ResolutionAbort
}

// ToSingle collapses a global resolution to its per-item equivalent.
func (r Resolution) ToSingle() Resolution {
	switch r {
	case ResolutionSkipAll:
		return ResolutionSkip
	case ResolutionOverwriteAll:
		return ResolutionOverwrite
	default:
		return r
	}
}

// autoRenamePath finds the first unused "name (n).ext" sibling of path.
func autoRenamePath(path string) string {
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)

	for i := 1; i < 1000; i++ {
		var candidate string
		if ext != "" {
			candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, i, ext))
		} else {
			candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)", stem, i))
		}
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	if ext != "" {
		return filepath.Join(dir, fmt.Sprintf("%s_%s%s", stem, ts, ext))
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%s", stem, ts))
}
