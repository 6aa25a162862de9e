package scanner

import (
	"sync"

	"sweepcore/internal/fsmodel"
)

// inodeTracker records which (device, inode) pairs have already been
// charged against the running totals, so a file with multiple hard links
// contributes its size exactly once. Mirrors the InodeTracker in the
// original scan engine this package's accounting was ported from.
type inodeTracker struct {
	mu   sync.Mutex
	seen map[fsmodel.InodeKey]bool
}

func newInodeTracker() *inodeTracker {
	return &inodeTracker{seen: make(map[fsmodel.InodeKey]bool)}
}

// claim reports whether this is the first time key has been seen. Keys
// with nlink <= 1 should not be tracked by the caller at all (every file
// counts), since a never-shared inode has no accounting ambiguity.
func (t *inodeTracker) claim(key fsmodel.InodeKey) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.seen[key] {
		return false
	}
	t.seen[key] = true
	return true
}
