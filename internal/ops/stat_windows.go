//go:build windows

package ops

import (
	"os"

	"sweepcore/internal/fsmodel"
)

// inodeKey is a no-op on Windows: link count is treated as 1, so every
// file is charged unconditionally, per spec.md's "on Windows analogs,
// inode dedup is skipped" note.
func inodeKey(info os.FileInfo) (fsmodel.InodeKey, bool) {
	return fsmodel.InodeKey{}, false
}
