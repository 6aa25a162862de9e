//go:build !windows

package ops

import (
	"os"
	"syscall"

	"sweepcore/internal/fsmodel"
)

// inodeKey reports the (device, inode) pair behind info, and whether it is
// worth tracking at all: a file with a single link has no dedup ambiguity,
// so callers should charge it unconditionally instead of consulting a seen
// set. Mirrors scanner's getPlatformStat/inodeTracker pairing.
func inodeKey(info os.FileInfo) (fsmodel.InodeKey, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok || stat.Nlink <= 1 {
		return fsmodel.InodeKey{}, false
	}
	return fsmodel.InodeKey{Device: uint64(stat.Dev), Inode: stat.Ino}, true
}
