//go:build windows

package scanner

import "os"

type platformStat struct {
	device uint64
	inode  uint64
	blocks uint64
	nlink  uint64
	ok     bool
}

func getPlatformStat(info os.FileInfo) platformStat {
	return platformStat{blocks: uint64(info.Size()+511) / 512}
}

func isExecutable(info os.FileInfo) bool {
	name := info.Name()
	for _, ext := range []string{".exe", ".bat", ".cmd", ".com"} {
		if len(name) > len(ext) && name[len(name)-len(ext):] == ext {
			return true
		}
	}
	return false
}
