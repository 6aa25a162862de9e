package config

import "flag"

// ParseFlags overlays command-line flags onto base, the last layer in the
// defaults -> file -> flags chain.
func ParseFlags(base Config) Config {
	path := flag.String("path", base.Path, "root path to scan")
	showHidden := flag.Bool("show-hidden", base.ShowHidden, "include hidden files and directories")
	safeMode := flag.Bool("safe-mode", base.SafeMode, "block destructive operations on critical paths")

	threads := flag.Int("threads", base.Scan.Threads, "worker pool size (0 = auto)")
	followSymlinks := flag.Bool("follow-symlinks", base.Scan.FollowSymlinks, "follow symlinked directories")
	crossFilesystems := flag.Bool("cross-filesystems", base.Scan.CrossFilesystems, "descend into mounted filesystems")
	apparentSize := flag.Bool("apparent-size", base.Scan.ApparentSize, "report apparent size instead of disk usage")

	findDuplicates := flag.Bool("duplicates", false, "run duplicate detection after scanning")
	quickCompare := flag.Bool("quick-compare", base.Duplicates.QuickCompare, "partial-hash before full-hash when deduplicating")
	minDupeSize := flag.Uint64("min-dupe-size", base.Duplicates.MinSize, "minimum file size considered for duplicate detection")

	findAge := flag.Bool("age", false, "run age analysis after scanning")
	staleDays := flag.Int("stale-days", base.Age.StaleThresholdDays, "age in days past which a directory is reported stale")

	useTrash := flag.Bool("use-trash", base.Ops.UseTrash, "move deleted files to the local trash instead of unlinking")

	flag.Parse()

	base.Path = *path
	base.ShowHidden = *showHidden
	base.SafeMode = *safeMode
	base.Scan.Threads = *threads
	base.Scan.FollowSymlinks = *followSymlinks
	base.Scan.CrossFilesystems = *crossFilesystems
	base.Scan.ApparentSize = *apparentSize
	base.Duplicates.QuickCompare = *quickCompare
	base.Duplicates.MinSize = *minDupeSize
	base.Age.StaleThresholdDays = *staleDays
	base.Ops.UseTrash = *useTrash

	base.RunDuplicates = *findDuplicates
	base.RunAge = *findAge
	return base
}
