package pathutil

import "github.com/dustin/go-humanize"

// FormatBytes renders a byte count using base-2 units (KiB, MiB, ...),
// matching the "apparent size" / "disk blocks" vocabulary used throughout
// the scan report.
func FormatBytes(n uint64) string {
	return humanize.IBytes(n)
}
