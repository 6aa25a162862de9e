package age

import (
	"fmt"
	"time"
)

// AgedFile pairs a path with the size and modification time used to rank it
// as one of a bucket's largest files.
type AgedFile struct {
	Path     string
	Size     uint64
	Modified time.Time
}

// BucketStats summarizes one age band.
type BucketStats struct {
	Name      string
	MaxAge    time.Duration
	FileCount uint64
	TotalSize uint64
	TopFiles  []AgedFile
}

// StaleDirectory is a directory whose newest file is older than the
// configured stale threshold.
type StaleDirectory struct {
	Path          string
	Size          uint64
	NewestFileAge time.Duration
	FileCount     uint64
}

// Report summarizes one age analysis.
type Report struct {
	// Buckets holds the configured age bands in order, followed by the
	// distinguished "Unknown" bucket (files with no modification time on
	// record) only when it is non-empty.
	Buckets          []BucketStats
	StaleDirectories []StaleDirectory

	TotalFiles      uint64
	TotalSize       uint64
	AverageAge      time.Duration
	MedianAgeBucket string
}

// UnknownBucketName is the distinguished bucket name for files missing a
// modification time; it is appended to Report.Buckets only when non-empty.
const UnknownBucketName = "Unknown"

// HasStaleDirectories reports whether any stale directories were found.
func (r Report) HasStaleDirectories() bool { return len(r.StaleDirectories) > 0 }

// TotalStaleSize sums the size of every reported stale directory.
func (r Report) TotalStaleSize() uint64 {
	var total uint64
	for _, d := range r.StaleDirectories {
		total += d.Size
	}
	return total
}

// LargestBucket returns the bucket with the most files.
func (r Report) LargestBucket() *BucketStats {
	var best *BucketStats
	for i := range r.Buckets {
		if best == nil || r.Buckets[i].FileCount > best.FileCount {
			best = &r.Buckets[i]
		}
	}
	return best
}

// FormatAge renders a duration the way the CLI summary does: the coarsest
// unit that keeps the number readable.
func FormatAge(d time.Duration) string {
	secs := int64(d.Seconds())
	switch {
	case secs < 60:
		return formatUnit(secs, "second")
	case secs < 3600:
		return formatUnit(secs/60, "minute")
	case secs < 86400:
		return formatUnit(secs/3600, "hour")
	case secs < 2592000:
		return formatUnit(secs/86400, "day")
	case secs < 31536000:
		return formatUnit(secs/2592000, "month")
	default:
		return fmt.Sprintf("%.1f years", float64(secs)/31536000.0)
	}
}

func formatUnit(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
