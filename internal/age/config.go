// Package age buckets a scanned tree's files by modification age and
// surfaces directories that look abandoned.
package age

import "time"

// Bucket names one age band by its upper bound.
type Bucket struct {
	Name   string
	MaxAge time.Duration
}

// Config controls one age analysis.
type Config struct {
	// ReferenceTime anchors every age calculation; zero means time.Now().
	ReferenceTime time.Time

	Buckets []Bucket

	StaleThreshold   time.Duration
	MinStaleSize     uint64
	MaxStaleDirs     int
	TopFilesPerBucket int
}

// DefaultBuckets mirrors the analyzer's historical five-band split.
func DefaultBuckets() []Bucket {
	day := 24 * time.Hour
	return []Bucket{
		{Name: "Today", MaxAge: day},
		{Name: "This Week", MaxAge: 7 * day},
		{Name: "This Month", MaxAge: 30 * day},
		{Name: "This Year", MaxAge: 365 * day},
		{Name: "Older", MaxAge: time.Duration(1<<63 - 1)},
	}
}

// DefaultConfig returns the analyzer's historical defaults: a one-year
// stale threshold, 1MiB minimum stale-directory size, up to 100 reported
// stale directories, and the top 10 largest files tracked per bucket.
func DefaultConfig() Config {
	return Config{
		Buckets:           DefaultBuckets(),
		StaleThreshold:    365 * 24 * time.Hour,
		MinStaleSize:      1024 * 1024,
		MaxStaleDirs:      100,
		TopFilesPerBucket: 10,
	}
}

func (c Config) referenceTime() time.Time {
	if c.ReferenceTime.IsZero() {
		return time.Now()
	}
	return c.ReferenceTime
}
