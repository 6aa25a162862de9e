package age

import (
	"sort"
	"time"

	"sweepcore/internal/fsmodel"
)

// Analyzer runs age analyses against a scanned tree.
type Analyzer struct {
	cfg Config
}

// New returns an Analyzer using cfg.
func New(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

type bucketCollector struct {
	bucket    Bucket
	fileCount uint64
	totalSize uint64
	topFiles  []AgedFile
	maxFiles  int
}

func (c *bucketCollector) addFile(path string, size uint64, modified time.Time) {
	c.fileCount++
	c.totalSize += size

	if c.maxFiles <= 0 {
		return
	}
	if len(c.topFiles) < c.maxFiles {
		c.topFiles = append(c.topFiles, AgedFile{Path: path, Size: size, Modified: modified})
		sort.Slice(c.topFiles, func(i, j int) bool { return c.topFiles[i].Size > c.topFiles[j].Size })
		return
	}
	smallest := c.topFiles[len(c.topFiles)-1]
	if size > smallest.Size {
		c.topFiles[len(c.topFiles)-1] = AgedFile{Path: path, Size: size, Modified: modified}
		sort.Slice(c.topFiles, func(i, j int) bool { return c.topFiles[i].Size > c.topFiles[j].Size })
	}
}

// Analyze buckets every file in tree by age and ranks stale directories.
func (a *Analyzer) Analyze(tree *fsmodel.Tree) Report {
	reference := a.cfg.referenceTime()
	buckets := a.cfg.Buckets
	if len(buckets) == 0 {
		buckets = DefaultBuckets()
	}

	collectors := make([]*bucketCollector, len(buckets))
	for i, b := range buckets {
		collectors[i] = &bucketCollector{bucket: b, maxFiles: a.cfg.TopFilesPerBucket}
	}
	unknown := &bucketCollector{bucket: Bucket{Name: UnknownBucketName}, maxFiles: a.cfg.TopFilesPerBucket}

	var totalFiles, totalSize uint64
	var weightedAgeSecs, weightedSize float64

	var visit func(n *fsmodel.Node, path string)
	visit = func(n *fsmodel.Node, path string) {
		if n == nil {
			return
		}
		switch n.Kind {
		case fsmodel.KindDirectory:
			for _, child := range n.Children {
				visit(child, path+"/"+child.Name)
			}
		case fsmodel.KindFile:
			totalFiles++
			totalSize += n.Size

			if n.Timestamps.Modified == nil {
				unknown.addFile(path, n.Size, time.Time{})
				return
			}
			modified := *n.Timestamps.Modified
			age := reference.Sub(modified)
			if age < 0 {
				age = 0
			}

			weightedAgeSecs += age.Seconds() * float64(n.Size)
			weightedSize += float64(n.Size)

			for _, c := range collectors {
				if age <= c.bucket.MaxAge {
					c.addFile(path, n.Size, modified)
					break
				}
			}
		}
	}
	visit(tree.Root, tree.RootPath)

	var staleCandidates []StaleDirectory
	a.findStaleDirectories(tree.Root, tree.RootPath, reference, &staleCandidates)
	sort.Slice(staleCandidates, func(i, j int) bool { return staleCandidates[i].Size > staleCandidates[j].Size })
	if a.cfg.MaxStaleDirs > 0 && len(staleCandidates) > a.cfg.MaxStaleDirs {
		staleCandidates = staleCandidates[:a.cfg.MaxStaleDirs]
	}

	var averageAge time.Duration
	if weightedSize > 0 {
		averageAge = time.Duration(weightedAgeSecs / weightedSize * float64(time.Second))
	}

	halfFiles := totalFiles / 2
	var cumulative uint64
	medianBucket := ""
	if len(buckets) > 0 {
		medianBucket = buckets[0].Name
	}
	for _, c := range collectors {
		cumulative += c.fileCount
		if cumulative >= halfFiles {
			medianBucket = c.bucket.Name
			break
		}
	}

	stats := make([]BucketStats, len(collectors))
	for i, c := range collectors {
		stats[i] = BucketStats{
			Name:      c.bucket.Name,
			MaxAge:    c.bucket.MaxAge,
			FileCount: c.fileCount,
			TotalSize: c.totalSize,
			TopFiles:  c.topFiles,
		}
	}
	if unknown.fileCount > 0 {
		stats = append(stats, BucketStats{
			Name:      unknown.bucket.Name,
			FileCount: unknown.fileCount,
			TotalSize: unknown.totalSize,
			TopFiles:  unknown.topFiles,
		})
	}

	return Report{
		Buckets:          stats,
		StaleDirectories: staleCandidates,
		TotalFiles:       totalFiles,
		TotalSize:        totalSize,
		AverageAge:       averageAge,
		MedianAgeBucket:  medianBucket,
	}
}

// findStaleDirectories recurses into directories, reporting any whose
// newest-file age clears the stale threshold and whose size clears the
// minimum, without descending further once a directory qualifies.
func (a *Analyzer) findStaleDirectories(n *fsmodel.Node, path string, reference time.Time, out *[]StaleDirectory) {
	if n == nil || n.Kind != fsmodel.KindDirectory {
		return
	}

	if n.Size < a.cfg.MinStaleSize {
		for _, child := range n.Children {
			if child.IsDir() {
				a.findStaleDirectories(child, path+"/"+child.Name, reference, out)
			}
		}
		return
	}

	newest := newestFileTime(n)
	if newest != nil {
		age := reference.Sub(*newest)
		if age < 0 {
			age = 0
		}
		if age >= a.cfg.StaleThreshold {
			*out = append(*out, StaleDirectory{
				Path:          path,
				Size:          n.Size,
				NewestFileAge: age,
				FileCount:     n.FileCount(),
			})
			return
		}
	}

	for _, child := range n.Children {
		if child.IsDir() {
			a.findStaleDirectories(child, path+"/"+child.Name, reference, out)
		}
	}
}

func newestFileTime(n *fsmodel.Node) *time.Time {
	switch n.Kind {
	case fsmodel.KindFile:
		return n.Timestamps.Modified
	case fsmodel.KindDirectory:
		var newest *time.Time
		for _, child := range n.Children {
			if t := newestFileTime(child); t != nil {
				if newest == nil || t.After(*newest) {
					newest = t
				}
			}
		}
		return newest
	default:
		return nil
	}
}
