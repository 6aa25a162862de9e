package duplicates

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"os"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"sweepcore/internal/fsmodel"
)

const mmapThreshold = 128 * 1024

// Finder runs duplicate searches against a scanned tree.
type Finder struct {
	cfg Config

	mu      sync.RWMutex
	current *broadcaster
}

// New returns a Finder using cfg.
func New(cfg Config) *Finder {
	return &Finder{cfg: cfg}
}

// Subscribe returns a channel of progress snapshots for the search currently
// running, or a closed channel if no search has started yet.
func (f *Finder) Subscribe() <-chan Progress {
	f.mu.RLock()
	b := f.current
	f.mu.RUnlock()
	if b == nil {
		ch := make(chan Progress)
		close(ch)
		return ch
	}
	return b.subscribe()
}

type candidate struct {
	path string
	size uint64
}

// findRun holds the per-call state of one Find invocation: the progress
// gate and the shared warnings sink. Keeping it off Finder itself lets one
// Finder be reused (or even run concurrently) across searches.
type findRun struct {
	cfg Config

	warnMu   sync.Mutex
	warnings []fsmodel.ScanWarning

	total     int
	processed int64

	emitMu   sync.Mutex
	lastEmit time.Time
	b        *broadcaster
}

func (r *findRun) addWarning(w fsmodel.ScanWarning) {
	r.warnMu.Lock()
	r.warnings = append(r.warnings, w)
	r.warnMu.Unlock()
}

// observe records one more hashed candidate and publishes a throttled
// progress snapshot, per spec.md's Config.progress_every.
func (r *findRun) observe(phase string) {
	processed := atomic.AddInt64(&r.processed, 1)

	every := r.cfg.ProgressEvery
	if every <= 0 {
		every = defaultProgressEvery
	}
	r.emitMu.Lock()
	defer r.emitMu.Unlock()
	if time.Since(r.lastEmit) < every {
		return
	}
	r.lastEmit = time.Now()
	r.b.publish(Progress{
		Phase:          phase,
		FilesProcessed: int(processed),
		FilesTotal:     r.total,
	})
}

func (f *Finder) threads() int {
	if f.cfg.Threads > 0 {
		return f.cfg.Threads
	}
	return runtime.NumCPU()
}

// Find walks tree and returns every group of files with identical content,
// sorted by wasted space descending.
func (f *Finder) Find(ctx context.Context, tree *fsmodel.Tree) (Report, error) {
	var candidates []candidate
	collect(tree.Root, tree.RootPath, f.cfg, &candidates)

	b := newBroadcaster()
	f.mu.Lock()
	f.current = b
	f.mu.Unlock()

	run := &findRun{cfg: f.cfg, total: len(candidates), b: b, lastEmit: time.Now()}

	filesAnalyzed := uint64(len(candidates))
	sizeGroups := groupBySize(candidates)

	var groups []Group
	for _, files := range sizeGroups {
		sub, err := f.dedupeSizeGroup(ctx, run, files)
		if err != nil {
			b.closeWith(Progress{Phase: "aborted", FilesTotal: run.total})
			return Report{}, err
		}
		groups = append(groups, sub...)
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].WastedBytes != groups[j].WastedBytes {
			return groups[i].WastedBytes > groups[j].WastedBytes
		}
		return bytes.Compare(groups[i].Hash[:], groups[j].Hash[:]) < 0
	})
	if f.cfg.MaxGroups > 0 && len(groups) > f.cfg.MaxGroups {
		groups = groups[:f.cfg.MaxGroups]
	}

	var totalSize, totalWasted, withDuplicates uint64
	for _, g := range groups {
		totalSize += g.Size * uint64(len(g.Paths))
		totalWasted += g.WastedBytes
		withDuplicates += uint64(len(g.Paths))
	}

	b.closeWith(Progress{
		Phase:          "done",
		FilesProcessed: int(atomic.LoadInt64(&run.processed)),
		FilesTotal:     run.total,
		GroupsFound:    len(groups),
	})

	return Report{
		Groups:              groups,
		TotalDuplicateSize:  totalSize,
		TotalWastedSpace:    totalWasted,
		FilesAnalyzed:       filesAnalyzed,
		FilesWithDuplicates: withDuplicates,
		GroupCount:          len(groups),
		Warnings:            run.warnings,
	}, nil
}

func collect(n *fsmodel.Node, path string, cfg Config, out *[]candidate) {
	if n == nil {
		return
	}
	switch n.Kind {
	case fsmodel.KindDirectory:
		for _, child := range n.Children {
			collect(child, path+"/"+child.Name, cfg, out)
		}
	case fsmodel.KindFile:
		if n.Size == 0 {
			return
		}
		if !cfg.inRange(n.Size) {
			return
		}
		if cfg.excluded(n.Name, path) {
			return
		}
		*out = append(*out, candidate{path: path, size: n.Size})
	}
}

func groupBySize(files []candidate) map[uint64][]candidate {
	groups := make(map[uint64][]candidate)
	for _, f := range files {
		groups[f.size] = append(groups[f.size], f)
	}
	for size, files := range groups {
		if len(files) < 2 {
			delete(groups, size)
		}
	}
	return groups
}

func (f *Finder) dedupeSizeGroup(ctx context.Context, run *findRun, files []candidate) ([]Group, error) {
	if len(files) < 2 {
		return nil, nil
	}
	if !f.cfg.QuickCompare {
		return f.hashAndGroup(ctx, run, files, f.fullHash)
	}

	type partialResult struct {
		path string
		size uint64
		hash [32]byte
		err  error
	}
	results, err := runParallel(ctx, files, f.threads(), func(c candidate) partialResult {
		hash, err := f.partialHash(c.path, c.size)
		return partialResult{path: c.path, size: c.size, hash: hash, err: err}
	}, func(r partialResult) {
		if r.err != nil {
			run.addWarning(fsmodel.ScanWarning{Kind: fsmodel.WarningReadError, Path: r.path, Message: r.err.Error()})
		}
		run.observe("partial_hash")
	})
	if err != nil {
		return nil, err
	}

	byPartial := make(map[[32]byte][]candidate)
	for _, r := range results {
		if r.err != nil {
			continue
		}
		byPartial[r.hash] = append(byPartial[r.hash], candidate{path: r.path, size: r.size})
	}

	var out []Group
	for _, bucket := range byPartial {
		if len(bucket) < 2 {
			continue
		}
		sub, err := f.hashAndGroup(ctx, run, bucket, f.fullHash)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

func (f *Finder) hashAndGroup(ctx context.Context, run *findRun, files []candidate, hashFn func(string) (fsmodel.ContentHash, error)) ([]Group, error) {
	type hashResult struct {
		path string
		size uint64
		hash fsmodel.ContentHash
		err  error
	}
	results, err := runParallel(ctx, files, f.threads(), func(c candidate) hashResult {
		h, err := hashFn(c.path)
		return hashResult{path: c.path, size: c.size, hash: h, err: err}
	}, func(r hashResult) {
		if r.err != nil {
			run.addWarning(fsmodel.ScanWarning{Kind: fsmodel.WarningReadError, Path: r.path, Message: r.err.Error()})
		}
		run.observe("full_hash")
	})
	if err != nil {
		return nil, err
	}

	byHash := make(map[fsmodel.ContentHash][]string)
	sizeOf := make(map[fsmodel.ContentHash]uint64)
	for _, r := range results {
		if r.err != nil {
			continue
		}
		byHash[r.hash] = append(byHash[r.hash], r.path)
		sizeOf[r.hash] = r.size
	}

	var groups []Group
	for hash, paths := range byHash {
		if len(paths) < 2 {
			continue
		}
		sort.Strings(paths)
		size := sizeOf[hash]
		groups = append(groups, Group{
			Hash:        hash,
			Size:        size,
			Paths:       paths,
			WastedBytes: size * uint64(len(paths)-1),
		})
	}
	return groups, nil
}

// runParallel maps fn over items with bounded concurrency, short-circuiting
// on the first context cancellation. onItem, if non-nil, runs synchronously
// right after each fn call completes, before the next slot is claimed.
func runParallel[T, R any](ctx context.Context, items []T, limit int, fn func(T) R, onItem func(R)) ([]R, error) {
	results := make([]R, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r := fn(item)
			results[i] = r
			if onItem != nil {
				onItem(r)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (f *Finder) partialHash(path string, size uint64) ([32]byte, error) {
	var zero [32]byte
	file, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer file.Close()

	hasher := newHasher()

	headSize := uint64(f.cfg.PartialHeadBytes)
	if headSize > size {
		headSize = size
	}
	headBuf := make([]byte, headSize)
	if _, err := io.ReadFull(file, headBuf); err != nil {
		return zero, err
	}
	hasher.Write(headBuf)

	if size > headSize {
		tailSize := uint64(f.cfg.PartialTailBytes)
		if remaining := size - headSize; tailSize > remaining {
			tailSize = remaining
		}
		if tailSize > 0 {
			if _, err := file.Seek(-int64(tailSize), io.SeekEnd); err != nil {
				return zero, err
			}
			tailBuf := make([]byte, tailSize)
			if _, err := io.ReadFull(file, tailBuf); err != nil {
				return zero, err
			}
			hasher.Write(tailBuf)
		}
	}

	var sizeBytes [8]byte
	binary.LittleEndian.PutUint64(sizeBytes[:], size)
	hasher.Write(sizeBytes[:])

	var out [32]byte
	copy(out[:], hasher.Sum(nil))
	return out, nil
}

func (f *Finder) fullHash(path string) (fsmodel.ContentHash, error) {
	var zero fsmodel.ContentHash
	file, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return zero, err
	}

	if info.Size() >= mmapThreshold {
		if hash, err := mmapHash(file, info.Size()); err == nil {
			return hash, nil
		}
		// fall through to buffered read if mmap failed (e.g. unsupported fs)
	}

	hasher := newHasher()
	buf := make([]byte, 64*1024)
	if _, err := io.CopyBuffer(hasher, file, buf); err != nil {
		return zero, err
	}
	var out fsmodel.ContentHash
	copy(out[:], hasher.Sum(nil))
	return out, nil
}
