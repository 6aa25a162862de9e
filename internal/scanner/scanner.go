// Package scanner walks a directory tree and produces a fully aggregated
// fsmodel.Tree: per-node sizes, hardlink-deduplicated totals, and run-level
// statistics. A scan degrades gracefully on per-entry failures, recording a
// warning and continuing rather than aborting.
package scanner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"sweepcore/internal/fsmodel"
)

// Scanner runs scans and fans out their progress to subscribers. The zero
// value is ready to use.
type Scanner struct {
	mu      sync.RWMutex
	current *broadcaster
}

// New returns a ready Scanner.
func New() *Scanner {
	return &Scanner{}
}

// Subscribe returns a channel of progress snapshots for the scan currently
// running, or a closed channel if no scan has started yet.
func (s *Scanner) Subscribe() <-chan Progress {
	s.mu.RLock()
	b := s.current
	s.mu.RUnlock()
	if b == nil {
		ch := make(chan Progress)
		close(ch)
		return ch
	}
	return b.subscribe()
}

// Scan walks cfg.Root and returns the fully aggregated tree. It returns a
// *fsmodel.ScanError only for failures against the root itself; per-entry
// failures are recorded as warnings on the returned tree.
func (s *Scanner) Scan(ctx context.Context, cfg Config) (*fsmodel.Tree, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := newBroadcaster()
	s.mu.Lock()
	s.current = b
	s.mu.Unlock()

	start := time.Now()

	rootPath, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fsmodel.IOFailure(cfg.Root, err)
	}
	rootPath = filepath.Clean(rootPath)
	if resolved, err := filepath.EvalSymlinks(rootPath); err == nil {
		rootPath = resolved
	}

	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, fsmodel.IOFailure(rootPath, err)
	}
	if !info.IsDir() {
		return nil, fsmodel.NotADirectory(rootPath)
	}

	rootStat := getPlatformStat(info)

	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	if threads < 1 {
		threads = 1
	}

	stats := &fsmodel.TreeStats{}

	var warningsMu sync.Mutex
	var warnings []fsmodel.ScanWarning
	addWarning := func(w fsmodel.ScanWarning) {
		warningsMu.Lock()
		warnings = append(warnings, w)
		warningsMu.Unlock()
	}

	var filesScanned, dirsScanned, bytesScanned int64

	var emitMu sync.Mutex
	lastEmit := time.Now()
	emit := func(path string) {
		emitMu.Lock()
		defer emitMu.Unlock()
		fc := atomic.LoadInt64(&filesScanned)
		if time.Since(lastEmit) < 50*time.Millisecond && fc%500 != 0 {
			return
		}
		lastEmit = time.Now()
		b.publish(Progress{
			FilesScanned: fc,
			DirsScanned:  atomic.LoadInt64(&dirsScanned),
			BytesScanned: atomic.LoadInt64(&bytesScanned),
			CurrentPath:  path,
		})
	}

	w := &walker{
		ctx:          ctx,
		cfg:          cfg,
		rootPath:     rootPath,
		rootDevice:   rootStat.device,
		stats:        stats,
		tracker:      newInodeTracker(),
		jobs:         make(chan fileJob, threads*8),
		results:      make(chan fileResult, threads*8),
		nodes:        make(map[string]*nodeBuilder),
		addWarning:   addWarning,
		emit:         emit,
		filesScanned: &filesScanned,
		dirsScanned:  &dirsScanned,
		bytesScanned: &bytesScanned,
	}

	rootModified := info.ModTime()
	w.nodes[rootPath] = &nodeBuilder{
		path:       rootPath,
		name:       filepath.Base(rootPath),
		kind:       fsmodel.KindDirectory,
		depth:      0,
		timestamps: fsmodel.Timestamps{Modified: &rootModified},
	}
	stats.RecordDir(0)
	dirsScanned++

	workersDone := w.runWorkers(threads)
	resultsDone := make(chan struct{})
	go w.collectResults(resultsDone)

	walkErr := w.walkDir(rootPath, rootPath, 0, map[string]bool{})

	close(w.jobs)
	workersDone.Wait()
	close(w.results)
	<-resultsDone

	if walkErr != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}

	w.aggregate()
	root := w.build(rootPath)

	finalSnapshot := Progress{
		FilesScanned: atomic.LoadInt64(&filesScanned),
		DirsScanned:  atomic.LoadInt64(&dirsScanned),
		BytesScanned: atomic.LoadInt64(&bytesScanned),
	}
	b.closeWith(finalSnapshot)

	return &fsmodel.Tree{
		Root:     root,
		RootPath: rootPath,
		Stats:    stats.Snapshot(),
		Warnings: warnings,
		ScanTime: time.Since(start),
		Config: fsmodel.ScanConfigSnapshot{
			Root:             rootPath,
			MaxDepth:         cfg.MaxDepth,
			IncludeHidden:    cfg.IncludeHidden,
			FollowSymlinks:   cfg.FollowSymlinks,
			CrossFilesystems: cfg.CrossFilesystems,
			IgnorePatterns:   cfg.IgnorePatterns,
			Threads:          threads,
			ApparentSize:     cfg.ApparentSize,
		},
		ScannedAt: start,
	}, nil
}
