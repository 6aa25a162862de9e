package scanner

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"sweepcore/internal/fsmodel"
	"sweepcore/internal/pathutil"
)

// nodeBuilder is the mutable staging record for one tree entry while a scan
// is in flight. It is converted to an immutable fsmodel.Node once the walk
// and aggregation passes both complete.
type nodeBuilder struct {
	path       string
	name       string
	kind       fsmodel.Kind
	parentPath string
	children   []string
	depth      uint32

	size   uint64
	blocks uint64

	accumSize   uint64
	accumBlocks uint64

	timestamps fsmodel.Timestamps
	inode      *fsmodel.InodeKey
	executable bool

	symlinkTarget string
	symlinkBroken bool

	crossedFilesystem bool
}

type fileJob struct {
	path       string
	name       string
	parentPath string
	depth      uint32
}

type fileResult struct {
	job  fileJob
	info os.FileInfo
	err  error
}

// walker holds the state shared across one Scan call's directory recursion,
// worker pool, and aggregation pass.
type walker struct {
	ctx context.Context
	cfg Config

	rootPath   string
	rootDevice uint64

	stats   *fsmodel.TreeStats
	tracker *inodeTracker

	jobs    chan fileJob
	results chan fileResult

	nodesMu sync.Mutex
	nodes   map[string]*nodeBuilder

	addWarning func(fsmodel.ScanWarning)
	emit       func(path string)

	filesScanned *int64
	dirsScanned  *int64
	bytesScanned *int64
}

func (w *walker) addNode(n *nodeBuilder) {
	w.nodesMu.Lock()
	w.nodes[n.path] = n
	if n.parentPath != "" {
		if parent, ok := w.nodes[n.parentPath]; ok {
			parent.children = append(parent.children, n.path)
		}
	}
	w.nodesMu.Unlock()
}

// walkDir recursively lists one directory and its descendants. ancestors
// holds the canonicalized paths of every followed-symlink directory on the
// current descent chain, used to refuse to follow a symlink back into its
// own ancestry.
func (w *walker) walkDir(path, parentPath string, depth uint32, ancestors map[string]bool) error {
	if err := w.ctx.Err(); err != nil {
		return err
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		w.addWarning(fsmodel.ScanWarning{Kind: classifyReadErr(err), Path: path, Message: err.Error()})
		return nil
	}

	for _, entry := range entries {
		if err := w.ctx.Err(); err != nil {
			return err
		}

		name := entry.Name()
		fullPath := filepath.Join(path, name)
		childDepth := depth + 1

		if !w.cfg.IncludeHidden && pathutil.IsHidden(name) {
			continue
		}
		if pathutil.MatchAny(w.cfg.IgnorePatterns, name, fullPath) {
			continue
		}
		if w.cfg.MaxDepth != nil && childDepth > *w.cfg.MaxDepth {
			continue
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			w.addWarning(fsmodel.ScanWarning{Kind: fsmodel.WarningMetadataError, Path: fullPath, Message: infoErr.Error()})
			continue
		}

		switch {
		case entry.Type()&os.ModeSymlink != 0:
			w.visitSymlink(fullPath, name, path, childDepth, ancestors)
		case entry.IsDir():
			w.visitDir(fullPath, name, path, info, childDepth, ancestors)
		default:
			w.emit(fullPath)
			w.jobs <- fileJob{path: fullPath, name: name, parentPath: path, depth: childDepth}
		}
	}
	return nil
}

func (w *walker) visitDir(fullPath, name, parentPath string, info os.FileInfo, depth uint32, ancestors map[string]bool) {
	stat := getPlatformStat(info)
	crossed := stat.ok && stat.device != w.rootDevice && !w.cfg.CrossFilesystems

	modified := info.ModTime()
	node := &nodeBuilder{
		path:              fullPath,
		name:              name,
		kind:              fsmodel.KindDirectory,
		parentPath:        parentPath,
		depth:             depth,
		timestamps:        fsmodel.Timestamps{Modified: &modified},
		crossedFilesystem: crossed,
	}
	w.addNode(node)
	w.stats.RecordDir(depth)
	atomic.AddInt64(w.dirsScanned, 1)
	w.emit(fullPath)

	if crossed {
		return
	}
	if err := w.walkDir(fullPath, fullPath, depth, ancestors); err != nil {
		w.addWarning(fsmodel.ScanWarning{Kind: fsmodel.WarningReadError, Path: fullPath, Message: err.Error()})
	}
}

func (w *walker) visitSymlink(fullPath, name, parentPath string, depth uint32, ancestors map[string]bool) {
	target, readErr := os.Readlink(fullPath)
	broken := readErr != nil

	var targetIsDir bool
	if readErr == nil {
		if targetInfo, statErr := os.Stat(fullPath); statErr != nil {
			broken = true
		} else {
			targetIsDir = targetInfo.IsDir()
		}
	}

	if w.cfg.FollowSymlinks && !broken && targetIsDir {
		realPath, evalErr := filepath.EvalSymlinks(fullPath)
		if evalErr == nil && !ancestors[realPath] {
			next := make(map[string]bool, len(ancestors)+1)
			for k := range ancestors {
				next[k] = true
			}
			next[realPath] = true

			info, statErr := os.Stat(fullPath)
			if statErr == nil {
				w.visitDir(fullPath, name, parentPath, info, depth, next)
				return
			}
		}
		if evalErr == nil && ancestors[realPath] {
			w.addWarning(fsmodel.ScanWarning{Kind: fsmodel.WarningBrokenSymlink, Path: fullPath, Message: "symlink cycle detected"})
		}
	}

	if broken {
		w.addWarning(fsmodel.ScanWarning{Kind: fsmodel.WarningBrokenSymlink, Path: fullPath, Message: "broken symlink"})
	}

	w.addNode(&nodeBuilder{
		path:          fullPath,
		name:          name,
		kind:          fsmodel.KindSymlink,
		parentPath:    parentPath,
		depth:         depth,
		symlinkTarget: target,
		symlinkBroken: broken,
	})
	w.stats.RecordSymlink()
	w.emit(fullPath)
}

func classifyReadErr(err error) fsmodel.WarningKind {
	if os.IsPermission(err) {
		return fsmodel.WarningPermissionDenied
	}
	return fsmodel.WarningReadError
}

// runWorkers starts the bounded pool of file-metadata workers. Each worker
// performs the Lstat-equivalent metadata read for one file and forwards the
// result; the caller drains w.results on a separate goroutine.
func (w *walker) runWorkers(n int) *sync.WaitGroup {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range w.jobs {
				info, err := os.Lstat(job.path)
				w.results <- fileResult{job: job, info: info, err: err}
			}
		}()
	}
	return &wg
}

func (w *walker) collectResults(done chan<- struct{}) {
	defer close(done)
	for res := range w.results {
		if res.err != nil {
			w.addWarning(fsmodel.ScanWarning{Kind: classifyReadErr(res.err), Path: res.job.path, Message: res.err.Error()})
			continue
		}

		stat := getPlatformStat(res.info)
		size := uint64(res.info.Size())
		blocks := stat.blocks
		if w.cfg.ApparentSize {
			blocks = size
		}

		var inodeKey *fsmodel.InodeKey
		countBytes := true
		if stat.ok && stat.nlink > 1 {
			key := fsmodel.InodeKey{Device: stat.device, Inode: stat.inode}
			inodeKey = &key
			countBytes = w.tracker.claim(key)
		}

		chargedSize, chargedBlocks := size, blocks
		if !countBytes {
			chargedSize, chargedBlocks = 0, 0
		}

		modified := res.info.ModTime()
		node := &nodeBuilder{
			path:       res.job.path,
			name:       res.job.name,
			kind:       fsmodel.KindFile,
			parentPath: res.job.parentPath,
			depth:      res.job.depth,
			size:       chargedSize,
			blocks:     chargedBlocks,
			timestamps: fsmodel.Timestamps{Modified: &modified},
			inode:      inodeKey,
			executable: isExecutable(res.info),
		}
		w.addNode(node)
		w.stats.RecordFile(res.job.path, chargedSize, modified, res.job.depth)

		atomic.AddInt64(w.filesScanned, 1)
		atomic.AddInt64(w.bytesScanned, int64(chargedSize))
	}
}

// aggregate folds child sizes and blocks upward into each directory,
// processing deepest entries first so every child is finalized before its
// parent reads it. Sibling order within each directory is then fixed to
// size descending, name ascending.
func (w *walker) aggregate() {
	w.nodesMu.Lock()
	defer w.nodesMu.Unlock()

	paths := make([]string, 0, len(w.nodes))
	for p := range w.nodes {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		return w.nodes[paths[i]].depth > w.nodes[paths[j]].depth
	})

	for _, p := range paths {
		n := w.nodes[p]
		switch n.kind {
		case fsmodel.KindFile:
			n.accumSize = n.size
			n.accumBlocks = n.blocks
		case fsmodel.KindDirectory:
			var size, blocks uint64
			for _, childPath := range n.children {
				child := w.nodes[childPath]
				if child == nil {
					continue
				}
				size += child.accumSize
				blocks += child.accumBlocks
			}
			n.accumSize = size
			n.accumBlocks = blocks
			sort.Slice(n.children, func(i, j int) bool {
				a, b := w.nodes[n.children[i]], w.nodes[n.children[j]]
				if a == nil || b == nil {
					return false
				}
				if a.accumSize != b.accumSize {
					return a.accumSize > b.accumSize
				}
				return a.name < b.name
			})
		}
	}
}

// build converts the finalized flat map into the immutable Node tree,
// assigning monotonic NodeIDs in the same sibling order the nodes will be
// presented in.
func (w *walker) build(rootPath string) *fsmodel.Node {
	var nextID uint64
	var visit func(path string) *fsmodel.Node
	visit = func(path string) *fsmodel.Node {
		n := w.nodes[path]
		id := fsmodel.NodeID(nextID)
		nextID++

		node := &fsmodel.Node{
			ID:            id,
			Name:          n.name,
			Kind:          n.kind,
			Executable:    n.executable,
			SymlinkTarget: n.symlinkTarget,
			SymlinkBroken: n.symlinkBroken,
			Size:          n.accumSize,
			Blocks:        n.accumBlocks,
			Timestamps:    n.timestamps,
			Inode:         n.inode,
		}
		for _, childPath := range n.children {
			node.Children = append(node.Children, visit(childPath))
		}
		return node
	}
	return visit(rootPath)
}

