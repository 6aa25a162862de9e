package ops

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"sweepcore/internal/fsmodel"
)

var errAbort = errors.New("operation aborted")
var errCancelled = errors.New("operation cancelled")

// runCopyOrMove is the background task behind Copy and Move. It pre-scans
// sources for totals, then walks them in order, publishing Progress events
// and pausing on Conflict events until resolveCh answers (or is closed, or
// ctx is cancelled). Exactly one Complete event is sent before events is
// closed.
func (e *OperationsEngine) runCopyOrMove(ctx context.Context, opType OpType, opts CopyOptions, sources []string, destRoot string, destIsDir bool, events chan<- OpEvent, resolveCh chan Resolution) {
	defer close(events)
	start := time.Now()

	filesTotal, bytesTotal := preScanTotals(sources, opts)

	result := OpResult{Type: opType}
	var moves []PathPair
	var created []string
	var cumulativeErrors []string
	global := Resolution(-1)
	var filesDone int
	var bytesDone int64
	cancelled := false

	send := func(ev OpEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	publish := func(current string) {
		send(OpEvent{
			Kind:           EventProgress,
			Op:             opType,
			CurrentFile:    current,
			FilesCompleted: filesDone,
			FilesTotal:     filesTotal,
			BytesProcessed: bytesDone,
			BytesTotal:     bytesTotal,
			Errors:         append([]string(nil), cumulativeErrors...),
		})
	}

	var lastEmit time.Time
	onChunk := func(n int64) {
		bytesDone += n
		if time.Since(lastEmit) < progressThrottle {
			return
		}
		lastEmit = time.Now()
		publish("")
	}

sourceLoop:
	for _, source := range sources {
		if ctx.Err() != nil {
			cancelled = true
			break
		}

		target := destRoot
		if destIsDir {
			target = filepath.Join(destRoot, filepath.Base(source))
		}

		target, proceed, err := resolveConflictAsync(ctx, opType, source, target, opts, &global, events, resolveCh)
		if err != nil {
			result.FailureCount++
			cumulativeErrors = append(cumulativeErrors, err.Error())
			switch {
			case errors.Is(err, errAbort):
				break sourceLoop
			case errors.Is(err, errCancelled):
				cancelled = true
				break sourceLoop
			}
			continue
		}
		if !proceed {
			continue
		}

		var opErr error
		if opType == OpMove {
			opErr = movePath(ctx, source, target, opts, onChunk)
			if opErr == nil {
				moves = append(moves, PathPair{From: source, To: target})
			}
		} else {
			opErr = copyPath(ctx, source, target, opts, onChunk)
			if opErr == nil {
				created = append(created, target)
			}
		}
		if opErr != nil {
			result.FailureCount++
			cumulativeErrors = append(cumulativeErrors, opErr.Error())
			continue
		}
		result.SuccessCount++
		filesDone++
		publish(target)
	}

	if opType == OpMove && len(moves) > 0 {
		result.UndoID = e.undo.RecordMove(moves)
	} else if opType == OpCopy && len(created) > 0 {
		result.UndoID = e.undo.RecordCopy(created)
	}

	result.Duration = time.Since(start)
	result.Errors = cumulativeErrors
	result.Summary = summarize(opType, result.SuccessCount, result.FailureCount)

	send(OpEvent{Kind: EventComplete, Op: opType, Result: &result, Cancelled: cancelled})
}

// resolveConflictAsync checks whether target is occupied and, if so,
// resolves it: via opts.DefaultConflict when set, via a prior global
// decision, or by publishing a Conflict event and waiting on resolveCh.
// Closing resolveCh while a decision is pending cancels the operation, per
// the "dropping the control channel" cancellation contract.
func resolveConflictAsync(ctx context.Context, opType OpType, source, target string, opts CopyOptions, global *Resolution, events chan<- OpEvent, resolveCh chan Resolution) (string, bool, error) {
	kind, conflicted := detectConflict(source, target)
	if !conflicted {
		return target, true, nil
	}

	decision := *global
	if decision < 0 {
		switch {
		case opts.DefaultConflict != nil:
			decision = *opts.DefaultConflict
		default:
			c := Conflict{Source: source, Destination: target, Kind: kind}
			select {
			case events <- OpEvent{Kind: EventConflict, Op: opType, Conflict: &c}:
			case <-ctx.Done():
				return target, false, errCancelled
			}
			select {
			case res, ok := <-resolveCh:
				if !ok {
					return target, false, errCancelled
				}
				decision = res
			case <-ctx.Done():
				return target, false, errCancelled
			}
			select {
			case events <- OpEvent{Kind: EventConflictResolved, Op: opType, Conflict: &c, Resolution: decision}:
			case <-ctx.Done():
			}
		}
		if decision.IsGlobal() {
			*global = decision
		}
	}

	switch decision.ToSingle() {
	case ResolutionSkip:
		return target, false, nil
	case ResolutionOverwrite:
		return target, true, nil
	case ResolutionAutoRename:
		return autoRenamePath(target), true, nil
	case ResolutionAbort:
		return target, false, errAbort
	default:
		return target, false, nil
	}
}

func detectConflict(source, target string) (ConflictKind, bool) {
	srcAbs, _ := filepath.Abs(source)
	dstAbs, _ := filepath.Abs(target)
	if srcAbs == dstAbs {
		return ConflictSameFile, true
	}
	if strings.HasPrefix(dstAbs+string(filepath.Separator), srcAbs+string(filepath.Separator)) {
		return ConflictSourceIsAncestor, true
	}
	info, err := os.Lstat(target)
	if err != nil {
		return 0, false
	}
	if info.IsDir() {
		return ConflictDirectoryExists, true
	}
	return ConflictFileExists, true
}

// movePath attempts a rename and falls back to copy-then-remove across
// devices, the same fallback the scanner's teacher package used for its
// move action.
func movePath(ctx context.Context, source, target string, opts CopyOptions, onChunk func(int64)) error {
	if err := os.Rename(source, target); err == nil {
		return nil
	} else if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	if err := copyPath(ctx, source, target, opts, onChunk); err != nil {
		return err
	}
	return os.RemoveAll(source)
}

// copyPath copies one entry, following or replicating a symlink per
// opts.FollowSymlinks, and recursing into directories.
func copyPath(ctx context.Context, source, target string, opts CopyOptions, onChunk func(int64)) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	info, err := os.Lstat(source)
	if err != nil {
		return err
	}

	if info.Mode()&os.ModeSymlink != 0 {
		if !opts.FollowSymlinks {
			return copySymlink(source, target)
		}
		resolved, err := os.Stat(source)
		if err != nil {
			return err
		}
		info = resolved
	}

	if info.IsDir() {
		return copyDirectory(ctx, source, target, opts, onChunk)
	}
	return copyFileChunked(ctx, source, target, info, opts, onChunk)
}

func copySymlink(source, target string) error {
	linkTarget, err := os.Readlink(source)
	if err != nil {
		return err
	}
	_ = os.Remove(target)
	return os.Symlink(linkTarget, target)
}

func copyDirectory(ctx context.Context, source, target string, opts CopyOptions, onChunk func(int64)) error {
	mode := os.FileMode(0o755)
	if opts.PreservePermissions {
		if info, err := os.Stat(source); err == nil {
			mode = info.Mode().Perm()
		}
	}
	if err := os.MkdirAll(target, mode); err != nil {
		return err
	}

	entries, err := os.ReadDir(source)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s := filepath.Join(source, entry.Name())
		d := filepath.Join(target, entry.Name())
		if err := copyPath(ctx, s, d, opts, onChunk); err != nil {
			return err
		}
	}
	return nil
}

// copyFileChunked copies source to target in opts.ChunkBytes pieces,
// invoking onChunk after each write so the caller can throttle Progress
// events. Cancellation is observed between chunks.
func copyFileChunked(ctx context.Context, source, target string, info os.FileInfo, opts CopyOptions, onChunk func(int64)) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	input, err := os.Open(source)
	if err != nil {
		return err
	}
	defer input.Close()

	mode := os.FileMode(0o644)
	if opts.PreservePermissions {
		mode = info.Mode().Perm()
	}
	output, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer output.Close()

	buf := make([]byte, opts.chunkBytes())
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n, rerr := input.Read(buf)
		if n > 0 {
			if _, werr := output.Write(buf[:n]); werr != nil {
				return werr
			}
			if onChunk != nil {
				onChunk(int64(n))
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return rerr
		}
	}
	if err := output.Close(); err != nil {
		return err
	}

	if opts.PreserveTimestamps {
		_ = os.Chtimes(target, time.Now(), info.ModTime())
	}
	return nil
}

// preScanTotals walks sources to compute files_total and bytes_total ahead
// of a copy or move, using the same hardlink-dedup accounting as a scan:
// a file with more than one link is counted once, on first encounter.
func preScanTotals(sources []string, opts CopyOptions) (files int, bytes int64) {
	seen := make(map[fsmodel.InodeKey]bool)
	var walk func(path string)
	walk = func(path string) {
		info, err := os.Lstat(path)
		if err != nil {
			return
		}
		if info.Mode()&os.ModeSymlink != 0 {
			if !opts.FollowSymlinks {
				files++
				return
			}
			resolved, err := os.Stat(path)
			if err != nil {
				return
			}
			info = resolved
		}
		if info.IsDir() {
			entries, err := os.ReadDir(path)
			if err != nil {
				return
			}
			for _, entry := range entries {
				walk(filepath.Join(path, entry.Name()))
			}
			return
		}
		if key, multiLinked := inodeKey(info); multiLinked {
			if seen[key] {
				return
			}
			seen[key] = true
		}
		files++
		bytes += info.Size()
	}
	for _, s := range sources {
		walk(s)
	}
	return files, bytes
}
