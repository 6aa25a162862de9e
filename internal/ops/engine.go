// Package ops runs filesystem mutations (copy, move, rename, create,
// delete) asynchronously, reporting progress and surfacing conflicts for
// the caller to resolve, with an undo log recording each completed
// operation.
package ops

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// OpType tags the variant of an OpEvent/OpResult.
type OpType int

const (
	OpCopy OpType = iota
	OpMove
	OpRename
	OpDelete
	OpCreateFile
	OpCreateDirectory
)

func (t OpType) String() string {
	switch t {
	case OpCopy:
		return "copy"
	case OpMove:
		return "move"
	case OpRename:
		return "rename"
	case OpDelete:
		return "delete"
	case OpCreateFile:
		return "create_file"
	case OpCreateDirectory:
		return "create_directory"
	default:
		return "unknown"
	}
}

// EventKind tags the variant of an OpEvent.
type EventKind int

const (
	EventProgress EventKind = iota
	EventConflict
	EventConflictResolved
	EventComplete
)

// OpEvent is one notification on an operation's event stream. Only the
// fields relevant to Kind are populated.
type OpEvent struct {
	Kind EventKind
	Op   OpType

	// EventProgress
	FilesCompleted int
	FilesTotal     int
	BytesProcessed int64
	BytesTotal     int64
	CurrentFile    string
	Errors         []string // cumulative, as of this snapshot

	// EventConflict / EventConflictResolved
	Conflict   *Conflict
	Resolution Resolution

	// EventComplete
	Result    *OpResult
	Cancelled bool
}

// OpResult summarizes a completed operation.
type OpResult struct {
	Type         OpType
	SuccessCount int
	FailureCount int
	Errors       []string
	UndoID       uint64
	Duration     time.Duration
	Summary      string
}

func summarize(t OpType, success, failure int) string {
	verb := "Processed"
	switch t {
	case OpCopy:
		verb = "Copied"
	case OpMove:
		verb = "Moved"
	case OpDelete:
		verb = "Deleted"
	case OpRename:
		verb = "Renamed"
	case OpCreateFile, OpCreateDirectory:
		verb = "Created"
	}
	if failure == 0 {
		return fmt.Sprintf("%s %d items", verb, success)
	}
	return fmt.Sprintf("%s %d items, %d failed", verb, success, failure)
}

// CopyOptions controls how Copy (and Move's copy-fallback) treats
// symlinks, permissions, timestamps, conflicts, and chunking.
type CopyOptions struct {
	FollowSymlinks      bool
	PreservePermissions bool
	PreserveTimestamps  bool

	// DefaultConflict, when set, is applied to every conflict without
	// emitting a Conflict event or waiting on the resolve channel.
	DefaultConflict *Resolution

	// ChunkBytes sizes the copy buffer; <= 0 selects defaultChunkBytes.
	ChunkBytes int64
}

const defaultChunkBytes = 1 << 20

func (o CopyOptions) chunkBytes() int64 {
	if o.ChunkBytes > 0 {
		return o.ChunkBytes
	}
	return defaultChunkBytes
}

// progressThrottle bounds how often a chunked copy publishes a Progress
// event for one file's bytes, per spec's "no more often than every 50ms".
const progressThrottle = 50 * time.Millisecond

// Request describes one Copy/Move/Delete call.
type Request struct {
	Sources     []string
	Destination string
	Options     CopyOptions // OpCopy, OpMove only
	UseTrash    bool        // OpDelete only

	// SafeMode blocks deletion of well-known system and home directories
	// and of anything inside them.
	SafeMode bool // OpDelete only
}

// criticalPaths names directories SafeMode refuses to delete, together
// with everything beneath them, even when requested explicitly.
func criticalPaths() []string {
	paths := []string{"/", "/etc", "/usr", "/var"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
	}
	return paths
}

func isCriticalPath(path string) bool {
	path = filepath.Clean(path)
	for _, root := range criticalPaths() {
		root = filepath.Clean(root)
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// ConflictResolver is asked how to proceed whenever a destination path is
// already occupied. It receives each Conflict as it is discovered and
// returns the caller's Resolution; a Resolution with IsGlobal() true is
// remembered for the rest of the operation and the resolver is not asked
// again. It is consumed by DriveResolver, not by the engine directly.
type ConflictResolver func(Conflict) Resolution

// Handle is what every OperationsEngine method returns: a receiver of the
// operation's event stream, and (for Copy/Move) a control channel the
// caller answers Conflict events on. The operation runs on a background
// goroutine from the moment Handle is returned. Cancelling the context the
// call was started with cancels it at the next file or chunk boundary.
// Closing Resolve cancels it only while a Conflict is waiting for an
// answer; at any other point the close is not noticed. Resolve is nil for
// operations that never raise a conflict.
type Handle struct {
	Events  <-chan OpEvent
	Resolve chan<- Resolution
}

// Drain consumes events until the stream closes and returns the result
// carried by the terminal Complete event. It never answers a Conflict, so
// it is only appropriate when no conflict is expected (Resolve is nil) or
// a DefaultConflict was supplied.
func Drain(events <-chan OpEvent) OpResult {
	var result OpResult
	for ev := range events {
		if ev.Kind == EventComplete && ev.Result != nil {
			result = *ev.Result
		}
	}
	return result
}

// DriveResolver ranges over h.Events, answering every Conflict from
// resolve (aborting if resolve is nil) and returns the result carried by
// the terminal Complete event. It runs in the caller's goroutine; the
// operation itself still executes on its own background goroutine.
func DriveResolver(h Handle, resolve ConflictResolver) OpResult {
	var result OpResult
	for ev := range h.Events {
		switch ev.Kind {
		case EventConflict:
			decision := ResolutionAbort
			if resolve != nil {
				decision = resolve(*ev.Conflict)
			}
			if h.Resolve != nil {
				h.Resolve <- decision
			}
		case EventComplete:
			if ev.Result != nil {
				result = *ev.Result
			}
		}
	}
	return result
}

// OperationsEngine runs filesystem mutations and keeps an undo log of what
// it did. The zero value is not ready to use; construct with
// NewOperationsEngine.
type OperationsEngine struct {
	undo *Log
}

// NewOperationsEngine returns an OperationsEngine whose undo log holds at
// most undoCapacity entries (0 selects the log's own default).
func NewOperationsEngine(undoCapacity int) *OperationsEngine {
	return &OperationsEngine{undo: NewLog(undoCapacity)}
}

// UndoLog returns the engine's undo log.
func (e *OperationsEngine) UndoLog() *Log { return e.undo }

// Copy starts copying every source into Destination (a directory when
// there is more than one source) on a background goroutine and returns
// immediately. Conflicts are reported on Handle.Events and resolved via
// Handle.Resolve, unless req.Options.DefaultConflict is set.
func (e *OperationsEngine) Copy(ctx context.Context, req Request) (Handle, error) {
	return e.startCopyOrMove(ctx, OpCopy, req)
}

// Move starts relocating every source into Destination, falling back to a
// copy-then-delete when the rename crosses a filesystem boundary.
func (e *OperationsEngine) Move(ctx context.Context, req Request) (Handle, error) {
	return e.startCopyOrMove(ctx, OpMove, req)
}

func (e *OperationsEngine) startCopyOrMove(ctx context.Context, opType OpType, req Request) (Handle, error) {
	sources, err := normalizePaths(req.Sources)
	if err != nil {
		return Handle{}, err
	}
	if len(sources) == 0 {
		return Handle{}, errors.New("no sources provided")
	}
	destRoot, destIsDir, err := resolveDestination(req.Destination, sources)
	if err != nil {
		return Handle{}, err
	}

	events := make(chan OpEvent, 64)
	resolveCh := make(chan Resolution)

	go e.runCopyOrMove(ctx, opType, req.Options, sources, destRoot, destIsDir, events, resolveCh)

	return Handle{Events: events, Resolve: resolveCh}, nil
}

// Delete starts removing every source, moving each to the local trash
// directory first when req.UseTrash is set.
func (e *OperationsEngine) Delete(ctx context.Context, req Request) (Handle, error) {
	sources, err := normalizePaths(req.Sources)
	if err != nil {
		return Handle{}, err
	}
	if len(sources) == 0 {
		return Handle{}, errors.New("no sources provided")
	}
	if req.SafeMode {
		for _, source := range sources {
			if isCriticalPath(source) {
				return Handle{}, fmt.Errorf("blocked critical path: %s", source)
			}
		}
	}

	events := make(chan OpEvent, 64)
	go e.runDelete(ctx, req.UseTrash, sources, events)
	return Handle{Events: events}, nil
}

// Rename renames the last path component of path to newName within the
// same directory.
func (e *OperationsEngine) Rename(ctx context.Context, path, newName string) (Handle, error) {
	if newName == "" {
		return Handle{}, errors.New("new name must not be empty")
	}
	if strings.ContainsRune(newName, filepath.Separator) || strings.Contains(newName, "/") {
		return Handle{}, fmt.Errorf("new name must not contain a path separator: %q", newName)
	}

	dir := filepath.Dir(path)
	oldName := filepath.Base(path)
	target := filepath.Join(dir, newName)
	if _, err := os.Stat(target); err == nil {
		return Handle{}, fmt.Errorf("%s: %s", target, ConflictFileExists)
	}

	events := make(chan OpEvent, 1)
	go func() {
		defer close(events)
		result := OpResult{Type: OpRename}
		if err := os.Rename(path, target); err != nil {
			result.FailureCount = 1
			result.Errors = []string{err.Error()}
		} else {
			result.SuccessCount = 1
			result.UndoID = e.undo.RecordRename(target, oldName, newName)
		}
		result.Summary = summarize(OpRename, result.SuccessCount, result.FailureCount)
		events <- OpEvent{Kind: EventComplete, Op: OpRename, Result: &result}
	}()
	return Handle{Events: events}, nil
}

// CreateFile creates an empty file at path, failing if it already exists.
func (e *OperationsEngine) CreateFile(ctx context.Context, path string) (Handle, error) {
	events := make(chan OpEvent, 1)
	go func() {
		defer close(events)
		result := OpResult{Type: OpCreateFile}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			result.FailureCount = 1
			result.Errors = []string{err.Error()}
		} else if f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644); err != nil {
			result.FailureCount = 1
			result.Errors = []string{err.Error()}
		} else {
			_ = f.Close()
			result.SuccessCount = 1
			result.UndoID = e.undo.RecordCreateFile(path)
		}
		result.Summary = summarize(OpCreateFile, result.SuccessCount, result.FailureCount)
		events <- OpEvent{Kind: EventComplete, Op: OpCreateFile, Result: &result}
	}()
	return Handle{Events: events}, nil
}

// CreateDirectory creates path and any missing parents.
func (e *OperationsEngine) CreateDirectory(ctx context.Context, path string) (Handle, error) {
	if _, err := os.Stat(path); err == nil {
		return Handle{}, fmt.Errorf("%s: %s", path, ConflictDirectoryExists)
	}

	events := make(chan OpEvent, 1)
	go func() {
		defer close(events)
		result := OpResult{Type: OpCreateDirectory}
		if err := os.MkdirAll(path, 0o755); err != nil {
			result.FailureCount = 1
			result.Errors = []string{err.Error()}
		} else {
			result.SuccessCount = 1
			result.UndoID = e.undo.RecordCreateDirectory(path)
		}
		result.Summary = summarize(OpCreateDirectory, result.SuccessCount, result.FailureCount)
		events <- OpEvent{Kind: EventComplete, Op: OpCreateDirectory, Result: &result}
	}()
	return Handle{Events: events}, nil
}

// Undo reverses the most recent undoable entry in the engine's log.
func (e *OperationsEngine) Undo(ctx context.Context) (Handle, error) {
	entry, ok := e.undo.Pop()
	if !ok {
		return Handle{}, errors.New("nothing to undo")
	}

	events := make(chan OpEvent, 1)
	go func() {
		defer close(events)
		result := OpResult{Summary: entry.Description}
		if err := applyUndo(entry.Op); err != nil {
			result.FailureCount = 1
			result.Errors = []string{err.Error()}
		} else {
			result.SuccessCount = 1
		}
		events <- OpEvent{Kind: EventComplete, Result: &result}
	}()
	return Handle{Events: events}, nil
}

func applyUndo(op UndoableOp) error {
	switch op.Kind {
	case OpFilesMoved:
		for _, pair := range op.Moves {
			if err := os.Rename(pair.To, pair.From); err != nil {
				return err
			}
		}
	case OpFilesCopied:
		for _, path := range op.Created {
			if err := os.RemoveAll(path); err != nil {
				return err
			}
		}
	case OpFilesDeleted:
		for _, pair := range op.TrashEntries {
			if err := restoreFromTrash(&TrashItem{TrashPath: pair.To, OrigPath: pair.From}); err != nil {
				return err
			}
		}
	case OpFileRenamed:
		dir := filepath.Dir(op.Path)
		current := filepath.Join(dir, op.NewName)
		original := filepath.Join(dir, op.OldName)
		if err := os.Rename(current, original); err != nil {
			return err
		}
	case OpFileCreated, OpDirectoryCreated:
		if err := os.RemoveAll(op.Path); err != nil {
			return err
		}
	}
	return nil
}

func normalizePaths(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		clean := filepath.Clean(abs)
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}
	return out, nil
}

func resolveDestination(destination string, sources []string) (string, bool, error) {
	if destination == "" {
		return "", false, errors.New("destination required")
	}
	abs, err := filepath.Abs(destination)
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return abs, true, nil
	}
	if len(sources) > 1 {
		return "", false, errors.New("destination must be a directory for multiple sources")
	}
	return abs, false, nil
}
