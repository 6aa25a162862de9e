package ops

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
}

func TestEngineCopy(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	src := filepath.Join(srcDir, "a.txt")
	writeTestFile(t, src)

	e := NewOperationsEngine(10)
	h, err := e.Copy(context.Background(), Request{Sources: []string{src}, Destination: dstDir})
	require.NoError(t, err)
	result := Drain(h.Events)
	require.Equal(t, 1, result.SuccessCount)
	require.Equal(t, 0, result.FailureCount)

	require.FileExists(t, src, "source should still exist after copy")
	require.FileExists(t, filepath.Join(dstDir, "a.txt"))
}

func TestEngineMove(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	src := filepath.Join(srcDir, "a.txt")
	writeTestFile(t, src)

	e := NewOperationsEngine(10)
	h, err := e.Move(context.Background(), Request{Sources: []string{src}, Destination: dstDir})
	require.NoError(t, err)
	result := Drain(h.Events)
	require.Equal(t, 1, result.SuccessCount)

	require.NoFileExists(t, src, "source should be gone after move")
	require.FileExists(t, filepath.Join(dstDir, "a.txt"))
}

func TestEngineCopyConflictResolvedByOverwrite(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	src := filepath.Join(srcDir, "a.txt")
	dst := filepath.Join(dstDir, "a.txt")
	writeTestFile(t, src)
	writeTestFile(t, dst)

	e := NewOperationsEngine(10)
	h, err := e.Copy(context.Background(), Request{Sources: []string{src}, Destination: dstDir})
	require.NoError(t, err)
	result := DriveResolver(h, func(c Conflict) Resolution { return ResolutionOverwrite })
	require.Equal(t, 1, result.SuccessCount)
}

func TestEngineCopyConflictSkipped(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	src := filepath.Join(srcDir, "a.txt")
	dst := filepath.Join(dstDir, "a.txt")
	writeTestFile(t, src)
	writeTestFile(t, dst)

	e := NewOperationsEngine(10)
	h, err := e.Copy(context.Background(), Request{Sources: []string{src}, Destination: dstDir})
	require.NoError(t, err)
	result := DriveResolver(h, func(c Conflict) Resolution { return ResolutionSkip })
	require.Equal(t, 0, result.SuccessCount, "skipped conflict should not count as success")
}

func TestEngineCopyNoResolverReturnsError(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	src := filepath.Join(srcDir, "a.txt")
	dst := filepath.Join(dstDir, "a.txt")
	writeTestFile(t, src)
	writeTestFile(t, dst)

	e := NewOperationsEngine(10)
	h, err := e.Copy(context.Background(), Request{Sources: []string{src}, Destination: dstDir})
	require.NoError(t, err, "top-level error only on request-shape failures")
	result := DriveResolver(h, nil)
	require.Equal(t, 1, result.FailureCount, "unresolved conflict with no resolver aborts")
}

func TestEngineDeleteUsesTrash(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "a.txt")
	writeTestFile(t, src)

	e := NewOperationsEngine(10)
	h, err := e.Delete(context.Background(), Request{Sources: []string{src}, UseTrash: true})
	require.NoError(t, err)
	result := Drain(h.Events)
	require.Equal(t, 1, result.SuccessCount)
	require.NoFileExists(t, src)
}

func TestEngineDeleteSafeModeBlocksCriticalPath(t *testing.T) {
	e := NewOperationsEngine(10)
	_, err := e.Delete(context.Background(), Request{Sources: []string{"/etc"}, SafeMode: true})
	require.Error(t, err, "SafeMode should block deletion of /etc")
}

func TestEngineDeleteUndo(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "a.txt")
	writeTestFile(t, src)

	e := NewOperationsEngine(10)
	h, err := e.Delete(context.Background(), Request{Sources: []string{src}, UseTrash: true})
	require.NoError(t, err)
	Drain(h.Events)

	uh, err := e.Undo(context.Background())
	require.NoError(t, err)
	result := Drain(uh.Events)
	require.Equal(t, 1, result.SuccessCount)
	require.FileExists(t, src, "file should be restored after undo")
}

func TestEngineRename(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "old.txt")
	writeTestFile(t, src)

	e := NewOperationsEngine(10)
	h, err := e.Rename(context.Background(), src, "new.txt")
	require.NoError(t, err)
	result := Drain(h.Events)
	require.Equal(t, 1, result.SuccessCount)
	require.FileExists(t, filepath.Join(dir, "new.txt"))
}

func TestEngineRenameRejectsEmptyName(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "old.txt")
	writeTestFile(t, src)

	e := NewOperationsEngine(10)
	_, err := e.Rename(context.Background(), src, "")
	require.Error(t, err)
}

func TestEngineRenameRejectsPathSeparator(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "old.txt")
	writeTestFile(t, src)

	e := NewOperationsEngine(10)
	_, err := e.Rename(context.Background(), src, "sub/new.txt")
	require.Error(t, err)
}

func TestEngineCreateFileAndUndo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "new.txt")

	e := NewOperationsEngine(10)
	h, err := e.CreateFile(context.Background(), path)
	require.NoError(t, err)
	result := Drain(h.Events)
	require.Equal(t, 1, result.SuccessCount)

	uh, err := e.Undo(context.Background())
	require.NoError(t, err)
	Drain(uh.Events)
	require.NoFileExists(t, path, "file should be removed after undoing create")
}

func TestEngineCreateDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "nested")

	e := NewOperationsEngine(10)
	h, err := e.CreateDirectory(context.Background(), path)
	require.NoError(t, err)
	result := Drain(h.Events)
	require.Equal(t, 1, result.SuccessCount)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestEngineUndoWithNothingToUndo(t *testing.T) {
	e := NewOperationsEngine(10)
	_, err := e.Undo(context.Background())
	require.Error(t, err)
}
