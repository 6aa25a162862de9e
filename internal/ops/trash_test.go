package ops

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMoveToTrashAndRestore(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "doc.txt")
	writeTestFile(t, src)

	item, err := moveToTrash(src)
	require.NoError(t, err)
	require.NoFileExists(t, src)
	require.FileExists(t, item.TrashPath)
	require.FileExists(t, metaPath(item.TrashPath))

	require.NoError(t, restoreFromTrash(item))
	require.FileExists(t, src, "restored file missing at original path")
	require.NoFileExists(t, item.TrashPath, "trash copy should be gone after restore")
}

func TestMoveToTrashDedupesNameCollision(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	srcDir := t.TempDir()
	first := filepath.Join(srcDir, "dup.txt")
	writeTestFile(t, first)
	firstItem, err := moveToTrash(first)
	require.NoError(t, err)

	second := filepath.Join(srcDir, "dup.txt")
	writeTestFile(t, second)
	secondItem, err := moveToTrash(second)
	require.NoError(t, err)

	require.NotEqual(t, firstItem.TrashPath, secondItem.TrashPath)
}

func TestTrashDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	require.Equal(t, filepath.Join(dir, "sweepcore", "trash"), trashDir())
}
