package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

func TestScanBasicTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), 10)
	writeFile(t, filepath.Join(root, "sub", "b.txt"), 20)
	writeFile(t, filepath.Join(root, ".hidden"), 5)

	s := New()
	tree, err := s.Scan(context.Background(), Config{Root: root, IncludeHidden: true})
	require.NoError(t, err)

	require.EqualValues(t, 3, tree.Stats.TotalFiles)
	require.EqualValues(t, 35, tree.Stats.TotalSize)
	require.EqualValues(t, 2, tree.Stats.TotalDirs, "root + sub")

	require.Equal(t, tree.RootPath, tree.Config.Root, "Tree.Config snapshots the resolved scan root")
	require.True(t, tree.Config.IncludeHidden, "Tree.Config should reflect the Config passed to Scan")
}

func TestScanExcludeHidden(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "visible.txt"), 10)
	writeFile(t, filepath.Join(root, ".hidden"), 5)

	s := New()
	tree, err := s.Scan(context.Background(), Config{Root: root, IncludeHidden: false})
	require.NoError(t, err)
	require.EqualValues(t, 1, tree.Stats.TotalFiles, "hidden file excluded")
}

func TestScanIgnorePatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.go"), 10)
	writeFile(t, filepath.Join(root, "skip.log"), 10)

	s := New()
	tree, err := s.Scan(context.Background(), Config{Root: root, IncludeHidden: true, IgnorePatterns: []string{"*.log"}})
	require.NoError(t, err)
	require.EqualValues(t, 1, tree.Stats.TotalFiles, "*.log ignored")
}

func TestScanRootNotDirectory(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file.txt")
	writeFile(t, file, 1)

	s := New()
	_, err := s.Scan(context.Background(), Config{Root: file})
	require.Error(t, err)
}

func TestScanMissingRootRejected(t *testing.T) {
	s := New()
	_, err := s.Scan(context.Background(), Config{Root: ""})
	require.Error(t, err)
}

func TestScanMaxDepth(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "top.txt"), 1)
	writeFile(t, filepath.Join(root, "a", "nested.txt"), 1)
	writeFile(t, filepath.Join(root, "a", "b", "deep.txt"), 1)

	depth := uint32(2)
	s := New()
	tree, err := s.Scan(context.Background(), Config{Root: root, MaxDepth: &depth})
	require.NoError(t, err)
	require.EqualValues(t, 2, tree.Stats.TotalFiles, "deep.txt beyond max depth excluded")
}

func TestSubscribeBeforeAnyScanReturnsClosedChannel(t *testing.T) {
	s := New()
	ch := s.Subscribe()
	_, ok := <-ch
	require.False(t, ok, "Subscribe() before any scan should yield an already-closed channel")
}
