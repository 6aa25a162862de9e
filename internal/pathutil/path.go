package pathutil

import (
	"path/filepath"
	"strings"
)

// CleanAbs resolves path to a cleaned absolute form. It does not resolve
// symlinks; callers that need a canonical path call filepath.EvalSymlinks
// separately (the scanner does this once, on the root).
func CleanAbs(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

// IsWithin reports whether path is root itself or a descendant of root.
func IsWithin(root, path string) bool {
	if root == path {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}

// Depth counts path separators in a cleaned path, used to measure scan
// depth relative to a root.
func Depth(path string) int {
	return strings.Count(filepath.Clean(path), string(filepath.Separator))
}

// DepthFrom measures path's depth relative to root (root is depth 0).
func DepthFrom(root, path string) int {
	return Depth(path) - Depth(root)
}

// IsHidden reports whether a basename is conventionally hidden (dotfile).
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
