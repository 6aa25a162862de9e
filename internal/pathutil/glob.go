// Package pathutil holds the glob matching, byte formatting, and path
// helpers shared by the scanner, duplicate finder, and operations engine.
package pathutil

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// MatchAny reports whether name (a bare basename) or fullPath matches any of
// the given shell-style glob patterns. fullPath is only tried for patterns
// that contain a "/"; other patterns are matched against name alone.
// Supported metacharacters follow doublestar: *, ?, [abc], [a-z], and ** for
// whole-segment matches.
func MatchAny(patterns []string, name, fullPath string) bool {
	for _, pattern := range patterns {
		if matchOne(pattern, name, fullPath) {
			return true
		}
	}
	return false
}

func matchOne(pattern, name, fullPath string) bool {
	if ok, err := doublestar.Match(pattern, name); err == nil && ok {
		return true
	}
	if !strings.Contains(pattern, "/") {
		return false
	}
	cleanPath := filepath.ToSlash(fullPath)
	ok, err := doublestar.Match(pattern, cleanPath)
	return err == nil && ok
}
