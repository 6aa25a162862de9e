package pathutil

import "testing"

func TestMatchAny(t *testing.T) {
	cases := []struct {
		name     string
		patterns []string
		base     string
		full     string
		want     bool
	}{
		{"no patterns", nil, "file.txt", "/a/file.txt", false},
		{"exact basename", []string{"file.txt"}, "file.txt", "/a/file.txt", true},
		{"star extension", []string{"*.log"}, "out.log", "/var/log/out.log", true},
		{"star extension miss", []string{"*.log"}, "out.txt", "/var/log/out.txt", false},
		{"doublestar path", []string{"**/node_modules"}, "node_modules", "/repo/pkg/node_modules", true},
		{"path pattern without slash never matches full only", []string{"build"}, "other", "/repo/build", false},
		{"bracket class", []string{"[a-c]*.go"}, "b.go", "/src/b.go", true},
		{"first of several matches", []string{"*.md", "*.go"}, "main.go", "/src/main.go", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MatchAny(tc.patterns, tc.base, tc.full)
			if got != tc.want {
				t.Errorf("MatchAny(%v, %q, %q) = %v, want %v", tc.patterns, tc.base, tc.full, got, tc.want)
			}
		})
	}
}
