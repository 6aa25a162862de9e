package ops

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolutionIsGlobalAndToSingle(t *testing.T) {
	cases := []struct {
		r          Resolution
		wantGlobal bool
		wantSingle Resolution
	}{
		{ResolutionSkip, false, ResolutionSkip},
		{ResolutionOverwrite, false, ResolutionOverwrite},
		{ResolutionAutoRename, false, ResolutionAutoRename},
		{ResolutionSkipAll, true, ResolutionSkip},
		{ResolutionOverwriteAll, true, ResolutionOverwrite},
		{ResolutionAbort, true, ResolutionAbort},
	}
	for _, tc := range cases {
		require.Equal(t, tc.wantGlobal, tc.r.IsGlobal())
		require.Equal(t, tc.wantSingle, tc.r.ToSingle())
	}
}

func TestAutoRenamePath(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "file.txt")
	writeTestFile(t, base)

	renamed := autoRenamePath(base)
	require.NotEqual(t, base, renamed)
	require.Equal(t, filepath.Join(dir, "file (1).txt"), renamed)
}

func TestConflictKindString(t *testing.T) {
	require.NotEmpty(t, ConflictFileExists.String())
	require.Equal(t, "unknown conflict", ConflictKind(99).String())
}
