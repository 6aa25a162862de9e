package ops

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogRecordAndPop(t *testing.T) {
	log := NewLog(10)
	log.RecordMove([]PathPair{{From: "/a", To: "/b"}})
	log.RecordCreateFile("/c")

	require.Equal(t, 2, log.Len())

	entry, ok := log.Pop()
	require.True(t, ok)
	require.Equal(t, OpFileCreated, entry.Op.Kind, "Pop() is LIFO")
	require.Equal(t, 1, log.Len())
}

func TestLogEvictsOldestWhenFull(t *testing.T) {
	log := NewLog(2)
	log.RecordCreateFile("/1")
	log.RecordCreateFile("/2")
	log.RecordCreateFile("/3")

	require.Equal(t, 2, log.Len(), "bounded capacity")
	entry, ok := log.Peek()
	require.True(t, ok)
	require.Equal(t, "/3", entry.Op.Path)
}

func TestPermanentDeleteCannotBeUndone(t *testing.T) {
	log := NewLog(10)
	log.RecordDelete(nil, 3)

	_, ok := log.Pop()
	require.False(t, ok, "a permanent delete has no undoable entry")
	require.Equal(t, 0, log.Len())
}

func TestTrashDeleteCanBeUndone(t *testing.T) {
	log := NewLog(10)
	log.RecordDelete([]PathPair{{From: "/a", To: "/trash/a"}}, 0)

	entry, ok := log.Pop()
	require.True(t, ok)
	require.True(t, entry.Op.CanUndo())
}

func TestUndoableOpDescription(t *testing.T) {
	op := UndoableOp{Kind: OpFilesDeleted}
	require.Equal(t, "cannot undo permanent deletion", op.Description())
}
