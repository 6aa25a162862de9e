package ops

import (
	"context"
	"os"
	"time"
)

// runDelete is the background task behind Delete. It removes each target
// in order — moving it to the local trash first when useTrash is set,
// otherwise unlinking files and recursively removing directories directly
// — publishing a Progress event per item and recording an undo entry for
// whatever succeeded. Exactly one Complete event is sent before events is
// closed.
func (e *OperationsEngine) runDelete(ctx context.Context, useTrash bool, targets []string, events chan<- OpEvent) {
	defer close(events)
	start := time.Now()

	result := OpResult{Type: OpDelete}
	var trashEntries []PathPair
	var permanentCount int
	var cumulativeErrors []string
	var filesDone int
	cancelled := false

	send := func(ev OpEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for _, target := range targets {
		if ctx.Err() != nil {
			cancelled = true
			break
		}

		var err error
		if useTrash {
			var item *TrashItem
			item, err = moveToTrash(target)
			if err == nil {
				trashEntries = append(trashEntries, PathPair{From: item.OrigPath, To: item.TrashPath})
			}
		} else {
			err = os.RemoveAll(target)
			if err == nil {
				permanentCount++
			}
		}

		if err != nil {
			result.FailureCount++
			cumulativeErrors = append(cumulativeErrors, err.Error())
			continue
		}

		result.SuccessCount++
		filesDone++
		send(OpEvent{
			Kind:           EventProgress,
			Op:             OpDelete,
			CurrentFile:    target,
			FilesCompleted: filesDone,
			FilesTotal:     len(targets),
			Errors:         append([]string(nil), cumulativeErrors...),
		})
	}

	if len(trashEntries) > 0 || permanentCount > 0 {
		result.UndoID = e.undo.RecordDelete(trashEntries, permanentCount)
	}

	result.Duration = time.Since(start)
	result.Errors = cumulativeErrors
	result.Summary = summarize(OpDelete, result.SuccessCount, result.FailureCount)

	send(OpEvent{Kind: EventComplete, Op: OpDelete, Result: &result, Cancelled: cancelled})
}
