package duplicates

import "sweepcore/internal/fsmodel"

// Group is a set of files sharing identical content.
type Group struct {
	Hash        fsmodel.ContentHash
	Size        uint64
	Paths       []string
	WastedBytes uint64
}

// Count returns the number of duplicate files in the group.
func (g Group) Count() int { return len(g.Paths) }

// DeletableCount returns how many copies could be removed while keeping one.
func (g Group) DeletableCount() int {
	if len(g.Paths) == 0 {
		return 0
	}
	return len(g.Paths) - 1
}

// Report summarizes one duplicate search.
type Report struct {
	Groups []Group

	TotalDuplicateSize  uint64
	TotalWastedSpace    uint64
	FilesAnalyzed       uint64
	FilesWithDuplicates uint64
	GroupCount          int

	// Warnings collects candidates that could not be hashed (permission
	// denied, vanished mid-scan, etc). Such files are excluded from the
	// report rather than failing the whole search.
	Warnings []fsmodel.ScanWarning
}

// HasDuplicates reports whether the search found anything.
func (r Report) HasDuplicates() bool { return len(r.Groups) > 0 }
