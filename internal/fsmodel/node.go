// Package fsmodel holds the scan result data model: nodes, trees, and the
// aggregated statistics produced by a scan.
package fsmodel

import "time"

// NodeID is an opaque identifier unique within one Tree. IDs are assigned
// monotonically during a scan and are never reused across trees.
type NodeID uint64

// Kind tags the variant of a Node.
type Kind int

const (
	KindFile Kind = iota
	KindDirectory
	KindSymlink
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "dir"
	case KindSymlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// Timestamps holds the optional wall-clock instants a filesystem may report
// for a node. Members are nil when the underlying filesystem omits them.
type Timestamps struct {
	Modified *time.Time
	Accessed *time.Time
	Created  *time.Time
}

// InodeKey identifies a file by device and inode number. It is only
// populated for files whose link count exceeds one.
type InodeKey struct {
	Device uint64
	Inode  uint64
}

// Node is a single file, directory, or symlink within a Tree.
type Node struct {
	ID   NodeID
	Name string // final path component, not the full path
	Kind Kind

	// File-only.
	Executable bool

	// Symlink-only.
	SymlinkTarget string
	SymlinkBroken bool

	// Size is the reported byte length for files; for directories it is the
	// sum of descendant file sizes after hardlink dedup.
	Size uint64
	// Blocks is on-disk allocation; directories aggregate like Size.
	Blocks uint64

	Timestamps Timestamps

	// Inode is set only for files with a link count greater than one.
	Inode *InodeKey

	// Children is non-empty only for directories, sorted descending by
	// Size then ascending by Name.
	Children []*Node
}

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool { return n.Kind == KindDirectory }

// IsFile reports whether the node is a regular file.
func (n *Node) IsFile() bool { return n.Kind == KindFile }

// IsSymlink reports whether the node is a symbolic link.
func (n *Node) IsSymlink() bool { return n.Kind == KindSymlink }

// FileCount returns the number of file descendants (1 for a file itself, 0
// for a symlink, and the descendant count, recomputed on each call, for a
// directory).
func (n *Node) FileCount() uint64 {
	switch n.Kind {
	case KindFile:
		return 1
	case KindDirectory:
		var total uint64
		for _, child := range n.Children {
			total += child.FileCount()
		}
		return total
	default:
		return 0
	}
}

// DirCount returns the number of directory descendants.
func (n *Node) DirCount() uint64 {
	if n.Kind != KindDirectory {
		return 0
	}
	var total uint64
	for _, child := range n.Children {
		if child.IsDir() {
			total++
		}
		total += child.DirCount()
	}
	return total
}
