// Package sizetree holds the scanned size hierarchy consumed by the viewport
// engine.
//
// A Node tree is produced by a scanner and handed over to [Build], which
// enforces the size invariants, injects the synthetic free-space entry and
// indexes every node. After Build the tree is read-only. Other packages refer
// to nodes through [Handle] values rather than pointers: a handle carries the
// generation of the tree it was issued by, so a handle from a replaced tree
// fails to resolve instead of dangling.
package sizetree

import (
	"math"
	"path/filepath"
	"strings"
	"time"
)

// FreeSpaceName is the name of the synthetic free-space child at the root.
const FreeSpaceName = "<Free Space>"

// Node is one file or directory.
type Node struct {
	Name     string
	Size     uint64
	IsDir    bool
	Modified time.Time
	// Ext is the lowercase extension including the dot, files only.
	Ext string
	// FileCount is the number of files below a directory.
	FileCount uint64
	// FreeSpace marks the synthetic free-space entry.
	FreeSpace bool
	// Children are ordered largest first, directories only.
	Children []*Node
}

// NewFile creates a file node. Negative sizes are clamped to zero.
func NewFile(name string, size int64, modified time.Time) *Node {
	return &Node{
		Name:      name,
		Size:      ClampSize(size),
		Modified:  modified,
		Ext:       ExtOf(name),
		FileCount: 1,
	}
}

// NewDir creates an empty directory node.
func NewDir(name string, modified time.Time) *Node {
	return &Node{Name: name, IsDir: true, Modified: modified}
}

// HasChildren reports whether n is a directory with at least one child.
func (n *Node) HasChildren() bool { return n.IsDir && len(n.Children) > 0 }

// ClampSize converts a size reported by the filesystem to the unsigned size
// used by the tree. Negative values become zero.
func ClampSize(size int64) uint64 {
	if size < 0 {
		return 0
	}
	return uint64(size)
}

// addSat adds without wrapping past MaxUint64.
func addSat(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

// ExtOf returns the lowercase extension of a file name including the dot,
// or "" when there is none. Very long suffixes are not treated as extensions.
func ExtOf(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || ext == name || len(ext) > 10 {
		return ""
	}
	return strings.ToLower(ext)
}

// lessBySize orders children largest first, with the free-space entry
// always last so it lands in the bottom-right corner of its parent.
func lessBySize(a, b *Node) int {
	switch {
	case a.FreeSpace && !b.FreeSpace:
		return 1
	case !a.FreeSpace && b.FreeSpace:
		return -1
	case a.Size > b.Size:
		return -1
	case a.Size < b.Size:
		return 1
	}
	return strings.Compare(a.Name, b.Name)
}
