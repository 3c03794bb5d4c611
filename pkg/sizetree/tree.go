package sizetree

import (
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"time"
)

// Handle is an opaque reference to a node of a specific [Tree].
// The zero Handle never resolves.
type Handle struct {
	Gen   uint64
	Index uint32
}

// Valid reports whether h was issued by some tree.
func (h Handle) Valid() bool { return h.Gen != 0 }

// lastGen is shared by every tree so that generations never repeat within a
// process.
var lastGen atomic.Uint64

// Tree is an indexed, read-only size hierarchy.
type Tree struct {
	gen     uint64
	nodes   []*Node
	parents []uint32
	first   []uint32 // index of the first child; children are contiguous
}

type buildConfig struct {
	freeSpace uint64
}

// BuildOption configures [Build].
type BuildOption func(*buildConfig)

// WithFreeSpace adds a synthetic free-space child of the given size to the
// root. A size of zero only removes a previous entry.
func WithFreeSpace(bytes uint64) BuildOption {
	return func(c *buildConfig) { c.freeSpace = bytes }
}

// Build takes ownership of root and returns the indexed tree.
//
// Any free-space child already present at the root is removed before the new
// one is added, and every directory size is recomputed from its children, so
// rebuilding the same root never double-counts. Subtrees that already satisfy
// the size and ordering invariants are only read, which lets a scanner share
// completed subtrees between successive snapshots.
func Build(root *Node, opts ...BuildOption) *Tree {
	var cfg buildConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if root == nil {
		root = NewDir("", time.Time{})
	}

	setFreeSpace(root, cfg.freeSpace)
	normalize(root)

	t := &Tree{gen: lastGen.Add(1)}
	t.index(root)
	return t
}

func setFreeSpace(root *Node, bytes uint64) {
	if !root.IsDir {
		return
	}
	if slices.ContainsFunc(root.Children, func(c *Node) bool { return c.FreeSpace }) {
		root.Children = slices.DeleteFunc(slices.Clone(root.Children), func(c *Node) bool { return c.FreeSpace })
	}
	if bytes > 0 {
		root.Children = append(slices.Clip(root.Children), &Node{Name: FreeSpaceName, Size: bytes, FreeSpace: true})
	}
}

// Normalize recomputes directory sizes and file counts below n and sorts
// children. A subtree normalized once is only read by later calls and by
// [Build], so a producer can normalize a finished subtree and then share it
// across snapshots.
func Normalize(n *Node) {
	if n != nil {
		normalize(n)
	}
}

// normalize writes fields only when they change.
func normalize(n *Node) {
	if !n.IsDir {
		return
	}
	var size, files uint64
	for _, c := range n.Children {
		normalize(c)
		size = addSat(size, c.Size)
		if c.IsDir {
			files = addSat(files, c.FileCount)
		} else if !c.FreeSpace {
			files = addSat(files, 1)
		}
	}
	if n.Size != size {
		n.Size = size
	}
	if n.FileCount != files {
		n.FileCount = files
	}
	if !slices.IsSortedFunc(n.Children, lessBySize) {
		n.Children = slices.Clone(n.Children)
		slices.SortStableFunc(n.Children, lessBySize)
	}
}

// index assigns breadth-first indexes so every node's children occupy a
// contiguous range.
func (t *Tree) index(root *Node) {
	t.nodes = append(t.nodes, root)
	t.parents = append(t.parents, 0)
	for i := 0; i < len(t.nodes); i++ {
		n := t.nodes[i]
		t.first = append(t.first, uint32(len(t.nodes)))
		for _, c := range n.Children {
			t.nodes = append(t.nodes, c)
			t.parents = append(t.parents, uint32(i))
		}
	}
}

// Gen returns the tree's generation.
func (t *Tree) Gen() uint64 { return t.gen }

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Root returns the root node.
func (t *Tree) Root() *Node { return t.nodes[0] }

// RootHandle returns the handle of the root node.
func (t *Tree) RootHandle() Handle { return Handle{Gen: t.gen} }

// Node resolves h. It returns false for handles of other trees.
func (t *Tree) Node(h Handle) (*Node, bool) {
	if t == nil || h.Gen != t.gen || int(h.Index) >= len(t.nodes) {
		return nil, false
	}
	return t.nodes[h.Index], true
}

// Child returns the handle of the k-th child of h.
func (t *Tree) Child(h Handle, k int) (Handle, bool) {
	n, ok := t.Node(h)
	if !ok || k < 0 || k >= len(n.Children) {
		return Handle{}, false
	}
	return Handle{Gen: t.gen, Index: t.first[h.Index] + uint32(k)}, true
}

// Parent returns the parent of h. The root has no parent.
func (t *Tree) Parent(h Handle) (Handle, bool) {
	if _, ok := t.Node(h); !ok || h.Index == 0 {
		return Handle{}, false
	}
	return Handle{Gen: t.gen, Index: t.parents[h.Index]}, true
}

// Path joins the names from the root down to h. The root name is normally
// the scanned path, so the result is a filesystem path.
func (t *Tree) Path(h Handle) string {
	if _, ok := t.Node(h); !ok {
		return ""
	}
	var names []string
	for cur, ok := h, true; ok; cur, ok = t.Parent(cur) {
		names = append(names, t.nodes[cur.Index].Name)
	}
	slices.Reverse(names)
	return filepath.Join(names...)
}

// Lookup resolves a slash-separated path relative to the root, such as
// "src/lib". The empty path and "." resolve to the root.
func (t *Tree) Lookup(rel string) (Handle, bool) {
	h := t.RootHandle()
	rel = strings.Trim(filepath.ToSlash(filepath.Clean(rel)), "/")
	if rel == "." || rel == "" {
		return h, true
	}
	for _, name := range strings.Split(rel, "/") {
		n, ok := t.Node(h)
		if !ok {
			return Handle{}, false
		}
		k := slices.IndexFunc(n.Children, func(c *Node) bool { return c.Name == name && !c.FreeSpace })
		if k < 0 {
			return Handle{}, false
		}
		h, _ = t.Child(h, k)
	}
	return h, true
}

// Walk calls fn for every node in breadth-first order until fn returns false.
func (t *Tree) Walk(fn func(h Handle, n *Node) bool) {
	for i, n := range t.nodes {
		if !fn(Handle{Gen: t.gen, Index: uint32(i)}, n) {
			return
		}
	}
}
