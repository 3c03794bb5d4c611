package sizetree

import (
	"cmp"
	"slices"
	"time"
)

// NoExt is the extension bucket for files without an extension.
const NoExt = "(no ext)"

// FileEntry is one file reported by [TopFiles].
type FileEntry struct {
	Path string
	Size uint64
}

// ExtStat aggregates the files sharing an extension.
type ExtStat struct {
	Ext   string
	Size  uint64
	Count uint64
}

// TopFiles returns the n largest files below root, largest first. Paths are
// joined from the root name down.
func TopFiles(root *Node, n int) []FileEntry {
	if root == nil || n <= 0 {
		return nil
	}
	var all []FileEntry
	var walk func(node *Node, path []string)
	walk = func(node *Node, path []string) {
		path = append(path, node.Name)
		if !node.IsDir {
			if !node.FreeSpace {
				all = append(all, FileEntry{Path: joinPath(path), Size: node.Size})
			}
			return
		}
		for _, c := range node.Children {
			walk(c, path)
		}
	}
	walk(root, nil)

	slices.SortStableFunc(all, func(a, b FileEntry) int { return cmp.Compare(b.Size, a.Size) })
	if len(all) > n {
		all = all[:n]
	}
	return slices.Clip(all)
}

// ExtensionStats totals file sizes and counts by extension, largest first.
func ExtensionStats(root *Node) []ExtStat {
	acc := make(extAcc)
	var walk func(n *Node)
	walk = func(n *Node) {
		acc.add(n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return acc.sorted()
}

// ExtensionStats totals the files indexed by t by extension, largest first.
func (t *Tree) ExtensionStats() []ExtStat {
	acc := make(extAcc)
	t.Walk(func(_ Handle, n *Node) bool {
		acc.add(n)
		return true
	})
	return acc.sorted()
}

type extAcc map[string]*ExtStat

// add counts n when it is a regular file.
func (acc extAcc) add(n *Node) {
	if n.IsDir || n.FreeSpace {
		return
	}
	ext := n.Ext
	if ext == "" {
		ext = NoExt
	}
	st, ok := acc[ext]
	if !ok {
		st = &ExtStat{Ext: ext}
		acc[ext] = st
	}
	st.Size = addSat(st.Size, n.Size)
	st.Count++
}

func (acc extAcc) sorted() []ExtStat {
	out := make([]ExtStat, 0, len(acc))
	for _, st := range acc {
		out = append(out, *st)
	}
	slices.SortFunc(out, func(a, b ExtStat) int {
		if c := cmp.Compare(b.Size, a.Size); c != 0 {
			return c
		}
		return cmp.Compare(a.Ext, b.Ext)
	})
	return out
}

// TimeRange returns the oldest and newest file modification times below
// root. Both are zero when no file has a known time.
func TimeRange(root *Node) (oldest, newest time.Time) {
	var walk func(n *Node)
	walk = func(n *Node) {
		if !n.IsDir {
			if n.Modified.IsZero() {
				return
			}
			if oldest.IsZero() || n.Modified.Before(oldest) {
				oldest = n.Modified
			}
			if n.Modified.After(newest) {
				newest = n.Modified
			}
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return oldest, newest
}
