// Package lod maintains the lazily expanded layout of a size tree in world
// space.
//
// Only the root's children are laid out up front. Deeper levels are added by
// [Tree.ExpandVisible] as directories grow large on screen and removed again
// by [Tree.Prune] once they shrink or leave the viewport. The world rects kept
// here drive camera targeting, breadcrumbs and expand/prune decisions; below
// the top level nothing is drawn from them.
package lod

import (
	"slices"

	"github.com/matzehuels/spaceview/pkg/geom"
	"github.com/matzehuels/spaceview/pkg/sizetree"
	"github.com/matzehuels/spaceview/pkg/treemap"
)

// Node is a materialized layout node.
type Node struct {
	Handle sizetree.Handle
	World  geom.Rect
	Depth  int

	// HasChildren reports whether the size node is a non-empty directory,
	// which is what makes a node expandable.
	HasChildren bool

	Expanded bool
	Children []*Node
}

// Tree is the layout cache for one size tree. It is confined to the frame
// goroutine.
type Tree struct {
	src   *sizetree.Tree
	world geom.Rect
	root  *Node

	expansions uint64
	prunes     uint64
}

// Stats describes the current materialization.
type Stats struct {
	Nodes      int
	Expanded   int
	Expansions uint64
	Prunes     uint64
}

// Build lays out the root's children over the world rect [0,0]-[1,aspect].
// The root is always expanded.
func Build(src *sizetree.Tree, aspect float64) *Tree {
	if aspect <= 0 {
		aspect = 1
	}
	t := &Tree{src: src, world: geom.Rect{W: 1, H: aspect}}
	t.root = &Node{Handle: src.RootHandle(), World: t.world}
	if n, _ := src.Node(t.root.Handle); n != nil {
		t.root.HasChildren = n.HasChildren()
	}
	t.expand(t.root, t.world)
	t.expansions = 0
	return t
}

// Source returns the size tree the layout was built from.
func (t *Tree) Source() *sizetree.Tree { return t.src }

// Gen returns the generation of the source tree.
func (t *Tree) Gen() uint64 { return t.src.Gen() }

// World returns the world rectangle.
func (t *Tree) World() geom.Rect { return t.world }

// Root returns the root layout node.
func (t *Tree) Root() *Node { return t.root }

// ContentRect returns the part of a directory's world rect available to its
// children: a header strip of 1% of the height and a thin padding on the
// other sides. It approximates the screen-space header, which has a fixed
// pixel height and cannot be expressed in world units.
func ContentRect(r geom.Rect) geom.Rect {
	hh := r.H * 0.01
	pad := 0.002 * r.ShortSide()
	return r.Inset(pad, hh, pad, pad)
}

// expand populates n.Children with one Squarify call over area.
func (t *Tree) expand(n *Node, area geom.Rect) {
	sn, ok := t.src.Node(n.Handle)
	if !ok {
		return
	}
	n.Expanded = true
	t.expansions++
	if len(sn.Children) == 0 {
		return
	}

	sizes := make([]float64, len(sn.Children))
	for i, c := range sn.Children {
		sizes[i] = float64(c.Size)
	}
	rects := treemap.Squarify(sizes, area)
	if rects == nil {
		return
	}

	n.Children = make([]*Node, len(rects))
	for i, r := range rects {
		h, _ := t.src.Child(n.Handle, i)
		n.Children[i] = &Node{
			Handle:      h,
			World:       r,
			Depth:       n.Depth + 1,
			HasChildren: sn.Children[i].HasChildren(),
		}
	}
}

func collapse(n *Node) {
	n.Children = nil
	n.Expanded = false
}

// ExpandVisible expands directories that are on screen and whose shorter
// projected side exceeds fc.ExpandPx, stopping once fc.Budget expansions have
// been made. Anything off screen or thinner than fc.MinScreenPx is not
// descended into. It returns the number of expansions.
func (t *Tree) ExpandVisible(fc FrameContext) int {
	if fc.Budget <= 0 {
		return 0
	}
	count := 0
	t.expandWalk(t.root.Children, fc, &count)
	return count
}

func (t *Tree) expandWalk(nodes []*Node, fc FrameContext, count *int) {
	vp := fc.Viewport()
	for _, n := range nodes {
		if *count >= fc.Budget {
			return
		}
		s := fc.Project(n.World)
		if !s.Intersects(vp) {
			continue
		}
		side := s.ShortSide()
		if side < fc.MinScreenPx {
			continue
		}
		if !n.Expanded && n.HasChildren && side > fc.ExpandPx {
			t.expand(n, ContentRect(n.World))
			*count++
		}
		if n.Expanded {
			t.expandWalk(n.Children, fc, count)
		}
	}
}

// Prune collapses expanded nodes that are off screen or whose shorter
// projected side is below fc.PrunePx. A node for which inUse returns true is
// kept, because the frame that produced inUse still draws or hit-tests
// through it. The gap between the prune and expand thresholds keeps a node
// from flickering between the two states. It returns the number of nodes
// collapsed.
func (t *Tree) Prune(fc FrameContext, inUse func(*Node) bool) int {
	count := 0
	t.pruneWalk(t.root.Children, fc, inUse, &count)
	t.prunes += uint64(count)
	return count
}

func (t *Tree) pruneWalk(nodes []*Node, fc FrameContext, inUse func(*Node) bool, count *int) {
	vp := fc.Viewport()
	for _, n := range nodes {
		if !n.Expanded {
			continue
		}
		s := fc.Project(n.World)
		small := !s.Intersects(vp) || s.ShortSide() < fc.PrunePx
		if small && (inUse == nil || !inUse(n)) {
			collapse(n)
			*count++
			continue
		}
		t.pruneWalk(n.Children, fc, inUse, count)
	}
}

// AncestorChain returns the nodes containing the world point p, starting at
// the root and following expanded levels as deep as they go.
func (t *Tree) AncestorChain(p geom.Point) []*Node {
	chain := []*Node{t.root}
	for cur := t.root; cur.Expanded; {
		var next *Node
		for _, c := range cur.Children {
			if c.World.Contains(p) {
				next = c
				break
			}
		}
		if next == nil {
			break
		}
		chain = append(chain, next)
		cur = next
	}
	return chain
}

// Find returns the materialized node for h, or nil when h belongs to another
// tree or an ancestor is not expanded.
func (t *Tree) Find(h sizetree.Handle) *Node {
	if _, ok := t.src.Node(h); !ok {
		return nil
	}
	var path []sizetree.Handle
	for cur, ok := h, true; ok; cur, ok = t.src.Parent(cur) {
		path = append(path, cur)
	}
	slices.Reverse(path)

	n := t.root
	for _, want := range path[1:] {
		i := slices.IndexFunc(n.Children, func(c *Node) bool { return c.Handle == want })
		if i < 0 {
			return nil
		}
		n = n.Children[i]
	}
	return n
}

// Walk visits every materialized node depth-first, parents before children,
// until fn returns false.
func (t *Tree) Walk(fn func(*Node) bool) {
	var visit func(*Node) bool
	visit = func(n *Node) bool {
		if !fn(n) {
			return false
		}
		for _, c := range n.Children {
			if !visit(c) {
				return false
			}
		}
		return true
	}
	visit(t.root)
}

// Stats counts materialized and expanded nodes.
func (t *Tree) Stats() Stats {
	s := Stats{Expansions: t.expansions, Prunes: t.prunes}
	t.Walk(func(n *Node) bool {
		s.Nodes++
		if n.Expanded {
			s.Expanded++
		}
		return true
	})
	return s
}

// Release detaches every materialized node so the layout can be collected
// piecemeal, and returns how many nodes it held. t must not be used
// afterwards.
func Release(t *Tree) int {
	if t == nil || t.root == nil {
		return 0
	}
	count := 0
	stack := []*Node{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		stack = append(stack, n.Children...)
		n.Children = nil
	}
	t.root = nil
	t.src = nil
	return count
}
