package viewport

import (
	"github.com/matzehuels/spaceview/pkg/geom"
	"github.com/matzehuels/spaceview/pkg/lod"
	"github.com/matzehuels/spaceview/pkg/sizetree"
)

// HitTest returns the node whose topmost DrawRect contains the screen point
// p, using the same traversal and geometry as Render. Within a directory
// the header band wins over the children, which win over the body. Points
// outside the viewport never hit.
func HitTest(fc FrameContext, lt *lod.Tree, st *sizetree.Tree, p geom.Point) (sizetree.Handle, bool) {
	if lt == nil || st == nil || !fc.Viewport().Contains(p) {
		return sizetree.Handle{}, false
	}
	h := hitter{fc: fc, st: st, p: p}
	for _, c := range lt.Root().Children {
		if n, ok := h.node(c, fc.Project(c.World)); ok {
			return n, true
		}
	}
	return sizetree.Handle{}, false
}

type hitter struct {
	fc FrameContext
	st *sizetree.Tree
	p  geom.Point
}

func (h hitter) node(n *lod.Node, screen geom.Rect) (sizetree.Handle, bool) {
	// Every rect drawn for n lies inside screen.
	if h.fc.culled(screen) || !screen.Contains(h.p) {
		return sizetree.Handle{}, false
	}
	if _, ok := h.st.Node(n.Handle); !ok {
		return sizetree.Handle{}, false
	}
	if !descends(n) {
		return n.Handle, h.fc.leafRect(screen).Contains(h.p)
	}

	g := h.fc.dirGeometry(screen)
	if g.showHeader && g.header.Contains(h.p) {
		return n.Handle, true
	}
	if g.hasContent && len(n.Children) > 0 && g.content.Contains(h.p) {
		if rects := childRects(h.st, n, g.content); rects != nil {
			for i, c := range n.Children {
				if hit, ok := h.node(c, rects[i]); ok {
					return hit, true
				}
			}
		}
	}
	return n.Handle, g.inner.Contains(h.p)
}
