package viewport

import (
	"math"
	"strings"

	"github.com/matzehuels/spaceview/pkg/geom"
	"github.com/matzehuels/spaceview/pkg/lod"
	"github.com/matzehuels/spaceview/pkg/sizetree"
	"github.com/matzehuels/spaceview/pkg/treemap"
)

// Approximate advance of one glyph relative to the font size.
const glyphWidth = 0.55

// RenderOptions tune a single Render call.
type RenderOptions struct {
	// DimExt flags files whose extension differs from it as Dim.
	// sizetree.NoExt matches files without an extension.
	DimExt string

	// Visited is called for every directory whose children the traversal
	// descends into.
	Visited func(*lod.Node)
}

type renderer struct {
	fc   FrameContext
	st   *sizetree.Tree
	opts RenderOptions
	out  []DrawRect
}

// Render produces the frame's draw list. The root's children are placed at
// their projected world rects; every deeper level is squarified again in
// screen pixels inside its parent's content rect, so the picture is exact at
// any zoom. st must be the tree lt was built from.
func Render(fc FrameContext, lt *lod.Tree, st *sizetree.Tree, opts RenderOptions) []DrawRect {
	if lt == nil || st == nil {
		return nil
	}
	r := &renderer{fc: fc, st: st, opts: opts}
	root := lt.Root()
	r.visit(root)
	for _, c := range root.Children {
		r.node(c, fc.Project(c.World))
	}
	return r.out
}

func (r *renderer) visit(n *lod.Node) {
	if r.opts.Visited != nil {
		r.opts.Visited(n)
	}
}

func (r *renderer) node(n *lod.Node, screen geom.Rect) {
	if r.fc.culled(screen) {
		return
	}
	sn, ok := r.st.Node(n.Handle)
	if !ok {
		return
	}
	if !descends(n) {
		r.leaf(n, sn, screen)
		return
	}

	g := r.fc.dirGeometry(screen)
	if g.inner.Intersects(r.fc.Viewport()) {
		r.out = append(r.out, DrawRect{
			Rect:   g.inner,
			Clip:   g.inner.Intersect(r.fc.Viewport()),
			Handle: n.Handle,
			Depth:  n.Depth,
			Kind:   KindBody,
			IsDir:  true,
		})
	}

	if g.hasContent && len(n.Children) > 0 {
		if rects := childRects(r.st, n, g.content); rects != nil {
			r.visit(n)
			for i, c := range n.Children {
				r.node(c, rects[i])
			}
		}
	}

	if g.showHeader && g.header.Intersects(r.fc.Viewport()) {
		d := DrawRect{
			Rect:   g.header,
			Clip:   g.header.Intersect(r.fc.Viewport()),
			Handle: n.Handle,
			Depth:  n.Depth,
			Kind:   KindHeader,
			IsDir:  true,
		}
		headerText(&d, sn, g.inner.W)
		r.out = append(r.out, d)
	}
}

func (r *renderer) leaf(n *lod.Node, sn *sizetree.Node, screen geom.Rect) {
	rect := r.fc.leafRect(screen)
	if !rect.Intersects(r.fc.Viewport()) {
		return
	}
	d := DrawRect{
		Rect:      rect,
		Clip:      rect.Intersect(r.fc.Viewport()),
		Handle:    n.Handle,
		Depth:     n.Depth,
		Kind:      KindFile,
		IsDir:     sn.IsDir,
		FreeSpace: sn.FreeSpace,
		Dim:       dimmed(sn, r.opts.DimExt),
	}
	leafText(&d, sn)
	r.out = append(r.out, d)
}

// childRects squarifies n's children inside content. It returns nil when the
// layout node and size node disagree or no child has a size.
func childRects(st *sizetree.Tree, n *lod.Node, content geom.Rect) []geom.Rect {
	sn, ok := st.Node(n.Handle)
	if !ok || len(sn.Children) != len(n.Children) {
		return nil
	}
	sizes := make([]float64, len(sn.Children))
	for i, c := range sn.Children {
		sizes[i] = float64(c.Size)
	}
	return treemap.Squarify(sizes, content)
}

// headerText sizes the name and size labels of a directory header whose
// body is width pixels wide.
func headerText(d *DrawRect, sn *sizetree.Node, width float64) {
	hh := d.Rect.H
	if hh < 14 || width <= 30 {
		return
	}
	font := math.Max(9, math.Min(13, hh-4))
	d.FontSize = font

	size := sizetree.FormatSize(sn.Size)
	if sn.FileCount > 0 && width > 180 {
		size += " (" + sizetree.FormatCount(sn.FileCount) + ")"
	}
	var reserve float64
	if width > 100 {
		d.SizeLabel = size
		reserve = float64(len(size))*(font-1)*glyphWidth + 12
	}
	nameWidth := math.Max(0, width-8-reserve)
	d.Label = sizetree.Truncate(sn.Name, int(nameWidth/(font*glyphWidth)))
}

// leafText sizes the labels of a file-style rect.
func leafText(d *DrawRect, sn *sizetree.Node) {
	w, h := d.Rect.W, d.Rect.H
	if w <= 35 || h <= 14 {
		return
	}
	font := math.Min(11, h-3)
	d.FontSize = font
	d.Label = sizetree.Truncate(sn.Name, int((w-6)/(font*glyphWidth)))
	if h > 28 {
		d.SizeLabel = sizetree.FormatSize(sn.Size)
	}
}

// NormalizeExt turns user input such as "GO" or ".go" into the form stored
// in sizetree.Node.Ext. sizetree.NoExt passes through unchanged.
func NormalizeExt(ext string) string {
	if ext == "" || ext == sizetree.NoExt {
		return ext
	}
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func dimmed(sn *sizetree.Node, filter string) bool {
	if filter == "" || sn.IsDir || sn.FreeSpace {
		return false
	}
	if filter == sizetree.NoExt {
		return sn.Ext != ""
	}
	return sn.Ext != filter
}
