package viewport

import (
	"github.com/matzehuels/spaceview/pkg/camera"
	"github.com/matzehuels/spaceview/pkg/geom"
	"github.com/matzehuels/spaceview/pkg/lod"
)

// Default screen geometry, in pixels.
const (
	BorderPx    = 1.5
	HeaderPx    = 16.0
	PadPx       = 3.0
	FileInsetPx = 1.0

	// A directory header is drawn only when the body is at least this large.
	HeaderMinW = 8.0
	HeaderMinH = 12.0
)

// Geometry holds the pixel constants shared by Render and HitTest.
type Geometry struct {
	BorderPx    float64
	HeaderPx    float64
	PadPx       float64
	FileInsetPx float64
	HeaderMinW  float64
	HeaderMinH  float64
}

// DefaultGeometry returns the default pixel constants.
func DefaultGeometry() Geometry {
	return Geometry{
		BorderPx:    BorderPx,
		HeaderPx:    HeaderPx,
		PadPx:       PadPx,
		FileInsetPx: FileInsetPx,
		HeaderMinW:  HeaderMinW,
		HeaderMinH:  HeaderMinH,
	}
}

// FrameContext carries one frame's camera snapshot, expansion budget,
// thresholds and screen geometry. Expansion, pruning, rendering and
// hit-testing of a frame all take the same value.
type FrameContext struct {
	lod.FrameContext
	Geometry Geometry
}

// NewFrameContext returns a context with default thresholds and geometry.
func NewFrameContext(cam camera.State) FrameContext {
	return FrameContext{FrameContext: lod.NewFrameContext(cam), Geometry: DefaultGeometry()}
}

// culled reports whether a node at screen rect s is skipped entirely.
func (fc FrameContext) culled(s geom.Rect) bool {
	return !s.Intersects(fc.Viewport()) || s.W < fc.MinScreenPx || s.H < fc.MinScreenPx
}

// dirLayout splits a directory's screen rect into its parts.
type dirLayout struct {
	inner      geom.Rect
	header     geom.Rect
	content    geom.Rect
	showHeader bool
	hasContent bool
}

func (fc FrameContext) dirGeometry(screen geom.Rect) dirLayout {
	g := fc.Geometry
	inner := screen.Shrink(g.BorderPx)
	hh := min(g.HeaderPx, inner.H)
	content := inner.Inset(g.PadPx, hh, g.PadPx, g.PadPx)
	return dirLayout{
		inner:      inner,
		header:     geom.Rect{X: inner.X, Y: inner.Y, W: inner.W, H: hh},
		content:    content,
		showHeader: inner.H >= g.HeaderMinH && inner.W >= g.HeaderMinW,
		hasContent: content.W > fc.MinScreenPx && content.H > fc.MinScreenPx,
	}
}

// leafRect is the single rect drawn for a file or collapsed directory.
func (fc FrameContext) leafRect(screen geom.Rect) geom.Rect {
	return screen.Shrink(fc.Geometry.FileInsetPx)
}

// descends reports whether n is drawn as a directory with children.
func descends(n *lod.Node) bool {
	return n.HasChildren && n.Expanded
}
