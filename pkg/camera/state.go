package camera

import "github.com/matzehuels/spaceview/pkg/geom"

// State is a read-only snapshot of a camera. Frame computations take a State
// instead of the live camera so that one frame sees one transform.
type State struct {
	Center    geom.Point
	Zoom      float64
	Viewport  geom.Rect
	Animating bool
}

// Aspect returns viewport height over width, 1 for an empty viewport.
func (s State) Aspect() float64 {
	if s.Viewport.W <= 0 || s.Viewport.H <= 0 {
		return 1
	}
	return s.Viewport.H / s.Viewport.W
}

// World returns the world rectangle [0,0]-[1,aspect].
func (s State) World() geom.Rect { return geom.Rect{W: 1, H: s.Aspect()} }

// Scale returns screen pixels per world unit.
func (s State) Scale() float64 { return s.Zoom * s.Viewport.W }

// WorldToScreen projects a world point to screen pixels.
func (s State) WorldToScreen(p geom.Point) geom.Point {
	return p.Sub(s.Center).Scale(s.Scale()).Add(s.Viewport.Center())
}

// ScreenToWorld maps a screen point back to world space.
func (s State) ScreenToWorld(p geom.Point) geom.Point {
	return p.Sub(s.Viewport.Center()).Scale(1 / s.Scale()).Add(s.Center)
}

// WorldRectToScreen projects a world rect to screen pixels.
func (s State) WorldRectToScreen(r geom.Rect) geom.Rect {
	k := s.Scale()
	min := s.WorldToScreen(geom.Point{X: r.X, Y: r.Y})
	return geom.Rect{X: min.X, Y: min.Y, W: r.W * k, H: r.H * k}
}

// VisibleWorld returns the world rectangle currently inside the viewport.
func (s State) VisibleWorld() geom.Rect {
	k := s.Scale()
	w, h := s.Viewport.W/k, s.Viewport.H/k
	return geom.Rect{X: s.Center.X - w/2, Y: s.Center.Y - h/2, W: w, H: h}
}
