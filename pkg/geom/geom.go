// Package geom provides the small value types shared by the layout, camera
// and viewport packages.
//
// Rect uses a top-left origin with Y growing downward, matching screen
// coordinates. World space uses the same orientation so the camera transform
// is a pure scale and translation.
package geom

import "math"

// Point is a 2D position.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p*s.
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// Rect is an axis-aligned rectangle given by its top-left corner and size.
// Width and height are never negative for rects produced by this module.
type Rect struct {
	X, Y float64
	W, H float64
}

// RectFromMinMax builds a rect from two corners. Inverted corners collapse
// to a zero size instead of producing a negative one.
func RectFromMinMax(minX, minY, maxX, maxY float64) Rect {
	return Rect{X: minX, Y: minY, W: math.Max(0, maxX-minX), H: math.Max(0, maxY-minY)}
}

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.X + r.W }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 { return r.Y + r.H }

// Area returns W*H.
func (r Rect) Area() float64 { return r.W * r.H }

// Center returns the midpoint.
func (r Rect) Center() Point { return Point{r.X + r.W/2, r.Y + r.H/2} }

// ShortSide returns the smaller of W and H.
func (r Rect) ShortSide() float64 { return math.Min(r.W, r.H) }

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Contains reports whether p lies in the half-open rect [X, MaxX) x [Y, MaxY).
// Adjacent rects sharing an edge therefore never both contain a point.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.MaxX() && p.Y >= r.Y && p.Y < r.MaxY()
}

// ContainsRect reports whether o lies inside r, allowing tol of slack.
func (r Rect) ContainsRect(o Rect, tol float64) bool {
	return o.X >= r.X-tol && o.Y >= r.Y-tol && o.MaxX() <= r.MaxX()+tol && o.MaxY() <= r.MaxY()+tol
}

// Intersects reports whether the two rects overlap with positive area.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.MaxX() && o.X < r.MaxX() && r.Y < o.MaxY() && o.Y < r.MaxY()
}

// Intersect returns the overlap of r and o, zero-sized when they are disjoint.
func (r Rect) Intersect(o Rect) Rect {
	return RectFromMinMax(
		math.Max(r.X, o.X), math.Max(r.Y, o.Y),
		math.Min(r.MaxX(), o.MaxX()), math.Min(r.MaxY(), o.MaxY()),
	)
}

// Shrink insets every side by d. A rect thinner than 2d collapses to zero
// size around its center line.
func (r Rect) Shrink(d float64) Rect {
	return r.Inset(d, d, d, d)
}

// Inset moves each edge inward by the given amounts.
func (r Rect) Inset(left, top, right, bottom float64) Rect {
	out := RectFromMinMax(r.X+left, r.Y+top, r.MaxX()-right, r.MaxY()-bottom)
	if out.W == 0 {
		out.X = math.Min(r.X+left, r.MaxX())
	}
	if out.H == 0 {
		out.Y = math.Min(r.Y+top, r.MaxY())
	}
	return out
}
