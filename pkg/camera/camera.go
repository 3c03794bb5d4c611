// Package camera implements the bounded 2D camera used to view the treemap.
//
// World space is normalized: the root occupies [0,0]-[1,aspect] where aspect
// is the viewport height divided by its width. At zoom 1 the whole world
// exactly fills the viewport. The camera is a small state machine, idle or
// animating, and every mutation is followed by a clamp so the zoom stays in
// [MinZoom, MaxZoom] and the visible rectangle never leaves the world.
package camera

import (
	"math"
	"time"

	"github.com/matzehuels/spaceview/pkg/geom"
)

const (
	// MinZoom shows the whole world; the camera cannot zoom out past the root.
	MinZoom = 1.0

	// MaxZoom bounds the transform's magnitude to keep float64 precision.
	MaxZoom = 5000.0

	// DefaultSnapDuration is the length of a SnapTo animation.
	DefaultSnapDuration = 250 * time.Millisecond

	// DefaultScrollCooldown is the minimum time between accepted scroll-zoom
	// events. Events inside the window are ignored.
	DefaultScrollCooldown = 250 * time.Millisecond

	// DefaultScrollSpeed is the zoom growth per unit of wheel delta.
	DefaultScrollSpeed = 0.15
)

// Animation is an in-flight SnapTo. It holds no timers: [Camera.Tick]
// advances Elapsed and the eased position is derived from it.
type Animation struct {
	StartCenter  geom.Point
	StartZoom    float64
	TargetCenter geom.Point
	TargetZoom   float64
	Elapsed      time.Duration
	Duration     time.Duration
}

// Camera holds the view center, zoom and an optional animation.
// It is not safe for concurrent use; it belongs to the frame loop.
type Camera struct {
	center   geom.Point
	zoom     float64
	viewport geom.Rect
	anim     *Animation

	lastScroll time.Time

	now            func() time.Time
	snapDuration   time.Duration
	scrollCooldown time.Duration
	scrollSpeed    float64
	maxZoom        float64
}

// Option configures a Camera.
type Option func(*Camera)

// WithClock replaces time.Now, which is only consulted for the scroll cooldown.
func WithClock(now func() time.Time) Option { return func(c *Camera) { c.now = now } }

// WithSnapDuration sets the SnapTo animation length. Zero snaps immediately.
func WithSnapDuration(d time.Duration) Option { return func(c *Camera) { c.snapDuration = d } }

// WithScrollCooldown sets the minimum spacing of accepted scroll events.
func WithScrollCooldown(d time.Duration) Option {
	return func(c *Camera) { c.scrollCooldown = d }
}

// WithScrollSpeed sets the zoom growth per unit of wheel delta.
func WithScrollSpeed(s float64) Option { return func(c *Camera) { c.scrollSpeed = s } }

// WithMaxZoom lowers the zoom ceiling. Values outside (MinZoom, MaxZoom] are ignored.
func WithMaxZoom(z float64) Option {
	return func(c *Camera) {
		if z > MinZoom && z <= MaxZoom {
			c.maxZoom = z
		}
	}
}

// New returns a camera showing the whole world inside viewport.
// A viewport without area is replaced by a 1x1 one.
func New(viewport geom.Rect, opts ...Option) *Camera {
	if viewport.Empty() {
		viewport = geom.Rect{W: 1, H: 1}
	}
	c := &Camera{
		viewport:       viewport,
		now:            time.Now,
		snapDuration:   DefaultSnapDuration,
		scrollCooldown: DefaultScrollCooldown,
		scrollSpeed:    DefaultScrollSpeed,
		maxZoom:        MaxZoom,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Reset()
	return c
}

// Reset returns to the root view and drops any animation.
func (c *Camera) Reset() {
	c.anim = nil
	c.zoom = MinZoom
	c.center = c.World().Center()
}

// State returns an immutable snapshot of the camera.
func (c *Camera) State() State {
	return State{Center: c.center, Zoom: c.zoom, Viewport: c.viewport, Animating: c.anim != nil}
}

// Center returns the world point at the middle of the viewport.
func (c *Camera) Center() geom.Point { return c.center }

// Zoom returns the current zoom factor.
func (c *Camera) Zoom() float64 { return c.zoom }

// Viewport returns the screen rectangle the camera projects onto.
func (c *Camera) Viewport() geom.Rect { return c.viewport }

// Aspect returns viewport height over width.
func (c *Camera) Aspect() float64 { return c.State().Aspect() }

// World returns the world rectangle [0,0]-[1,aspect].
func (c *Camera) World() geom.Rect { return c.State().World() }

// IsAnimating reports whether a SnapTo is in flight.
func (c *Camera) IsAnimating() bool { return c.anim != nil }

// Animation returns a copy of the in-flight animation, if any.
func (c *Camera) Animation() (Animation, bool) {
	if c.anim == nil {
		return Animation{}, false
	}
	return *c.anim, true
}

// WorldToScreen projects a world point to screen pixels.
func (c *Camera) WorldToScreen(p geom.Point) geom.Point { return c.State().WorldToScreen(p) }

// ScreenToWorld is the inverse of WorldToScreen.
func (c *Camera) ScreenToWorld(p geom.Point) geom.Point { return c.State().ScreenToWorld(p) }

// WorldRectToScreen projects a world rect to screen pixels.
func (c *Camera) WorldRectToScreen(r geom.Rect) geom.Rect { return c.State().WorldRectToScreen(r) }

// Tick advances the animation by dt. It reports whether the camera moved.
// When the elapsed time reaches the duration the camera lands exactly on
// the target.
func (c *Camera) Tick(dt time.Duration) bool {
	a := c.anim
	if a == nil {
		return false
	}
	if dt > 0 {
		a.Elapsed += dt
	}
	if a.Elapsed >= a.Duration {
		c.center = a.TargetCenter
		c.zoom = a.TargetZoom
		c.anim = nil
		c.clamp()
		return true
	}

	t := EaseOutCubic(float64(a.Elapsed) / float64(a.Duration))
	c.zoom = lerp(a.StartZoom, a.TargetZoom, t)
	c.center = geom.Point{
		X: lerp(a.StartCenter.X, a.TargetCenter.X, t),
		Y: lerp(a.StartCenter.Y, a.TargetCenter.Y, t),
	}
	c.clamp()
	return true
}

// SnapTo starts an animation from the current state toward center and zoom.
// The target is clamped first so the animation ends in a valid state. An
// animation already in flight is replaced, starting from wherever it got to.
func (c *Camera) SnapTo(center geom.Point, zoom float64) {
	tz := c.clampZoom(zoom)
	tc := clampCenter(center, tz, c.Aspect())
	if c.snapDuration <= 0 {
		c.anim = nil
		c.center, c.zoom = tc, tz
		c.clamp()
		return
	}
	c.anim = &Animation{
		StartCenter:  c.center,
		StartZoom:    c.zoom,
		TargetCenter: tc,
		TargetZoom:   tz,
		Duration:     c.snapDuration,
	}
}

// SnapToRect animates so the world rect r fills the viewport along its
// tighter axis.
func (c *Camera) SnapToRect(r geom.Rect) {
	c.SnapTo(r.Center(), c.FitZoom(r))
}

// FitZoom returns the zoom at which r just fits in the viewport.
func (c *Camera) FitZoom(r geom.Rect) float64 {
	if r.W <= 0 || r.H <= 0 {
		return c.maxZoom
	}
	return c.clampZoom(math.Min(1/r.W, c.Aspect()/r.H))
}

// ScrollZoom zooms by (1+speed)^delta while keeping the world point under
// cursor fixed on screen. Events arriving within the cooldown of the last
// accepted one are ignored; the return value reports acceptance. Scrolling
// cancels any animation.
func (c *Camera) ScrollZoom(cursor geom.Point, delta float64) bool {
	if delta == 0 || math.IsNaN(delta) {
		return false
	}
	now := c.now()
	if !c.lastScroll.IsZero() && now.Sub(c.lastScroll) < c.scrollCooldown {
		return false
	}
	c.lastScroll = now
	c.anim = nil

	focus := c.ScreenToWorld(cursor)
	c.zoom = c.clampZoom(c.zoom * math.Pow(1+c.scrollSpeed, delta))

	st := c.State()
	off := cursor.Sub(c.viewport.Center()).Scale(1 / st.Scale())
	c.center = focus.Sub(off)
	c.clamp()
	return true
}

// DragPan moves the view by a screen-space delta so the content follows the
// pointer. Panning cancels any animation.
func (c *Camera) DragPan(delta geom.Point) {
	c.anim = nil
	c.center = c.center.Sub(delta.Scale(1 / c.State().Scale()))
	c.clamp()
}

// Resize switches to a new viewport. The world aspect changes with it and
// the vertical center is remapped proportionally instead of resetting the
// view. Viewports without area are ignored.
func (c *Camera) Resize(viewport geom.Rect) {
	if viewport.Empty() {
		return
	}
	oldAspect := c.Aspect()
	c.viewport = viewport
	ratio := c.Aspect() / oldAspect

	c.center.Y *= ratio
	if a := c.anim; a != nil {
		a.StartCenter.Y *= ratio
		a.TargetCenter.Y *= ratio
		a.TargetCenter = clampCenter(a.TargetCenter, a.TargetZoom, c.Aspect())
	}
	c.clamp()
}

func (c *Camera) clamp() {
	c.zoom = c.clampZoom(c.zoom)
	c.center = clampCenter(c.center, c.zoom, c.Aspect())
}

func (c *Camera) clampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return MinZoom
	}
	return math.Max(MinZoom, math.Min(c.maxZoom, z))
}

// clampCenter keeps the visible rectangle, center ± half extent / zoom,
// inside [0,1]x[0,aspect].
func clampCenter(p geom.Point, zoom, aspect float64) geom.Point {
	hw := 0.5 / zoom
	hh := 0.5 * aspect / zoom
	if math.IsNaN(p.X) {
		p.X = 0.5
	}
	if math.IsNaN(p.Y) {
		p.Y = 0.5 * aspect
	}
	return geom.Point{
		X: math.Max(hw, math.Min(1-hw, p.X)),
		Y: math.Max(hh, math.Min(aspect-hh, p.Y)),
	}
}

// EaseOutCubic maps t in [0,1] to 1-(1-t)^3.
func EaseOutCubic(t float64) float64 {
	t = math.Max(0, math.Min(1, t))
	u := 1 - t
	return 1 - u*u*u
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
