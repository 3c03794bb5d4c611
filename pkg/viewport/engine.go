// Package viewport turns a size tree and a camera into frames.
//
// [Render] and [HitTest] walk the same screen-space traversal: the root's
// children are projected from their world rects, and every expanded
// directory below them is squarified again in pixels inside its content
// rect. Because both share that geometry, the node reported under the
// pointer is always the topmost rect drawn there.
//
// [Engine] owns the trees, the camera and the frame loop. It is confined to
// a single goroutine; scan results reach it through [Engine.Apply].
package viewport

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spaceview/pkg/camera"
	"github.com/matzehuels/spaceview/pkg/errors"
	"github.com/matzehuels/spaceview/pkg/geom"
	"github.com/matzehuels/spaceview/pkg/lod"
	"github.com/matzehuels/spaceview/pkg/observability"
	"github.com/matzehuels/spaceview/pkg/scan"
	"github.com/matzehuels/spaceview/pkg/sizetree"
)

// DefaultPruneInterval is the number of frames between prune passes.
const DefaultPruneInterval = 60

// Config holds the engine's tunables.
type Config struct {
	Geometry Geometry

	ExpandPx    float64
	PrunePx     float64
	MinScreenPx float64

	BudgetIdle      int
	BudgetAnimating int

	// PruneInterval is the number of frames between prune passes. Zero
	// disables pruning.
	PruneInterval int

	// ShowFreeSpace adds the filesystem's free space to completed scans.
	ShowFreeSpace bool
}

// DefaultConfig returns the default tunables.
func DefaultConfig() Config {
	return Config{
		Geometry:        DefaultGeometry(),
		ExpandPx:        lod.ExpandThresholdPx,
		PrunePx:         lod.PruneThresholdPx,
		MinScreenPx:     lod.MinScreenPx,
		BudgetIdle:      lod.BudgetIdle,
		BudgetAnimating: lod.BudgetAnimating,
		PruneInterval:   DefaultPruneInterval,
		ShowFreeSpace:   true,
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default is log.Default() with a
// "viewport" prefix.
func WithLogger(l *log.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithConfig replaces the default tunables.
func WithConfig(c Config) Option { return func(e *Engine) { e.cfg = c } }

// WithCameraOptions passes options to the engine's camera.
func WithCameraOptions(opts ...camera.Option) Option {
	return func(e *Engine) { e.camOpts = append(e.camOpts, opts...) }
}

// Crumb is one entry of a breadcrumb trail.
type Crumb struct {
	Handle sizetree.Handle
	Name   string
	Size   uint64
	Depth  int
	World  geom.Rect
}

// ScanState is what the engine has learned from scan messages.
type ScanState struct {
	Scanning     bool
	Cancelled    bool
	FilesScanned uint64
	BytesScanned uint64
	Elapsed      time.Duration

	SessionID string
	TopFiles  []sizetree.FileEntry
	TimeRange scan.TimeRange
	FreeSpace uint64
}

// Stats describes the engine after the last frame.
type Stats struct {
	lod.Stats
	Frames    uint64
	DrawRects int
	TreeNodes int
}

// Engine drives the viewport.
type Engine struct {
	logger  *log.Logger
	cfg     Config
	camOpts []camera.Option

	cam    *camera.Camera
	size   *sizetree.Tree
	layout *lod.Tree

	dimExt    string
	frames    uint64
	lastDrawn int
	scan      ScanState

	disp *disposer
}

// New returns an engine for a viewport of the given size with no tree.
func New(vp geom.Rect, opts ...Option) *Engine {
	e := &Engine{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.Default().WithPrefix("viewport")
	}
	e.cam = camera.New(vp, e.camOpts...)
	e.disp = newDisposer()
	return e
}

// Replace makes t the displayed tree. The old trees are released in the
// background. The camera keeps its position unless the root name changes,
// which means a different path is being shown.
func (e *Engine) Replace(t *sizetree.Tree) {
	if t == nil {
		return
	}
	oldSize, oldLayout := e.size, e.layout
	if oldSize == nil || oldSize.Root().Name != t.Root().Name {
		e.cam.Reset()
	}
	e.size = t
	e.layout = lod.Build(t, e.cam.Aspect())

	if oldLayout != nil {
		e.disp.send(garbage{size: oldSize, layout: oldLayout})
	}
	observability.Viewport().OnReplace(t.Gen(), t.Len())
	e.logger.Debug("tree replaced", "gen", t.Gen(), "nodes", t.Len())
}

// Apply feeds one scan message to the engine. Snapshots replace the tree;
// a cancelled scan leaves the last snapshot in place.
func (e *Engine) Apply(msg scan.Message) {
	switch m := msg.(type) {
	case scan.Progress:
		e.scan.Scanning = true
		e.scan.FilesScanned = m.FilesScanned
		e.scan.BytesScanned = m.BytesScanned
		e.scan.Elapsed = m.Elapsed
	case scan.PartialSnapshot:
		e.scan.Scanning = true
		e.Replace(sizetree.Build(m.Root))
	case scan.Complete:
		var opts []sizetree.BuildOption
		if e.cfg.ShowFreeSpace && m.FreeSpace > 0 {
			opts = append(opts, sizetree.WithFreeSpace(m.FreeSpace))
		}
		e.Replace(sizetree.Build(m.Root, opts...))
		e.scan = ScanState{
			FilesScanned: e.size.Root().FileCount,
			BytesScanned: e.scan.BytesScanned,
			Elapsed:      m.Elapsed,
			SessionID:    m.SessionID,
			TopFiles:     m.TopFiles,
			TimeRange:    m.TimeRange,
			FreeSpace:    m.FreeSpace,
		}
	case scan.Cancelled:
		e.scan.Scanning = false
		e.scan.Cancelled = true
		e.scan.SessionID = m.SessionID
	}
}

// frameContext builds the context for the camera's current state.
func (e *Engine) frameContext() FrameContext {
	st := e.cam.State()
	fc := FrameContext{
		FrameContext: lod.FrameContext{
			Camera:      st,
			Budget:      e.cfg.BudgetIdle,
			ExpandPx:    e.cfg.ExpandPx,
			PrunePx:     e.cfg.PrunePx,
			MinScreenPx: e.cfg.MinScreenPx,
		},
		Geometry: e.cfg.Geometry,
	}
	if st.Animating {
		fc.Budget = e.cfg.BudgetAnimating
	}
	return fc
}

// Frame advances the camera by dt, expands what became large enough and
// returns the draw list. Every PruneInterval frames, directories that have
// become small or left the screen are collapsed, except those this frame
// still descended into.
func (e *Engine) Frame(dt time.Duration) []DrawRect {
	start := time.Now()
	e.cam.Tick(dt)
	if e.layout == nil {
		return nil
	}

	fc := e.frameContext()
	expanded := e.layout.ExpandVisible(fc.FrameContext)

	used := make(map[*lod.Node]struct{})
	rects := Render(fc, e.layout, e.size, RenderOptions{
		DimExt:  e.dimExt,
		Visited: func(n *lod.Node) { used[n] = struct{}{} },
	})

	e.frames++
	if e.cfg.PruneInterval > 0 && e.frames%uint64(e.cfg.PruneInterval) == 0 {
		pruned := e.layout.Prune(fc.FrameContext, func(n *lod.Node) bool {
			_, ok := used[n]
			return ok
		})
		if pruned > 0 {
			observability.Viewport().OnPrune(pruned)
			e.logger.Debug("pruned", "nodes", pruned)
		}
	}

	e.lastDrawn = len(rects)
	observability.Viewport().OnFrame(len(rects), expanded, time.Since(start))
	return rects
}

// Settle renders frames until the camera is at rest and a frame expands
// nothing, or maxFrames is reached, and returns the last draw list. It is
// meant for headless rendering where no user is waiting between frames.
func (e *Engine) Settle(maxFrames int) []DrawRect {
	var rects []DrawRect
	for range max(1, maxFrames) {
		var dt time.Duration
		if a, ok := e.cam.Animation(); ok {
			dt = a.Duration - a.Elapsed
		}
		before := e.Stats().Expansions
		rects = e.Frame(dt)
		if e.layout == nil || (!e.cam.IsAnimating() && e.Stats().Expansions == before) {
			break
		}
	}
	return rects
}

// NodeAt returns the node drawn topmost at screen point p.
func (e *Engine) NodeAt(p geom.Point) (sizetree.Handle, bool) {
	return HitTest(e.frameContext(), e.layout, e.size, p)
}

// ZoomTo animates the camera to fit the directory h. The root zooms out to
// the whole world. It returns false for files, stale handles and nodes that
// are not materialized.
func (e *Engine) ZoomTo(h sizetree.Handle) bool {
	if e.layout == nil {
		return false
	}
	if h == e.size.RootHandle() {
		e.zoomHome()
		return true
	}
	n := e.layout.Find(h)
	if n == nil || !n.HasChildren {
		return false
	}
	e.cam.SnapToRect(n.World)
	return true
}

// ZoomOut animates to the innermost directory around the view center that
// is smaller on screen than the whole viewport would show it zoomed out,
// or to the root when there is none.
func (e *Engine) ZoomOut() {
	if e.layout == nil {
		return
	}
	chain := e.layout.AncestorChain(e.cam.Center())
	limit := e.cam.Zoom() * (1 - 1e-9)
	for i := len(chain) - 1; i > 0; i-- {
		n := chain[i]
		if n.HasChildren && e.cam.FitZoom(n.World) < limit {
			e.cam.SnapToRect(n.World)
			return
		}
	}
	e.zoomHome()
}

func (e *Engine) zoomHome() {
	e.cam.SnapTo(e.cam.World().Center(), camera.MinZoom)
}

// AncestorChain returns the breadcrumbs from the root to the deepest
// materialized node under screen point p.
func (e *Engine) AncestorChain(p geom.Point) []Crumb {
	if e.layout == nil {
		return nil
	}
	return e.crumbs(e.layout.AncestorChain(e.cam.ScreenToWorld(p)))
}

// Breadcrumbs returns the ancestor chain at the center of the view.
func (e *Engine) Breadcrumbs() []Crumb {
	if e.layout == nil {
		return nil
	}
	return e.crumbs(e.layout.AncestorChain(e.cam.Center()))
}

func (e *Engine) crumbs(chain []*lod.Node) []Crumb {
	out := make([]Crumb, 0, len(chain))
	for _, n := range chain {
		sn, ok := e.size.Node(n.Handle)
		if !ok {
			continue
		}
		out = append(out, Crumb{Handle: n.Handle, Name: sn.Name, Size: sn.Size, Depth: n.Depth, World: n.World})
	}
	return out
}

// ScrollZoom zooms about the cursor. See [camera.Camera.ScrollZoom].
func (e *Engine) ScrollZoom(cursor geom.Point, delta float64) bool {
	return e.cam.ScrollZoom(cursor, delta)
}

// DragPan moves the view by a screen delta.
func (e *Engine) DragPan(delta geom.Point) { e.cam.DragPan(delta) }

// Resize changes the viewport. When the aspect ratio changes the layout is
// rebuilt for the new world rect.
func (e *Engine) Resize(vp geom.Rect) {
	if vp.Empty() {
		return
	}
	before := e.cam.Aspect()
	e.cam.Resize(vp)
	if e.size == nil || e.cam.Aspect() == before {
		return
	}
	old := e.layout
	e.layout = lod.Build(e.size, e.cam.Aspect())
	e.disp.send(garbage{layout: old})
}

// Node resolves h against the current tree.
func (e *Engine) Node(h sizetree.Handle) (*sizetree.Node, bool) {
	return e.size.Node(h)
}

// PathOf returns the filesystem path of h, or "" for a stale handle.
func (e *Engine) PathOf(h sizetree.Handle) string {
	if e.size == nil {
		return ""
	}
	return e.size.Path(h)
}

// SetDimFilter dims every file whose extension is not ext. An empty ext
// clears the filter and sizetree.NoExt selects files without one.
func (e *Engine) SetDimFilter(ext string) error {
	if ext == "" || ext == sizetree.NoExt {
		e.dimExt = ext
		return nil
	}
	if err := errors.ValidateExtension(ext); err != nil {
		return err
	}
	e.dimExt = NormalizeExt(ext)
	return nil
}

// DimFilter returns the active extension filter.
func (e *Engine) DimFilter() string { return e.dimExt }

// Camera returns the engine's camera.
func (e *Engine) Camera() *camera.Camera { return e.cam }

// Tree returns the displayed size tree, or nil.
func (e *Engine) Tree() *sizetree.Tree { return e.size }

// Layout returns the current layout tree, or nil.
func (e *Engine) Layout() *lod.Tree { return e.layout }

// ScanState returns what the engine knows about the running scan.
func (e *Engine) ScanState() ScanState { return e.scan }

// Stats reports the layout's materialization and frame counters.
func (e *Engine) Stats() Stats {
	s := Stats{Frames: e.frames, DrawRects: e.lastDrawn}
	if e.layout != nil {
		s.Stats = e.layout.Stats()
		s.TreeNodes = e.size.Len()
	}
	return s
}

// Close releases the current trees and waits for pending disposals.
func (e *Engine) Close() {
	if e.layout != nil {
		e.disp.send(garbage{size: e.size, layout: e.layout})
		e.size, e.layout = nil, nil
	}
	e.disp.close()
}
