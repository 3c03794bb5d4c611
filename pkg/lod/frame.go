package lod

import (
	"github.com/matzehuels/spaceview/pkg/camera"
	"github.com/matzehuels/spaceview/pkg/geom"
)

// Default frame thresholds, in screen pixels.
const (
	ExpandThresholdPx = 80.0
	PruneThresholdPx  = 20.0
	MinScreenPx       = 2.0

	BudgetIdle      = 8
	BudgetAnimating = 32
)

// FrameContext is everything a single frame needs to decide what to expand,
// prune, draw or hit. It is built once per frame from a camera snapshot so
// every pass in that frame agrees on the transform.
type FrameContext struct {
	Camera camera.State

	// Budget caps the number of expansions in this frame.
	Budget int

	ExpandPx    float64
	PrunePx     float64
	MinScreenPx float64
}

// NewFrameContext returns a context with default thresholds. The budget is
// larger while the camera animates so detail keeps up with a moving view.
func NewFrameContext(cam camera.State) FrameContext {
	budget := BudgetIdle
	if cam.Animating {
		budget = BudgetAnimating
	}
	return FrameContext{
		Camera:      cam,
		Budget:      budget,
		ExpandPx:    ExpandThresholdPx,
		PrunePx:     PruneThresholdPx,
		MinScreenPx: MinScreenPx,
	}
}

// Viewport returns the screen rectangle of the frame.
func (fc FrameContext) Viewport() geom.Rect { return fc.Camera.Viewport }

// Project maps a world rect to screen pixels.
func (fc FrameContext) Project(r geom.Rect) geom.Rect { return fc.Camera.WorldRectToScreen(r) }
