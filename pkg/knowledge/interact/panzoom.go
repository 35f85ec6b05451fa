package interact

import (
	"fmt"
	"math"

	"github.com/recera/knowledgemap/pkg/knowledge/graph"
)

const (
	MinZoom       = 0.5
	MaxZoom       = 2.4
	ZoomInFactor  = 1.1
	ZoomOutFactor = 0.9
)

// Cursor is the CSS cursor the viewport should show
type Cursor string

const (
	CursorGrab     Cursor = "grab"
	CursorGrabbing Cursor = "grabbing"
)

// Viewport maps world coordinates to the screen:
// screen = world*Zoom + Offset.
type Viewport struct {
	Offset graph.Point `json:"offset"`
	Zoom   float64     `json:"zoom"`
}

// Transform renders the viewport as a CSS transform
func (v Viewport) Transform() string {
	return fmt.Sprintf("translate(%gpx, %gpx) scale(%g)", v.Offset.X, v.Offset.Y, v.Zoom)
}

// PanZoom owns the viewport offset and zoom
type PanZoom struct {
	view      Viewport
	minZoom   float64
	maxZoom   float64
	panning   bool
	pointerID int
	origin    graph.Point
}

// NewPanZoom creates a controller at zoom 1 with a zero offset
func NewPanZoom() *PanZoom {
	return &PanZoom{
		view:    Viewport{Zoom: 1},
		minZoom: MinZoom,
		maxZoom: MaxZoom,
	}
}

// SetZoomBounds overrides the zoom clamp. Invalid bounds are ignored.
func (p *PanZoom) SetZoomBounds(min, max float64) {
	if min <= 0 || max < min {
		return
	}
	p.minZoom, p.maxZoom = min, max
	p.view.Zoom = math.Min(math.Max(p.view.Zoom, min), max)
}

// Center puts the world origin in the middle of a width x height viewport
func (p *PanZoom) Center(width, height float64) {
	p.view.Offset = graph.Point{X: width / 2, Y: height / 2}
}

// Reset returns to zoom 1 centered on the world origin and drops any pan
func (p *PanZoom) Reset(width, height float64) {
	p.view.Zoom = math.Min(math.Max(1, p.minZoom), p.maxZoom)
	p.panning = false
	p.Center(width, height)
}

func (p *PanZoom) Viewport() Viewport { return p.view }
func (p *PanZoom) Zoom() float64      { return p.view.Zoom }
func (p *PanZoom) Panning() bool      { return p.panning }

// Cursor reports grabbing while a pan is in progress
func (p *PanZoom) Cursor() Cursor {
	if p.panning {
		return CursorGrabbing
	}
	return CursorGrab
}

// PointerDown starts a pan for a primary press on bare canvas.
// It reports whether a pan started.
func (p *PanZoom) PointerDown(ev PointerEvent) bool {
	if ev.Button != ButtonPrimary || ev.OnNode() || p.panning {
		return false
	}
	p.panning = true
	p.pointerID = ev.PointerID
	p.origin = graph.Point{X: ev.X - p.view.Offset.X, Y: ev.Y - p.view.Offset.Y}
	return true
}

// PointerMove follows the panning pointer and reports whether the offset changed
func (p *PanZoom) PointerMove(ev PointerEvent) bool {
	if !p.panning || ev.PointerID != p.pointerID {
		return false
	}
	next := graph.Point{X: ev.X - p.origin.X, Y: ev.Y - p.origin.Y}
	if next == p.view.Offset {
		return false
	}
	p.view.Offset = next
	return true
}

// PointerUp ends the pan started by the same pointer
func (p *PanZoom) PointerUp(ev PointerEvent) bool {
	if !p.panning || ev.PointerID != p.pointerID {
		return false
	}
	p.panning = false
	return true
}

// PointerCancel behaves like PointerUp
func (p *PanZoom) PointerCancel(ev PointerEvent) bool {
	return p.PointerUp(ev)
}

// Wheel zooms out for a positive deltaY and in otherwise, keeping the world
// point under the pointer fixed on screen.
func (p *PanZoom) Wheel(ev WheelEvent) bool {
	factor := ZoomInFactor
	if ev.DeltaY > 0 {
		factor = ZoomOutFactor
	}
	return p.ZoomAt(graph.Point{X: ev.X, Y: ev.Y}, factor)
}

// ZoomAt scales the zoom by factor around a screen point. It reports false
// when the clamped zoom equals the current one.
func (p *PanZoom) ZoomAt(screen graph.Point, factor float64) bool {
	zoom := p.view.Zoom
	next := math.Min(math.Max(zoom*factor, p.minZoom), p.maxZoom)
	if next == zoom {
		return false
	}
	world := p.ScreenToWorld(screen)
	p.view.Zoom = next
	p.view.Offset = graph.Point{
		X: screen.X - world.X*next,
		Y: screen.Y - world.Y*next,
	}
	if debugLog != nil {
		debugLog("[PanZoom] zoom", zoom, "->", next)
	}
	return true
}

// PanBy shifts the offset by a screen delta
func (p *PanZoom) PanBy(dx, dy float64) {
	p.view.Offset.X += dx
	p.view.Offset.Y += dy
}

// FocusWorld moves the viewport so that world sits at the center of a
// width x height screen, keeping the zoom.
func (p *PanZoom) FocusWorld(world graph.Point, width, height float64) {
	p.view.Offset = graph.Point{
		X: width/2 - world.X*p.view.Zoom,
		Y: height/2 - world.Y*p.view.Zoom,
	}
}

// ScreenToWorld converts a viewport-relative point to world coordinates
func (p *PanZoom) ScreenToWorld(s graph.Point) graph.Point {
	return graph.Point{
		X: (s.X - p.view.Offset.X) / p.view.Zoom,
		Y: (s.Y - p.view.Offset.Y) / p.view.Zoom,
	}
}

// WorldToScreen converts a world point to viewport-relative coordinates
func (p *PanZoom) WorldToScreen(w graph.Point) graph.Point {
	return graph.Point{
		X: w.X*p.view.Zoom + p.view.Offset.X,
		Y: w.Y*p.view.Zoom + p.view.Offset.Y,
	}
}
