// Package canvas wires one knowledge map together: the store, the physics
// engine, both interaction controllers and the open detail overlay. Every
// front end drives a Canvas with input events and renders what it reports.
//
// A Canvas is not safe for concurrent use.
package canvas

import (
	"math"
	"math/rand"

	"github.com/recera/knowledgemap/pkg/components"
	"github.com/recera/knowledgemap/pkg/knowledge/graph"
	"github.com/recera/knowledgemap/pkg/knowledge/interact"
	"github.com/recera/knowledgemap/pkg/knowledge/physics"
	"github.com/recera/knowledgemap/pkg/knowledge/render"
	"github.com/recera/knowledgemap/pkg/reactive"
	"github.com/recera/knowledgemap/pkg/vango/vdom"
)

// Change reports what an event altered, so front ends repaint only that
type Change uint8

const (
	// ChangeViewport: offset, zoom or cursor
	ChangeViewport Change = 1 << iota
	// ChangeLayout: topic positions, link paths or stretch styling
	ChangeLayout
	// ChangeOverlay: the detail overlay opened, closed or switched topic
	ChangeOverlay
	// ChangeDrag: a drag session started or ended
	ChangeDrag
)

// Has reports whether every bit of f is set
func (c Change) Has(f Change) bool { return c&f == f && f != 0 }

// Option configures a Canvas
type Option func(*options)

type options struct {
	physics   physics.Config
	minZoom   float64
	maxZoom   float64
	visual    physics.Visual
	rand      *rand.Rand
	onStretch func([]render.StretchOp)
	home      string
	still     bool
}

// WithPhysics overrides the engine constants
func WithPhysics(cfg physics.Config) Option {
	return func(o *options) { o.physics = cfg }
}

// WithZoomBounds overrides the zoom clamp
func WithZoomBounds(min, max float64) Option {
	return func(o *options) { o.minZoom, o.maxZoom = min, max }
}

// WithVisual receives positional updates as the engine moves topics
func WithVisual(v physics.Visual) Option {
	return func(o *options) { o.visual = v }
}

// WithRand seeds the collision jitter
func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.rand = r }
}

// WithStretchHandler receives the style changes of stretched links
func WithStretchHandler(fn func([]render.StretchOp)) Option {
	return func(o *options) { o.onStretch = fn }
}

// WithHome adds a back link to the scene chrome
func WithHome(href string) Option {
	return func(o *options) { o.home = href }
}

// WithIdle switches the ambient drift of topics on or off
func WithIdle(on bool) Option {
	return func(o *options) { o.still = !on }
}

// press is a primary press on a topic that may become a click
type press struct {
	pointerID int
	topicID   string
}

// Canvas is one interactive knowledge map
type Canvas struct {
	store   *graph.Store
	engine  *physics.Engine
	pan     *interact.PanZoom
	drag    *interact.Drag
	stretch *render.StretchStyles
	dirty   render.DirtySet

	active      *reactive.State[string]
	activeTopic *reactive.Computed[graph.Topic]

	onStretch func([]render.StretchOp)
	home      string
	still     bool

	width, height float64
	sized         bool
	pending       *press

	touchedNodes []string
	touchedLinks []string
}

// New creates a canvas over store. The canvas owns the store from here on.
func New(store *graph.Store, opts ...Option) *Canvas {
	o := options{physics: physics.DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Canvas{
		store:     store,
		pan:       interact.NewPanZoom(),
		stretch:   render.NewStretchStyles(),
		active:    reactive.NewState(""),
		onStretch: o.onStretch,
		home:      o.home,
		still:     o.still,
	}

	var visual physics.Visual = &c.dirty
	if o.visual != nil {
		visual = render.Tee{&c.dirty, o.visual}
	}
	engineOpts := []physics.Option{physics.WithVisual(visual)}
	if o.rand != nil {
		engineOpts = append(engineOpts, physics.WithRand(o.rand))
	}
	c.engine = physics.NewEngine(store, o.physics, engineOpts...)
	c.drag = interact.NewDrag(store, c.engine, c)

	if o.minZoom > 0 || o.maxZoom > 0 {
		c.pan.SetZoomBounds(o.minZoom, o.maxZoom)
	}

	c.activeTopic = reactive.NewComputed(func() graph.Topic {
		t, _ := c.store.Topic(c.active.Get())
		return t
	}, c.active)

	// links authored over-long are styled from the first render
	c.stretch.Update(c.engine.StretchRatios())
	return c
}

// Store returns the topic store
func (c *Canvas) Store() *graph.Store { return c.store }

// Engine returns the physics engine
func (c *Canvas) Engine() *physics.Engine { return c.engine }

// Viewport returns the current offset and zoom
func (c *Canvas) Viewport() interact.Viewport { return c.pan.Viewport() }

// Cursor returns the viewport cursor
func (c *Canvas) Cursor() interact.Cursor {
	if c.drag.Active() {
		return interact.CursorGrabbing
	}
	return c.pan.Cursor()
}

// Size returns the last size passed to Resize
func (c *Canvas) Size() (width, height float64) { return c.width, c.height }

// DraggingID returns the dragged topic, empty when no drag is open
func (c *Canvas) DraggingID() string { return c.drag.TopicID() }

// ActiveID returns the topic shown in the detail overlay, empty when closed
func (c *Canvas) ActiveID() string { return c.active.Get() }

// ActiveTopic returns the topic shown in the detail overlay
func (c *Canvas) ActiveTopic() (graph.Topic, bool) {
	t := c.activeTopic.Get()
	return t, t.ID != ""
}

// OnActiveChange registers fn to run whenever the overlay opens, closes or
// switches topic. It returns a function that removes fn.
func (c *Canvas) OnActiveChange(fn func(id string)) (cancel func()) {
	return c.active.Subscribe(fn)
}

// Stretch returns the ratio of every stretched link
func (c *Canvas) Stretch() map[string]float64 { return c.stretch.Active() }

// Touched returns the topics and links moved by the last event
func (c *Canvas) Touched() (nodes, links []string) {
	return c.touchedNodes, c.touchedLinks
}

// ApplyStretch implements interact.StretchSink
func (c *Canvas) ApplyStretch(ratios map[string]float64) {
	ops := c.stretch.Update(ratios)
	if len(ops) > 0 && c.onStretch != nil {
		c.onStretch(ops)
	}
}

// Resize records the viewport size. The first call centers the world
// origin; later calls keep the current offset.
func (c *Canvas) Resize(width, height float64) Change {
	c.width, c.height = width, height
	if c.sized {
		return 0
	}
	c.sized = true
	c.pan.Center(width, height)
	return ChangeViewport
}

// ResetView returns to zoom 1 centered on the world origin
func (c *Canvas) ResetView() Change {
	c.pan.Reset(c.width, c.height)
	return ChangeViewport
}

// Focus centers the view on a topic without changing the zoom
func (c *Canvas) Focus(id string) Change {
	p, ok := c.store.Position(id)
	if !ok {
		return 0
	}
	c.pan.FocusWorld(p, c.width, c.height)
	return ChangeViewport
}

// PointerDown starts a drag (secondary on a topic), a pending click
// (primary on a topic) or a pan (primary on bare canvas).
func (c *Canvas) PointerDown(ev interact.PointerEvent) Change {
	c.begin()
	if c.drag.Begin(ev, c.pan.Zoom()) {
		c.pending = nil
		return c.end(ChangeDrag | ChangeViewport)
	}
	if ev.Button == interact.ButtonPrimary && ev.OnNode() {
		c.pending = &press{pointerID: ev.PointerID, topicID: ev.Target}
		return c.end(0)
	}
	if c.pan.PointerDown(ev) {
		c.pending = nil
		return c.end(ChangeViewport)
	}
	return c.end(0)
}

// PointerMove feeds the open drag or pan
func (c *Canvas) PointerMove(ev interact.PointerEvent) Change {
	c.begin()
	var change Change
	if _, ok := c.drag.Move(ev); ok {
		change |= ChangeLayout
	}
	if c.pan.PointerMove(ev) {
		change |= ChangeViewport
	}
	return c.end(change)
}

// PointerUp commits a drag, ends a pan, or opens the detail of a topic
// when the press and release landed on it.
func (c *Canvas) PointerUp(ev interact.PointerEvent) Change {
	c.begin()
	var change Change
	if c.drag.End(ev) {
		change |= ChangeDrag | ChangeViewport
	}
	if c.pan.PointerUp(ev) {
		change |= ChangeViewport
	}
	if p := c.pending; p != nil && p.pointerID == ev.PointerID {
		c.pending = nil
		if ev.Button == interact.ButtonPrimary && ev.Target == p.topicID {
			change |= c.Open(p.topicID)
		}
	}
	return c.end(change)
}

// PointerCancel rolls back a drag and ends a pan
func (c *Canvas) PointerCancel(ev interact.PointerEvent) Change {
	c.begin()
	var change Change
	if c.drag.Cancel(ev) {
		change |= ChangeDrag | ChangeViewport
	}
	if c.pan.PointerCancel(ev) {
		change |= ChangeViewport
	}
	if c.pending != nil && c.pending.pointerID == ev.PointerID {
		c.pending = nil
	}
	return c.end(change)
}

// Wheel zooms around the pointer
func (c *Canvas) Wheel(ev interact.WheelEvent) Change {
	if c.pan.Wheel(ev) {
		return ChangeViewport
	}
	return 0
}

// Key handles Escape: it rolls back an open drag, otherwise it closes the
// detail overlay.
func (c *Canvas) Key(ev interact.KeyEvent) Change {
	if ev.Key != interact.KeyEscape {
		return 0
	}
	c.begin()
	if c.drag.Active() {
		c.drag.Abort()
		return c.end(ChangeDrag | ChangeViewport)
	}
	return c.end(c.Close())
}

// Click opens the detail of a topic activated without a pointer, such as
// a keyboard press on its button.
func (c *Canvas) Click(topicID string) Change {
	if c.drag.Active() {
		return 0
	}
	return c.Open(topicID)
}

// Action handles a click routed by data-action
func (c *Canvas) Action(name string) Change {
	if name == components.ActionClose {
		return c.Close()
	}
	return 0
}

// Open shows the detail overlay of a topic
func (c *Canvas) Open(id string) Change {
	if !c.store.Has(id) || c.active.Get() == id {
		return 0
	}
	c.active.Set(id)
	return ChangeOverlay
}

// Close hides the detail overlay
func (c *Canvas) Close() Change {
	if c.active.Get() == "" {
		return 0
	}
	c.active.Set("")
	return ChangeOverlay
}

// Abort rolls back an open drag whatever pointer owns it
func (c *Canvas) Abort() Change {
	if !c.drag.Active() {
		return 0
	}
	c.begin()
	c.drag.Abort()
	return c.end(ChangeDrag | ChangeViewport)
}

// Relax resolves every overlap in the current layout
func (c *Canvas) Relax() Change {
	c.begin()
	c.engine.Relax()
	c.ApplyStretch(c.engine.StretchRatios())
	return c.end(0)
}

// HitTest returns the topic nearest to a world point within the node
// radius. Later topics are drawn on top and win ties.
func (c *Canvas) HitTest(world graph.Point) (string, bool) {
	best := ""
	bestDist := graph.NodeRadius
	for i := c.store.Len() - 1; i >= 0; i-- {
		p := c.store.PositionAt(i)
		d := math.Hypot(p.X-world.X, p.Y-world.Y)
		if d < bestDist || (best == "" && d == bestDist) {
			best, bestDist = c.store.At(i).ID, d
		}
	}
	return best, best != ""
}

// Locate fills in the target of an event that carries only coordinates
func (c *Canvas) Locate(ev interact.PointerEvent) interact.PointerEvent {
	if ev.Target != "" {
		return ev
	}
	if id, ok := c.HitTest(c.pan.ScreenToWorld(ev.Point())); ok {
		ev.Target = id
	}
	return ev
}

// SceneState captures what the scene of this canvas depends on
func (c *Canvas) SceneState() render.SceneState {
	return render.SceneState{
		Store:      c.store,
		Viewport:   c.pan.Viewport(),
		Cursor:     c.Cursor(),
		ActiveID:   c.active.Get(),
		DraggingID: c.drag.TopicID(),
		Stretch:    c.stretch.Active(),
		HomeHref:   c.home,
		Still:      c.still,
	}
}

// Scene renders the current state of the map
func (c *Canvas) Scene() *vdom.VNode {
	return render.Scene(c.SceneState())
}

// Dispose releases the derived state. The canvas must not be used after.
func (c *Canvas) Dispose() {
	c.activeTopic.Dispose()
}

func (c *Canvas) begin() {
	c.dirty.Drain()
}

// end folds recorded layout updates into change
func (c *Canvas) end(change Change) Change {
	c.touchedNodes, c.touchedLinks = c.dirty.Drain()
	if len(c.touchedNodes) > 0 || len(c.touchedLinks) > 0 {
		change |= ChangeLayout
	}
	return change
}
