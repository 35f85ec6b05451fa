package interact

import (
	"github.com/recera/knowledgemap/pkg/knowledge/graph"
	"github.com/recera/knowledgemap/pkg/knowledge/physics"
)

// StretchSink receives the stretch ratio of every over-long link after each
// layout change. An empty map means no link is stretched.
type StretchSink interface {
	ApplyStretch(ratios map[string]float64)
}

// StretchFunc adapts a function to StretchSink
type StretchFunc func(ratios map[string]float64)

func (f StretchFunc) ApplyStretch(ratios map[string]float64) { f(ratios) }

// Drag moves one topic with the pointer and lets the physics engine keep the
// rest of the layout readable. A session starts with a secondary press on a
// topic and ends with a commit (pointer up) or a rollback (pointer cancel).
type Drag struct {
	store  *graph.Store
	engine *physics.Engine
	sink   StretchSink

	active       bool
	topicID      string
	pointerID    int
	pointerStart graph.Point
	nodeStart    graph.Point
	zoom         float64
	snapshot     graph.Snapshot
}

// NewDrag creates a drag controller. sink may be nil.
func NewDrag(store *graph.Store, engine *physics.Engine, sink StretchSink) *Drag {
	return &Drag{store: store, engine: engine, sink: sink}
}

// Active reports whether a drag session is open
func (d *Drag) Active() bool { return d.active }

// TopicID returns the dragged topic, empty when idle
func (d *Drag) TopicID() string {
	if !d.active {
		return ""
	}
	return d.topicID
}

// PointerID returns the pointer that owns the session
func (d *Drag) PointerID() int { return d.pointerID }

// Begin opens a session for a secondary press on a topic. The zoom is
// captured here and used for the whole session.
func (d *Drag) Begin(ev PointerEvent, zoom float64) bool {
	if d.active || ev.Button != ButtonSecondary || !ev.OnNode() {
		return false
	}
	start, ok := d.store.Position(ev.Target)
	if !ok {
		return false
	}
	if zoom <= 0 {
		zoom = 1
	}

	d.active = true
	d.topicID = ev.Target
	d.pointerID = ev.PointerID
	d.pointerStart = ev.Point()
	d.nodeStart = start
	d.zoom = zoom
	d.snapshot = d.store.Snapshot()

	if debugLog != nil {
		debugLog("[Drag] begin", d.topicID, "pointer", d.pointerID)
	}
	return true
}

// Move places the dragged topic under the pointer, then pulls its
// neighbourhood and resolves collisions. It returns every id that moved.
func (d *Drag) Move(ev PointerEvent) (physics.IDSet, bool) {
	if !d.active || ev.PointerID != d.pointerID {
		return physics.IDSet{}, false
	}

	d.store.SetPosition(d.topicID, graph.Point{
		X: d.nodeStart.X + (ev.X-d.pointerStart.X)/d.zoom,
		Y: d.nodeStart.Y + (ev.Y-d.pointerStart.Y)/d.zoom,
	})
	d.engine.Refresh(d.topicID)

	moved := d.engine.Settle(d.topicID)
	d.publish()
	return moved, true
}

// End commits the session owned by ev's pointer
func (d *Drag) End(ev PointerEvent) bool {
	if !d.active || ev.PointerID != d.pointerID {
		return false
	}
	d.finish()
	d.publish()
	if debugLog != nil {
		debugLog("[Drag] commit", d.topicID)
	}
	return true
}

// Cancel rolls the session owned by ev's pointer back to the layout captured
// at Begin.
func (d *Drag) Cancel(ev PointerEvent) bool {
	if !d.active || ev.PointerID != d.pointerID {
		return false
	}
	d.Abort()
	return true
}

// Abort rolls back the open session whatever pointer owns it
func (d *Drag) Abort() {
	if !d.active {
		return
	}
	d.store.Restore(d.snapshot)
	d.finish()
	d.engine.RefreshAll()
	d.publish()
	if debugLog != nil {
		debugLog("[Drag] rollback", d.topicID)
	}
}

func (d *Drag) finish() {
	d.active = false
	d.snapshot = nil
}

func (d *Drag) publish() {
	if d.sink != nil {
		d.sink.ApplyStretch(d.engine.StretchRatios())
	}
}
