package canvas

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/knowledgemap/pkg/knowledge/graph"
	"github.com/recera/knowledgemap/pkg/knowledge/interact"
	"github.com/recera/knowledgemap/pkg/knowledge/render"
	"github.com/recera/knowledgemap/pkg/renderer/html"
)

func pair() *graph.Store {
	return graph.New(graph.Document{
		Topics: []graph.RawTopic{
			{ID: "a", Label: "Alpha", Position: &graph.Point{X: 0, Y: 0}},
			{ID: "b", Label: "Beta", Position: &graph.Point{X: 400, Y: 0}},
		},
		Links: []graph.RawLink{{Source: "a", Target: "b"}},
	})
}

func newCanvas(opts ...Option) *Canvas {
	opts = append([]Option{WithRand(rand.New(rand.NewSource(1)))}, opts...)
	c := New(pair(), opts...)
	c.Resize(1000, 500)
	return c
}

func primary(x, y float64, target string) interact.PointerEvent {
	return interact.PointerEvent{PointerID: 1, Button: interact.ButtonPrimary, X: x, Y: y, Target: target}
}

func secondary(x, y float64, target string) interact.PointerEvent {
	return interact.PointerEvent{PointerID: 2, Button: interact.ButtonSecondary, X: x, Y: y, Target: target}
}

func TestResize_CentersOnce(t *testing.T) {
	c := New(pair())
	assert.Equal(t, ChangeViewport, c.Resize(1000, 500))
	assert.Equal(t, graph.Point{X: 500, Y: 250}, c.Viewport().Offset)

	assert.Zero(t, c.Resize(800, 600))
	assert.Equal(t, graph.Point{X: 500, Y: 250}, c.Viewport().Offset)
	w, h := c.Size()
	assert.Equal(t, 800.0, w)
	assert.Equal(t, 600.0, h)

	c.ResetView()
	assert.Equal(t, graph.Point{X: 400, Y: 300}, c.Viewport().Offset)
}

func TestClick_OpensDetail(t *testing.T) {
	c := newCanvas()

	assert.Zero(t, c.PointerDown(primary(500, 250, "a")))
	change := c.PointerUp(primary(500, 250, "a"))
	assert.True(t, change.Has(ChangeOverlay))
	assert.Equal(t, "a", c.ActiveID())

	topic, ok := c.ActiveTopic()
	require.True(t, ok)
	assert.Equal(t, "Alpha", topic.Label)
}

func TestClick_ReleaseElsewhereDoesNotOpen(t *testing.T) {
	c := newCanvas()

	c.PointerDown(primary(500, 250, "a"))
	assert.Zero(t, c.PointerUp(primary(900, 250, "b")))
	assert.Empty(t, c.ActiveID())

	c.PointerDown(primary(500, 250, "a"))
	c.PointerCancel(primary(500, 250, "a"))
	assert.Zero(t, c.PointerUp(primary(500, 250, "a")))
	assert.Empty(t, c.ActiveID())
}

func TestPan_NeverStartsOnNode(t *testing.T) {
	c := newCanvas()

	c.PointerDown(primary(500, 250, "a"))
	assert.Zero(t, c.PointerMove(primary(600, 300, "a")))
	assert.Equal(t, graph.Point{X: 500, Y: 250}, c.Viewport().Offset)
	assert.Equal(t, interact.CursorGrab, c.Cursor())
}

func TestPan_BareCanvas(t *testing.T) {
	c := newCanvas()

	assert.Equal(t, ChangeViewport, c.PointerDown(primary(100, 100, "")))
	assert.Equal(t, interact.CursorGrabbing, c.Cursor())

	assert.Equal(t, ChangeViewport, c.PointerMove(primary(150, 80, "")))
	assert.Equal(t, graph.Point{X: 550, Y: 230}, c.Viewport().Offset)

	assert.Equal(t, ChangeViewport, c.PointerUp(primary(150, 80, "")))
	assert.Equal(t, interact.CursorGrab, c.Cursor())
	assert.Empty(t, c.ActiveID())
}

func TestWheel(t *testing.T) {
	c := newCanvas()
	assert.Equal(t, ChangeViewport, c.Wheel(interact.WheelEvent{X: 500, Y: 250, DeltaY: -1}))
	assert.InDelta(t, 1.1, c.Viewport().Zoom, 1e-12)
	assert.Equal(t, graph.Point{X: 500, Y: 250}, c.Viewport().Offset)
}

func TestZoomBoundsOption(t *testing.T) {
	c := newCanvas(WithZoomBounds(1, 1))
	assert.Zero(t, c.Wheel(interact.WheelEvent{DeltaY: -1}))
	assert.Equal(t, 1.0, c.Viewport().Zoom)
}

func TestEscape_ClosesDetail(t *testing.T) {
	c := newCanvas()
	require.Equal(t, ChangeOverlay, c.Open("b"))
	assert.Zero(t, c.Open("b"))
	assert.Zero(t, c.Open("ghost"))

	assert.Zero(t, c.Key(interact.KeyEvent{Key: "Enter"}))
	assert.Equal(t, "b", c.ActiveID())

	assert.Equal(t, ChangeOverlay, c.Key(interact.KeyEvent{Key: interact.KeyEscape}))
	assert.Empty(t, c.ActiveID())
	assert.Zero(t, c.Key(interact.KeyEvent{Key: interact.KeyEscape}))
}

func TestAction(t *testing.T) {
	c := newCanvas()
	c.Click("a")
	assert.Zero(t, c.Action("stay"))
	assert.Equal(t, "a", c.ActiveID())
	assert.Equal(t, ChangeOverlay, c.Action("close"))
	assert.Empty(t, c.ActiveID())
}

func TestOnActiveChange(t *testing.T) {
	c := newCanvas()
	var seen []string
	cancel := c.OnActiveChange(func(id string) { seen = append(seen, id) })

	c.Open("a")
	c.Open("b")
	c.Close()
	cancel()
	c.Open("a")

	assert.Equal(t, []string{"a", "b", ""}, seen)
}

func TestDrag_MovesAndReportsStretch(t *testing.T) {
	var ops [][]render.StretchOp
	c := newCanvas(WithStretchHandler(func(o []render.StretchOp) { ops = append(ops, o) }))

	change := c.PointerDown(secondary(0, 0, "b"))
	assert.True(t, change.Has(ChangeDrag))
	assert.Equal(t, "b", c.DraggingID())
	assert.Equal(t, interact.CursorGrabbing, c.Cursor())

	change = c.PointerMove(secondary(200, 0, "b"))
	assert.True(t, change.Has(ChangeLayout))

	// b follows the pointer; a is pulled 45 along the over-long link
	b, _ := c.Store().Position("b")
	a, _ := c.Store().Position("a")
	assert.InDelta(t, 600, b.X, 1e-9)
	assert.InDelta(t, 45, a.X, 1e-9)

	nodes, links := c.Touched()
	assert.ElementsMatch(t, []string{"a", "b"}, nodes)
	assert.Equal(t, []string{"a-b-0"}, links)

	require.Len(t, ops, 1)
	assert.Equal(t, []render.StretchOp{{LinkID: "a-b-0", Ratio: 1}}, ops[0])
	assert.Equal(t, map[string]float64{"a-b-0": 1}, c.Stretch())

	change = c.PointerUp(secondary(200, 0, "b"))
	assert.True(t, change.Has(ChangeDrag))
	assert.False(t, change.Has(ChangeLayout))
	assert.Empty(t, c.DraggingID())
	assert.Len(t, ops, 1)

	// a secondary release never opens the detail
	assert.Empty(t, c.ActiveID())
}

func TestDrag_CancelRollsBack(t *testing.T) {
	var ops [][]render.StretchOp
	c := newCanvas(WithStretchHandler(func(o []render.StretchOp) { ops = append(ops, o) }))

	c.PointerDown(secondary(0, 0, "b"))
	c.PointerMove(secondary(200, 0, "b"))

	change := c.PointerCancel(secondary(200, 0, "b"))
	assert.True(t, change.Has(ChangeDrag|ChangeLayout))

	b, _ := c.Store().Position("b")
	a, _ := c.Store().Position("a")
	assert.Equal(t, graph.Point{X: 400, Y: 0}, b)
	assert.Equal(t, graph.Point{X: 0, Y: 0}, a)
	assert.Empty(t, c.Stretch())
	require.Len(t, ops, 2)
	assert.Equal(t, []render.StretchOp{{LinkID: "a-b-0", Clear: true}}, ops[1])
}

func TestDrag_EscapeAbortsBeforeClosing(t *testing.T) {
	c := newCanvas()
	c.Open("a")
	c.PointerDown(secondary(0, 0, "b"))
	c.PointerMove(secondary(50, 50, "b"))

	change := c.Key(interact.KeyEvent{Key: interact.KeyEscape})
	assert.True(t, change.Has(ChangeDrag))
	assert.Empty(t, c.DraggingID())
	b, _ := c.Store().Position("b")
	assert.Equal(t, graph.Point{X: 400, Y: 0}, b)
	assert.Equal(t, "a", c.ActiveID())

	// a click during a drag is ignored
	c.PointerDown(secondary(0, 0, "b"))
	assert.Zero(t, c.Click("b"))
	assert.Equal(t, ChangeDrag|ChangeViewport|ChangeLayout, c.Abort())
	assert.Zero(t, c.Abort())
}

func TestDrag_ScalesByZoom(t *testing.T) {
	c := newCanvas()
	c.Wheel(interact.WheelEvent{X: 500, Y: 250, DeltaY: -1})
	zoom := c.Viewport().Zoom

	c.PointerDown(secondary(0, 0, "b"))
	c.PointerMove(secondary(0, 110, "b"))
	b, _ := c.Store().Position("b")
	assert.InDelta(t, 110/zoom, b.Y, 1e-9)
}

type recorder struct{ nodes []string }

func (r *recorder) UpdateNodeVisual(id string) { r.nodes = append(r.nodes, id) }
func (r *recorder) UpdateLinkVisual(string)    {}

func TestVisualReceivesUpdates(t *testing.T) {
	rec := &recorder{}
	c := newCanvas(WithVisual(rec))
	c.PointerDown(secondary(0, 0, "b"))
	c.PointerMove(secondary(10, 0, "b"))
	assert.Contains(t, rec.nodes, "b")
}

func TestHitTestAndLocate(t *testing.T) {
	c := newCanvas()

	id, ok := c.HitTest(graph.Point{X: 10, Y: 10})
	assert.True(t, ok)
	assert.Equal(t, "a", id)

	_, ok = c.HitTest(graph.Point{X: 200, Y: 0})
	assert.False(t, ok)

	ev := c.Locate(primary(900, 250, ""))
	assert.Equal(t, "b", ev.Target)

	ev = c.Locate(primary(900, 250, "a"))
	assert.Equal(t, "a", ev.Target)
}

func TestFocus(t *testing.T) {
	c := newCanvas()
	assert.Equal(t, ChangeViewport, c.Focus("b"))
	assert.Equal(t, graph.Point{X: 100, Y: 250}, c.Viewport().Offset)
	assert.Zero(t, c.Focus("ghost"))
}

func TestRelax(t *testing.T) {
	store := graph.New(graph.Document{Topics: []graph.RawTopic{
		{ID: "a", Position: &graph.Point{}},
		{ID: "b", Position: &graph.Point{X: 10}},
	}})
	c := New(store, WithRand(rand.New(rand.NewSource(3))))
	change := c.Relax()
	assert.True(t, change.Has(ChangeLayout))

	a, _ := store.Position("a")
	b, _ := store.Position("b")
	assert.InDelta(t, 190, b.X-a.X, 1e-6)
}

func TestScene(t *testing.T) {
	c := newCanvas(WithHome("/"))
	c.Open("a")

	out, err := html.RenderToString(c.Scene())
	require.NoError(t, err)
	assert.Contains(t, out, `id="node-a"`)
	assert.Contains(t, out, `id="link-a-b-0"`)
	assert.Contains(t, out, "knowledge-node--active")
	assert.Contains(t, out, `aria-labelledby="topic-a"`)
	assert.Contains(t, out, `translate(500px, 250px) scale(1)`)
	assert.Contains(t, out, `href="/"`)

	c.Dispose()
}

func TestIdleOption(t *testing.T) {
	assert.False(t, newCanvas().SceneState().Still)

	c := newCanvas(WithIdle(false))
	assert.True(t, c.SceneState().Still)
	out, err := html.RenderToString(c.Scene())
	require.NoError(t, err)
	assert.Contains(t, out, `class="knowledge-map knowledge-map--still"`)
}
