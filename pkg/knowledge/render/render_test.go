package render

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/knowledgemap/pkg/knowledge/graph"
	"github.com/recera/knowledgemap/pkg/knowledge/interact"
	"github.com/recera/knowledgemap/pkg/knowledge/physics"
	"github.com/recera/knowledgemap/pkg/renderer/html"
	"github.com/recera/knowledgemap/pkg/vango/vdom"
)

func TestLinkPathData_SingleLane(t *testing.T) {
	link := graph.Link{ID: "a-b-0", Source: "a", Target: "b", LaneCount: 1}
	d := LinkPathData(link, graph.Point{X: 0, Y: 0}, graph.Point{X: 100, Y: -50.5})
	assert.Equal(t, "M 4000 4000 L 4100 3949.5", d)
}

func TestLinkPathData_Lanes(t *testing.T) {
	src := graph.Point{X: 0, Y: 0}
	dst := graph.Point{X: 100, Y: 0}

	// the normal of a link pointing along +x is +y
	tests := []struct {
		index, count int
		want         string
	}{
		{0, 2, "M 4000 3991 L 4100 3991"},
		{1, 2, "M 4000 4009 L 4100 4009"},
		{0, 3, "M 4000 3982 L 4100 3982"},
		{1, 3, "M 4000 4000 L 4100 4000"},
		{2, 3, "M 4000 4018 L 4100 4018"},
	}
	for _, tt := range tests {
		link := graph.Link{LaneIndex: tt.index, LaneCount: tt.count}
		assert.Equal(t, tt.want, LinkPathData(link, src, dst))
	}
}

func TestLinkPathData_CoincidentEndpoints(t *testing.T) {
	link := graph.Link{LaneIndex: 1, LaneCount: 2}
	d := LinkPathData(link, graph.Point{X: 5, Y: 5}, graph.Point{X: 5, Y: 5})
	assert.Equal(t, "M 4005 4005 L 4005 4005", d)
}

func TestPaths(t *testing.T) {
	store := graph.New(graph.Document{
		Topics: []graph.RawTopic{
			{ID: "a", Position: &graph.Point{}},
			{ID: "b", Position: &graph.Point{X: 10}},
		},
		Links: []graph.RawLink{{Source: "a", Target: "b"}, {Source: "b", Target: "a"}},
	})

	paths := Paths(store)
	require.Len(t, paths, 2)
	assert.Equal(t, "a-b-0", paths[0].ID)
	assert.Equal(t, "b-a-1", paths[1].ID)
	assert.NotEqual(t, paths[0].D, paths[1].D)
}

func TestIdlePhase(t *testing.T) {
	// "ab": (0*31+97)%1024 = 97, then (97*31+98)%1024 = 3105%1024 = 33
	assert.InDelta(t, 0.3, IdlePhase("ab"), 1e-12)
	assert.Equal(t, 0.0, IdlePhase(""))
	assert.Equal(t, "0.3s", IdleDelay("ab"))

	for _, id := range []string{"go", "wasm", "knowledge-graph", "日本", "🙂"} {
		p := IdlePhase(id)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.Less(t, p, 1.0)
		assert.Equal(t, p, IdlePhase(id))
	}
}

func TestIdleOffset(t *testing.T) {
	assert.Equal(t, graph.Point{}, IdleOffset("go", 12.5, true))

	for ts := 0.0; ts < 30; ts += 0.7 {
		off := IdleOffset("go", ts, false)
		assert.LessOrEqual(t, math.Abs(off.X), 6.0)
		assert.LessOrEqual(t, math.Abs(off.Y), 4.0)
	}

	phase := IdlePhase("ab") * 2 * math.Pi
	off := IdleOffset("ab", 0, false)
	assert.InDelta(t, math.Sin(phase)*6, off.X, 1e-12)
	assert.InDelta(t, math.Cos(phase)*4, off.Y, 1e-12)
	assert.Equal(t, "-1.50px", FormatPx(-1.5))
}

func TestIdleStyle(t *testing.T) {
	base := NodeStyle("a", graph.Point{X: 10, Y: 20})
	style := IdleStyle(base, graph.Point{X: 1.5, Y: -2})
	assert.Equal(t, base+"; --idle-x: 1.50px; --idle-y: -2.00px", style)
	assert.Contains(t, style, "left: 10px; top: 20px;")

	// a still topic carries explicit zeros
	assert.Equal(t, base+"; --idle-x: 0.00px; --idle-y: 0.00px", IdleStyle(base, graph.Point{}))
}

func TestStretchStyles(t *testing.T) {
	s := NewStretchStyles()

	ops := s.Update(map[string]float64{"b": 0.5, "a": 0.25})
	assert.Equal(t, []StretchOp{{LinkID: "a", Ratio: 0.25}, {LinkID: "b", Ratio: 0.5}}, ops)
	assert.Equal(t, "0.250", ops[0].Value())

	ops = s.Update(map[string]float64{"b": 0.5001, "c": 1})
	assert.Equal(t, []StretchOp{{LinkID: "a", Clear: true}, {LinkID: "c", Ratio: 1}}, ops)

	ops = s.Update(map[string]float64{})
	assert.Equal(t, []StretchOp{{LinkID: "b", Clear: true}, {LinkID: "c", Clear: true}}, ops)
	assert.Empty(t, s.Active())
	assert.Empty(t, s.Update(nil))
}

func TestDirtySetAndTee(t *testing.T) {
	var a, b DirtySet
	var v physics.Visual = Tee{&a, &b}

	v.UpdateNodeVisual("x")
	v.UpdateLinkVisual("x-y-0")
	v.UpdateNodeVisual("x")
	assert.False(t, a.Empty())

	nodes, links := a.Drain()
	assert.Equal(t, []string{"x"}, nodes)
	assert.Equal(t, []string{"x-y-0"}, links)
	assert.True(t, a.Empty())

	nodes, _ = b.Drain()
	assert.Equal(t, []string{"x"}, nodes)
}

func sceneStore() *graph.Store {
	return graph.New(graph.Document{
		Topics: []graph.RawTopic{
			{ID: "go", Label: "Go", Position: &graph.Point{X: 10, Y: 20},
				Detail: &graph.RawDetail{
					Overview:  "A <small> language",
					DeepDives: []string{"Concurrency"},
					Resources: []graph.Resource{{Label: "Tour", Href: "https://go.dev/tour"}},
				}},
			{ID: "wasm", Label: "WebAssembly", Position: &graph.Point{X: 600, Y: 20}},
		},
		Links: []graph.RawLink{{Source: "go", Target: "wasm"}},
	})
}

func TestScene_Structure(t *testing.T) {
	store := sceneStore()
	scene := Scene(SceneState{
		Store:    store,
		Viewport: interact.Viewport{Offset: graph.Point{X: 400, Y: 300}, Zoom: 1.5},
		Cursor:   interact.CursorGrabbing,
		Stretch:  map[string]float64{"go-wasm-0": 0.8},
	})

	out, err := html.RenderToString(scene)
	require.NoError(t, err)

	assert.Contains(t, out, `transform: translate(400px, 300px) scale(1.5); cursor: grabbing`)
	assert.Contains(t, out, `viewBox="0 0 8000 8000"`)
	assert.Contains(t, out, `style="left: -4000px; top: -4000px"`)
	assert.Contains(t, out, `d="M 4010 4020 L 4600 4020"`)
	assert.Contains(t, out, `class="knowledge-link knowledge-link--stretched"`)
	assert.Contains(t, out, `style="--stretch: 0.800"`)
	assert.Contains(t, out, `data-topic="go"`)
	assert.Contains(t, out, `left: 10px; top: 20px; --idle-delay: `)
	assert.NotContains(t, out, "knowledge-modal")
	assert.NotContains(t, out, "knowledge-map__home")

	node, _, ok := vdom.Find(scene, NodeElementID("wasm"))
	require.True(t, ok)
	class, _ := node.Attr("class")
	assert.Equal(t, ClassNode, class)
}

func TestScene_ActiveAndDragging(t *testing.T) {
	store := sceneStore()
	scene := Scene(SceneState{
		Store:      store,
		Viewport:   interact.Viewport{Zoom: 1},
		ActiveID:   "go",
		DraggingID: "wasm",
		HomeHref:   "/",
	})

	root, _ := scene.Attr("class")
	assert.Equal(t, "knowledge-map "+ClassMapDragging, root)

	node, _, _ := vdom.Find(scene, NodeElementID("go"))
	class, _ := node.Attr("class")
	assert.Equal(t, "knowledge-node knowledge-node--active", class)
	node, _, _ = vdom.Find(scene, NodeElementID("wasm"))
	class, _ = node.Attr("class")
	assert.Equal(t, "knowledge-node knowledge-node--dragging", class)

	out, err := html.RenderToString(scene)
	require.NoError(t, err)
	assert.Contains(t, out, `aria-labelledby="topic-go"`)
	assert.Contains(t, out, `<h3 id="topic-go">Go</h3>`)
	assert.Contains(t, out, `A &lt;small&gt; language`)
	assert.Contains(t, out, `<li>Concurrency</li>`)
	assert.Contains(t, out, `href="https://go.dev/tour"`)
	assert.Contains(t, out, `rel="noreferrer"`)
	assert.True(t, strings.Contains(out, `href="/"`))
}

func TestScene_UnknownActiveHasNoOverlay(t *testing.T) {
	scene := Scene(SceneState{Store: sceneStore(), ActiveID: "ghost", Viewport: interact.Viewport{Zoom: 1}})
	out, err := html.RenderToString(scene)
	require.NoError(t, err)
	assert.NotContains(t, out, "knowledge-modal")
}

func TestScene_DiffAfterMove(t *testing.T) {
	store := sceneStore()
	state := SceneState{Store: store, Viewport: interact.Viewport{Zoom: 1}}
	before := Scene(state)

	store.SetPosition("wasm", graph.Point{X: 300, Y: 20})
	after := Scene(state)

	patches := vdom.Diff(before, after)
	keys := map[string]int{}
	for _, p := range patches {
		require.Equal(t, vdom.OpSetAttribute, p.Op)
		keys[p.Key]++
	}
	assert.Equal(t, map[string]int{"d": 1, "style": 1}, keys)

	applied, err := vdom.Apply(before, patches)
	require.NoError(t, err)
	assert.Empty(t, vdom.Diff(applied, after))
}

func TestStylesheet_CoversSceneClasses(t *testing.T) {
	for _, class := range []string{
		ClassNode, ClassNodeActive, ClassNodeDragging,
		ClassLink, ClassLinkStretched, ClassMapDragging, ClassMapScripted, ClassMapStill,
		"knowledge-map__canvas", "knowledge-modal__overlay", "knowledge-modal",
	} {
		assert.True(t, Stylesheet.Has(class), class)
	}
}
