package physics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/knowledgemap/pkg/knowledge/graph"
)

const tolerance = 1e-6

type recorder struct {
	nodes []string
	links []string
}

func (r *recorder) UpdateNodeVisual(id string) { r.nodes = append(r.nodes, id) }
func (r *recorder) UpdateLinkVisual(id string) { r.links = append(r.links, id) }

type placed struct {
	id   string
	x, y float64
}

func storeOf(nodes []placed, links ...[2]string) *graph.Store {
	doc := graph.Document{}
	for _, n := range nodes {
		doc.Topics = append(doc.Topics, graph.RawTopic{ID: n.id, Label: n.id, Position: &graph.Point{X: n.x, Y: n.y}})
	}
	for _, l := range links {
		doc.Links = append(doc.Links, graph.RawLink{Source: l[0], Target: l[1]})
	}
	return graph.New(doc)
}

func newTestEngine(s *graph.Store, opts ...Option) *Engine {
	opts = append([]Option{WithRand(rand.New(rand.NewSource(7)))}, opts...)
	return NewEngine(s, Config{}, opts...)
}

func pos(t *testing.T, s *graph.Store, id string) graph.Point {
	t.Helper()
	p, ok := s.Position(id)
	require.True(t, ok, "unknown topic %s", id)
	return p
}

func dist(a, b graph.Point) float64 { return math.Hypot(a.X-b.X, a.Y-b.Y) }

func assertNoOverlap(t *testing.T, s *graph.Store) {
	t.Helper()
	for i := 0; i < s.Len(); i++ {
		for j := i + 1; j < s.Len(); j++ {
			d := dist(s.PositionAt(i), s.PositionAt(j))
			assert.GreaterOrEqual(t, d, MinNodeDistance-tolerance,
				"%s and %s overlap", s.At(i).ID, s.At(j).ID)
		}
	}
}

func assertInBounds(t *testing.T, s *graph.Store) {
	t.Helper()
	for i := 0; i < s.Len(); i++ {
		p := s.PositionAt(i)
		assert.LessOrEqual(t, math.Abs(p.X), graph.CanvasExtent)
		assert.LessOrEqual(t, math.Abs(p.Y), graph.CanvasExtent)
	}
}

func TestPullConnected_TwoTopics(t *testing.T) {
	s := storeOf([]placed{{"a", 0, 0}, {"b", 500, 0}}, [2]string{"a", "b"})
	rec := &recorder{}
	e := newTestEngine(s, WithVisual(rec))

	moved := e.PullConnected("a")

	assert.Equal(t, []string{"b"}, moved.IDs())
	b := pos(t, s, "b")
	assert.InDelta(t, 464.0, b.X, tolerance)
	assert.InDelta(t, 0.0, b.Y, tolerance)
	assert.Equal(t, graph.Point{}, pos(t, s, "a"))

	assert.Equal(t, []string{"b"}, rec.nodes)
	assert.Equal(t, []string{"a-b-0"}, rec.links)
}

func TestPullConnected_SaturatesAtStretchBand(t *testing.T) {
	s := storeOf([]placed{{"a", 0, 0}, {"b", 0, 1000}}, [2]string{"b", "a"})
	e := newTestEngine(s)

	e.PullConnected("a")

	assert.InDelta(t, 1000-StretchBand*FollowFactor, pos(t, s, "b").Y, tolerance)
}

func TestPullConnected_ConvergesWithoutOvershoot(t *testing.T) {
	s := storeOf([]placed{{"a", 0, 0}, {"b", 900, 0}}, [2]string{"a", "b"})
	e := newTestEngine(s)

	prev := dist(pos(t, s, "a"), pos(t, s, "b"))
	require.Greater(t, prev, MaxLinkLength+StretchBand)
	for i := 0; i < 200; i++ {
		e.PullConnected("a")
		d := dist(pos(t, s, "a"), pos(t, s, "b"))
		assert.LessOrEqual(t, d, prev)
		assert.GreaterOrEqual(t, d, MaxLinkLength)
		prev = d
	}
	assert.InDelta(t, MaxLinkLength, prev, 0.01)
	assert.Equal(t, graph.Point{}, pos(t, s, "a"))
}

func TestPullConnected_Transitive(t *testing.T) {
	s := storeOf(
		[]placed{{"a", 0, 0}, {"b", 500, 0}, {"c", 1000, 0}, {"d", 100, 100}},
		[2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"a", "d"},
	)
	e := newTestEngine(s)

	moved := e.PullConnected("a")

	assert.Equal(t, []string{"b", "c"}, moved.IDs())
	assert.InDelta(t, 464.0, pos(t, s, "b").X, tolerance)
	assert.InDelta(t, 955.0, pos(t, s, "c").X, tolerance)
	assert.Equal(t, graph.Point{X: 100, Y: 100}, pos(t, s, "d"))
}

func TestPullConnected_CycleTerminates(t *testing.T) {
	s := storeOf(
		[]placed{{"a", 0, 0}, {"b", 1500, 0}, {"c", 0, 1500}},
		[2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "a"}, [2]string{"a", "a"},
	)
	e := newTestEngine(s)

	moved := e.PullConnected("a")
	assert.ElementsMatch(t, []string{"b", "c"}, moved.IDs())
	assertInBounds(t, s)
}

func TestPullConnected_UnknownRoot(t *testing.T) {
	s := storeOf([]placed{{"a", 0, 0}})
	assert.Zero(t, newTestEngine(s).PullConnected("ghost").Len())
}

func TestPullConnected_Idempotent(t *testing.T) {
	s := storeOf([]placed{{"a", 0, 0}, {"b", 300, 0}}, [2]string{"a", "b"})
	before := s.Snapshot()

	moved := newTestEngine(s).PullConnected("a")

	assert.Zero(t, moved.Len())
	assert.Equal(t, before, s.Snapshot())
}

func TestResolveCollisions_NoOverlapAfter(t *testing.T) {
	tests := []struct {
		name  string
		nodes []placed
	}{
		{"row", []placed{{"a", 0, 0}, {"b", 50, 0}, {"c", 150, 0}, {"d", 1000, 1000}}},
		{"cluster", []placed{{"a", 0, 0}, {"b", 100, 30}, {"c", -80, 60}, {"d", 20, -120}, {"e", 150, 150}}},
		{"pair", []placed{{"a", 0, 0}, {"b", 0, 10}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := storeOf(tt.nodes)
			e := newTestEngine(s)

			moved := e.ResolveCollisions(NewIDSet("a"))

			assert.NotZero(t, moved.Len())
			assertNoOverlap(t, s)
			assertInBounds(t, s)
		})
	}
}

func TestResolveCollisions_SeedHoldsWhileScanned(t *testing.T) {
	s := storeOf([]placed{{"a", 0, 0}, {"b", 100, 0}})
	e := newTestEngine(s, WithVisual(&recorder{}))

	e.ResolveCollisions(NewIDSet("a"))

	a, b := pos(t, s, "a"), pos(t, s, "b")
	assert.InDelta(t, MinNodeDistance, dist(a, b), tolerance)
	// a yields only once b is scanned, so b ends up further from the origin
	assert.Greater(t, math.Abs(b.X), math.Abs(a.X))
}

func TestResolveCollisions_GridDrop(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for trial := 0; trial < 25; trial++ {
		var nodes []placed
		for i := 0; i < 5; i++ {
			for j := 0; j < 5; j++ {
				nodes = append(nodes, placed{id: string(rune('a'+i)) + string(rune('a'+j)), x: float64(i) * 250, y: float64(j) * 250})
			}
		}
		nodes[0].x, nodes[0].y = r.Float64()*1000, r.Float64()*1000
		s := storeOf(nodes)

		newTestEngine(s).ResolveCollisions(NewIDSet(nodes[0].id))

		assertNoOverlap(t, s)
	}
}

func TestResolveCollisions_ClampsAtWall(t *testing.T) {
	s := storeOf([]placed{{"a", 3950, 0}, {"b", graph.CanvasExtent, 0}})
	e := newTestEngine(s)

	e.ResolveCollisions(NewIDSet("a"))

	assertInBounds(t, s)
	assert.Equal(t, graph.CanvasExtent, pos(t, s, "b").X)
	assertNoOverlap(t, s)
}

func TestResolveCollisions_CoincidentJitter(t *testing.T) {
	s := storeOf([]placed{{"a", 0, 0}, {"b", 0, 0}})
	e := newTestEngine(s)

	moved := e.ResolveCollisions(NewIDSet("a"))

	assert.True(t, moved.Has("b"))
	assert.NotEqual(t, pos(t, s, "a"), pos(t, s, "b"))
	assertNoOverlap(t, s)
}

func TestResolveCollisions_Idempotent(t *testing.T) {
	s := storeOf([]placed{{"a", 0, 0}, {"b", 300, 0}, {"c", 0, 300}})
	before := s.Snapshot()

	moved := newTestEngine(s).ResolveCollisions(NewIDSet("a", "b"))

	assert.Zero(t, moved.Len())
	assert.Equal(t, before, s.Snapshot())
}

func TestResolveCollisions_BudgetStopsEarly(t *testing.T) {
	s := storeOf([]placed{{"a", 0, 0}, {"b", 50, 0}, {"c", 150, 0}})
	var logged bool
	SetDebugLog(func(args ...interface{}) { logged = true })
	defer SetDebugLog(nil)

	e := NewEngine(s, Config{CollisionBudget: 1}, WithRand(rand.New(rand.NewSource(1))))
	e.ResolveCollisions(NewIDSet("a"))

	assert.True(t, logged)
	assertInBounds(t, s)
}

func TestResolveCollisions_EmptySeeds(t *testing.T) {
	s := storeOf([]placed{{"a", 0, 0}, {"b", 1, 0}})
	assert.Zero(t, newTestEngine(s).ResolveCollisions(NewIDSet()).Len())
}

func TestRelax(t *testing.T) {
	s := storeOf([]placed{{"a", 0, 0}, {"b", 100, 0}, {"c", 0, 100}, {"d", 2000, 2000}})
	e := newTestEngine(s)
	require.Equal(t, 3, Overlaps(s, Config{}))

	moved := e.Relax()

	assert.ElementsMatch(t, []string{"a", "b", "c"}, moved.IDs())
	assert.Zero(t, Overlaps(s, Config{}))
	assert.Equal(t, graph.Point{X: 2000, Y: 2000}, pos(t, s, "d"))
}

func TestSettle(t *testing.T) {
	s := storeOf(
		[]placed{{"a", 0, 0}, {"b", 500, 0}, {"c", 470, 20}},
		[2]string{"a", "b"},
	)
	e := newTestEngine(s)

	moved := e.Settle("a")

	assert.Equal(t, "b", moved.IDs()[0])
	assert.True(t, moved.Has("a"))
	assert.True(t, moved.Has("c"))
	assertNoOverlap(t, s)
}

func TestStretchRatios(t *testing.T) {
	s := storeOf(
		[]placed{{"a", 0, 0}, {"b", 470, 0}, {"c", 0, 2000}, {"d", 0, -100}},
		[2]string{"a", "b"}, [2]string{"a", "c"}, [2]string{"a", "d"}, [2]string{"a", "b"},
	)

	ratios := StretchRatios(s, Config{})

	assert.Len(t, ratios, 3)
	assert.InDelta(t, 0.5, ratios["a-b-0"], tolerance)
	assert.InDelta(t, 0.5, ratios["a-b-3"], tolerance)
	assert.Equal(t, 1.0, ratios["a-c-1"])
	assert.NotContains(t, ratios, "a-d-2")

	s.SetPosition("b", graph.Point{X: MaxLinkLength + StretchBand*StretchCutoff/2})
	assert.NotContains(t, StretchRatios(s, Config{}), "a-b-0")
}

func TestIDSet(t *testing.T) {
	s := NewIDSet("b", "a", "b")
	assert.Equal(t, []string{"b", "a"}, s.IDs())
	assert.True(t, s.Add("c"))
	assert.False(t, s.Add("a"))

	var zero IDSet
	assert.False(t, zero.Has("x"))
	zero.Merge(s)
	assert.Equal(t, []string{"b", "a", "c"}, zero.IDs())
}

func TestConfigDefaults(t *testing.T) {
	assert.Equal(t, DefaultConfig(), Config{}.withDefaults())
	cfg := Config{MinNodeDistance: 50}.withDefaults()
	assert.Equal(t, 50.0, cfg.MinNodeDistance)
	assert.Equal(t, MaxLinkLength, cfg.MaxLinkLength)
}

// packed drops n topics into a tight square so most pairs overlap
func packed(n int) *graph.Store {
	nodes := make([]placed, n)
	for i := range nodes {
		nodes[i] = placed{id: "t" + string(rune('A'+i%26)) + string(rune('a'+i/26)), x: float64(i%10) * 40, y: float64(i/10) * 40}
	}
	return storeOf(nodes)
}

func BenchmarkRelax(b *testing.B) {
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		e := newTestEngine(packed(100))
		b.StartTimer()
		e.Relax()
	}
}

func BenchmarkSettle(b *testing.B) {
	s := packed(100)
	e := newTestEngine(s)
	e.Relax()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Settle("tAa")
	}
}
