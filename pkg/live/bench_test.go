package live

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/recera/knowledgemap/pkg/knowledge/canvas"
	"github.com/recera/knowledgemap/pkg/knowledge/graph"
	"github.com/recera/knowledgemap/pkg/knowledge/interact"
	"github.com/recera/knowledgemap/pkg/vango/vdom"
)

// gridCanvas lays n topics out on a grid with each linked to its left and
// upper neighbour
func gridCanvas(n int) *canvas.Canvas {
	const spacing = 300
	side := 1
	for side*side < n {
		side++
	}
	doc := graph.Document{}
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("t%d", i)
		doc.Topics = append(doc.Topics, graph.RawTopic{
			ID:       id,
			Label:    "Topic " + id,
			Position: &graph.Point{X: float64(i%side) * spacing, Y: float64(i/side) * spacing},
		})
		if i%side > 0 {
			doc.Links = append(doc.Links, graph.RawLink{Source: fmt.Sprintf("t%d", i-1), Target: id})
		}
		if i >= side {
			doc.Links = append(doc.Links, graph.RawLink{Source: fmt.Sprintf("t%d", i-side), Target: id})
		}
	}
	c := canvas.New(graph.New(doc), canvas.WithRand(rand.New(rand.NewSource(1))))
	c.Resize(1280, 800)
	return c
}

// dragFrame is the server side of one pointer move: apply, re-render,
// diff, encode, and the client's decode
func dragFrame(c *canvas.Canvas, prev *vdom.VNode, x float64) (*vdom.VNode, error) {
	c.PointerMove(interact.PointerEvent{PointerID: 1, Button: interact.ButtonSecondary, X: x, Y: x / 2})
	next := c.Scene()
	data, err := EncodePatches(vdom.Diff(prev, next))
	if err != nil {
		return nil, err
	}
	_, err = DecodePatches(data)
	return next, err
}

func TestDragFrameLatencyP95(t *testing.T) {
	if testing.Short() {
		t.Skip("latency check")
	}
	c := gridCanvas(100)
	c.PointerDown(interact.PointerEvent{PointerID: 1, Button: interact.ButtonSecondary, Target: "t0"})
	scene := c.Scene()

	const frames = 100
	latencies := make([]time.Duration, 0, frames)
	for i := 0; i < frames; i++ {
		start := time.Now()
		next, err := dragFrame(c, scene, float64(i*12))
		if err != nil {
			t.Fatal(err)
		}
		scene = next
		latencies = append(latencies, time.Since(start))
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	p95 := latencies[frames*95/100-1]
	if p95 > 50*time.Millisecond {
		t.Errorf("drag frame P95 is %v, expected <50ms", p95)
	}
	t.Logf("drag frame P50: %v, P95: %v", latencies[frames/2], p95)
}

func BenchmarkDragFrame(b *testing.B) {
	c := gridCanvas(100)
	c.PointerDown(interact.PointerEvent{PointerID: 1, Button: interact.ButtonSecondary, Target: "t0"})
	scene := c.Scene()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		next, err := dragFrame(c, scene, float64(i%400))
		if err != nil {
			b.Fatal(err)
		}
		scene = next
	}
}

func BenchmarkEncodeScene(b *testing.B) {
	scene := gridCanvas(100).Scene()
	patches := []vdom.Patch{{Op: vdom.OpReplaceNode, Path: []int{}, Node: scene}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := EncodePatches(patches); err != nil {
			b.Fatal(err)
		}
	}
}
