// Package render turns the graph model into presentation data: SVG link
// paths, idle motion offsets, stretch styling and the virtual DOM scene
// shared by every front end.
package render

import (
	"math"
	"strconv"
	"strings"

	"github.com/recera/knowledgemap/pkg/knowledge/graph"
)

// LaneSpacing separates parallel links between the same pair of topics
const LaneSpacing = 18.0

// LinkPath is the SVG path of one link
type LinkPath struct {
	ID string `json:"id"`
	D  string `json:"d"`
}

// LinkPathData returns "M x1 y1 L x2 y2" for a link between src and dst,
// in canvas coordinates (world shifted by CanvasExtent). Parallel links are
// offset along the normal so their lanes sit symmetrically around the
// center line.
func LinkPathData(link graph.Link, src, dst graph.Point) string {
	x1 := src.X + graph.CanvasExtent
	y1 := src.Y + graph.CanvasExtent
	x2 := dst.X + graph.CanvasExtent
	y2 := dst.Y + graph.CanvasExtent

	dx := x2 - x1
	dy := y2 - y1
	distance := math.Hypot(dx, dy)
	if distance == 0 {
		distance = 1
	}
	nx := -dy / distance
	ny := dx / distance

	lane := 0.0
	if link.LaneCount > 1 {
		lane = (float64(link.LaneIndex) - float64(link.LaneCount-1)/2) * LaneSpacing
	}
	ox := nx * lane
	oy := ny * lane

	var b strings.Builder
	b.Grow(48)
	b.WriteString("M ")
	b.WriteString(Num(x1 + ox))
	b.WriteByte(' ')
	b.WriteString(Num(y1 + oy))
	b.WriteString(" L ")
	b.WriteString(Num(x2 + ox))
	b.WriteByte(' ')
	b.WriteString(Num(y2 + oy))
	return b.String()
}

// PathFor computes the path of a link from the store's current positions
func PathFor(store *graph.Store, link graph.Link) (string, bool) {
	src, ok := store.Position(link.Source)
	if !ok {
		return "", false
	}
	dst, ok := store.Position(link.Target)
	if !ok {
		return "", false
	}
	return LinkPathData(link, src, dst), true
}

// Paths computes every link path in link order
func Paths(store *graph.Store) []LinkPath {
	links := store.Links()
	out := make([]LinkPath, 0, len(links))
	for _, l := range links {
		if d, ok := PathFor(store, l); ok {
			out = append(out, LinkPath{ID: l.ID, D: d})
		}
	}
	return out
}

// Num formats a coordinate with the shortest exact representation
func Num(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
