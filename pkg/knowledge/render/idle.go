package render

import (
	"math"
	"strconv"

	"github.com/recera/knowledgemap/pkg/knowledge/graph"
)

const (
	idleAmplitudeX = 6.0
	idleAmplitudeY = 4.0
	idleSpeedX     = 0.6
	idleSpeedY     = 0.8
)

// IdlePhase derives a stable phase in [0, 1) from a topic id so that
// topics drift out of step with each other.
func IdlePhase(id string) float64 {
	hash := 0
	for _, unit := range utf16Units(id) {
		hash = (hash*31 + int(unit)) % 1024
	}
	return float64(hash%10) / 10
}

// IdleDelay is the phase expressed as a CSS duration
func IdleDelay(id string) string {
	return strconv.FormatFloat(IdlePhase(id), 'f', -1, 64) + "s"
}

// IdleOffset is the ambient drift of a topic at time t seconds.
// A dragged topic holds still.
func IdleOffset(id string, t float64, dragging bool) graph.Point {
	if dragging {
		return graph.Point{}
	}
	base := IdlePhase(id) * 2 * math.Pi
	return graph.Point{
		X: math.Sin(t*idleSpeedX+base) * idleAmplitudeX,
		Y: math.Cos(t*idleSpeedY+base) * idleAmplitudeY,
	}
}

// IdleStyle appends a drift offset to a NodeStyle. Front ends that drive
// the drift per frame write node styles through it so that a position
// update keeps the current offset.
func IdleStyle(style string, off graph.Point) string {
	return style + "; --idle-x: " + FormatPx(off.X) + "; --idle-y: " + FormatPx(off.Y)
}

// FormatPx renders v with two decimals and a px unit
func FormatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "px"
}

// utf16Units hashes ids the way browsers index strings, so the phase of a
// topic is the same in every front end.
func utf16Units(s string) []uint16 {
	units := make([]uint16, 0, len(s))
	for _, r := range s {
		if r >= 0x10000 {
			r -= 0x10000
			units = append(units, uint16(0xD800+(r>>10)), uint16(0xDC00+(r&0x3FF)))
			continue
		}
		units = append(units, uint16(r))
	}
	return units
}
