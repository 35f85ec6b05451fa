package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/recera/knowledgemap/pkg/knowledge/graph"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#444444"))

	nodeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	focusStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#04B575"))

	dragStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB86C"))

	activeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)
)

type cellKind uint8

const (
	cellBlank cellKind = iota
	cellLink
	cellNode
	cellActive
	cellFocus
	cellDrag
)

func (k cellKind) style() lipgloss.Style {
	switch k {
	case cellLink:
		return linkStyle
	case cellNode:
		return nodeStyle
	case cellActive:
		return activeStyle
	case cellFocus:
		return focusStyle
	case cellDrag:
		return dragStyle
	}
	return lipgloss.NewStyle()
}

// grid is the character raster of the map area
type grid struct {
	w, h  int
	runes [][]rune
	kinds [][]cellKind
}

func newGrid(w, h int) *grid {
	g := &grid{w: w, h: h, runes: make([][]rune, h), kinds: make([][]cellKind, h)}
	for y := range g.runes {
		g.runes[y] = []rune(strings.Repeat(" ", w))
		g.kinds[y] = make([]cellKind, w)
	}
	return g
}

func (g *grid) set(x, y int, r rune, k cellKind) {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return
	}
	g.runes[y][x] = r
	g.kinds[y][x] = k
}

// line draws a link with Bresenham's algorithm, leaving labels intact
func (g *grid) line(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for steps := 0; steps < 4*(g.w+g.h); steps++ {
		if x0 >= 0 && y0 >= 0 && x0 < g.w && y0 < g.h && g.kinds[y0][x0] == cellBlank {
			g.set(x0, y0, '·', cellLink)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// label writes text centered on a cell
func (g *grid) label(x, y int, text string, k cellKind) {
	rs := []rune(text)
	start := x - len(rs)/2
	for i, r := range rs {
		g.set(start+i, y, r, k)
	}
}

func (g *grid) String() string {
	var b strings.Builder
	for y := 0; y < g.h; y++ {
		row, kinds := g.runes[y], g.kinds[y]
		for x := 0; x < g.w; {
			end := x
			for end < g.w && kinds[end] == kinds[x] {
				end++
			}
			run := string(row[x:end])
			if kinds[x] == cellBlank {
				b.WriteString(run)
			} else {
				b.WriteString(kinds[x].style().Render(run))
			}
			x = end
		}
		if y < g.h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// cellOf maps a world point to the map's character grid
func (m Model) cellOf(p graph.Point) (int, int) {
	vp := m.canvas.Viewport()
	sx := p.X*vp.Zoom + vp.Offset.X
	sy := p.Y*vp.Zoom + vp.Offset.Y
	return int(math.Floor(sx / cellWidth)), int(math.Floor(sy / cellHeight))
}

// labelWidth is how many cells a topic label may take at the current zoom
func (m Model) labelWidth() int {
	w := int(2 * graph.NodeRadius * m.canvas.Viewport().Zoom / cellWidth)
	if w < 5 {
		w = 5
	}
	return w
}

func (m Model) renderMap() string {
	cols, rows := m.mapSize()
	g := newGrid(cols, rows)
	store := m.canvas.Store()

	for _, l := range store.Links() {
		a, _ := store.Position(l.Source)
		b, _ := store.Position(l.Target)
		x0, y0 := m.cellOf(a)
		x1, y1 := m.cellOf(b)
		g.line(x0, y0, x1, y1)
	}

	width := m.labelWidth()
	focused := m.Focused()
	for _, t := range store.Topics() {
		kind := cellNode
		switch t.ID {
		case m.canvas.DraggingID():
			kind = cellDrag
		case focused:
			kind = cellFocus
		case m.canvas.ActiveID():
			kind = cellActive
		}
		x, y := m.cellOf(t.Position)
		g.label(x, y, "("+truncate(t.Label, width-2)+")", kind)
	}
	return g.String()
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	if n <= 1 {
		return string(rs[:n])
	}
	return string(rs[:n-1]) + "…"
}

// renderDetail lays out the detail overlay of a topic as text
func renderDetail(t graph.Topic, width int) string {
	if width < 10 {
		width = 10
	}
	wrap := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	b.WriteString(titleStyle.Render(t.Label))
	b.WriteString("\n\n")
	if t.Detail.Overview != "" {
		b.WriteString(wrap.Render(t.Detail.Overview))
		b.WriteString("\n")
	}
	if len(t.Detail.DeepDives) > 0 {
		b.WriteString("\n" + headingStyle.Render("Deep dives") + "\n")
		for _, d := range t.Detail.DeepDives {
			b.WriteString(wrap.Render("• "+d) + "\n")
		}
	}
	if len(t.Detail.Resources) > 0 {
		b.WriteString("\n" + headingStyle.Render("Resources") + "\n")
		for _, r := range t.Detail.Resources {
			b.WriteString(wrap.Render("• "+r.Label) + "\n")
			b.WriteString(mutedStyle.Render("  "+r.Href) + "\n")
		}
	}
	return b.String()
}

// View renders the explorer
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "loading..."
	}

	header := titleStyle.Render("Knowledge Map") +
		mutedStyle.Render(fmt.Sprintf("  %d topics  zoom %d%%", m.canvas.Store().Len(), m.zoomPercent()))

	body := m.renderMap()
	if m.detailOpen() {
		pane := paneStyle.Height(m.detail.Height).Render(m.detail.View())
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, pane)
	}

	return strings.Join([]string{header, body, m.statusLine(), m.help.View(m.keys)}, "\n")
}

func (m Model) statusLine() string {
	if m.status != "" {
		return mutedStyle.Render(m.status)
	}
	if id := m.Focused(); id != "" {
		t, _ := m.canvas.Store().Topic(id)
		return mutedStyle.Render("focus: ") + focusStyle.Render(t.Label)
	}
	return ""
}
