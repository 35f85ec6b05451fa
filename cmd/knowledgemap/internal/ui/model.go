// Package ui is the terminal explorer: a bubbletea program driving a
// canvas.Canvas through the same pointer, wheel and key events a browser
// would send.
package ui

import (
	"fmt"
	"math"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/recera/knowledgemap/pkg/knowledge/canvas"
	"github.com/recera/knowledgemap/pkg/knowledge/graph"
	"github.com/recera/knowledgemap/pkg/knowledge/interact"
	"github.com/recera/knowledgemap/pkg/knowledge/physics"
)

// A terminal cell stands for this many screen pixels
const (
	cellWidth  = 10.0
	cellHeight = 20.0
)

const (
	panStep  = 4 // cells per pan key press
	dragStep = 2 // cells per move key press

	// rows taken by the header, status and help lines
	chromeRows = 3
)

// Pointer ids of the synthetic event sources
const (
	keyDragPointer = 1
	mousePointer   = 2
	keyPanPointer  = 3
)

// Model represents the explorer state
type Model struct {
	canvas *canvas.Canvas
	ids    []string
	focus  int

	keys   KeyMap
	help   help.Model
	detail viewport.Model
	// topic shown in detail, so content is only reset on a switch
	detailID string

	width  int
	height int

	keyDrag     bool
	dragAt      graph.Point
	mouseButton interact.Button
	mouseDown   bool

	status   string
	quitting bool
}

// New creates an explorer over c
func New(c *canvas.Canvas) Model {
	return Model{
		canvas: c,
		ids:    c.Store().IDs(),
		keys:   DefaultKeyMap,
		help:   help.New(),
		detail: viewport.New(0, 0),
	}
}

// Canvas returns the map being explored
func (m Model) Canvas() *canvas.Canvas { return m.canvas }

// Focused returns the id of the focused topic
func (m Model) Focused() string {
	if len(m.ids) == 0 {
		return ""
	}
	return m.ids[m.focus]
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.layout()

	case tea.KeyMsg:
		cmd = m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
	}
	m.sync()
	return m, cmd
}

// detailOpen reports whether the detail pane is showing
func (m Model) detailOpen() bool {
	return m.canvas.ActiveID() != ""
}

// mapSize is the map area in cells
func (m Model) mapSize() (cols, rows int) {
	cols = m.width
	if m.detailOpen() {
		cols -= m.paneWidth()
	}
	rows = m.height - chromeRows
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

func (m Model) paneWidth() int {
	w := m.width * 2 / 5
	if w > 56 {
		w = 56
	}
	return w
}

// layout tells the canvas how big the map area is in pixels
func (m *Model) layout() {
	cols, rows := m.mapSize()
	m.canvas.Resize(float64(cols)*cellWidth, float64(rows)*cellHeight)
	m.detail.Width = m.paneWidth() - 4
	m.detail.Height = rows - 2
}

// sync reconciles view state with the canvas after an event
func (m *Model) sync() {
	if m.canvas.DraggingID() == "" {
		m.keyDrag = false
	}

	active := m.canvas.ActiveID()
	if active == m.detailID {
		return
	}
	m.detailID = active
	m.layout()
	if topic, ok := m.canvas.ActiveTopic(); ok && active != "" {
		m.detail.SetContent(renderDetail(topic, m.detail.Width))
		m.detail.GotoTop()
	}
}

func (m *Model) center() graph.Point {
	w, h := m.canvas.Size()
	return graph.Point{X: w / 2, Y: h / 2}
}

// screenOf is the screen position of a topic
func (m *Model) screenOf(id string) graph.Point {
	p, _ := m.canvas.Store().Position(id)
	vp := m.canvas.Viewport()
	return graph.Point{X: p.X*vp.Zoom + vp.Offset.X, Y: p.Y*vp.Zoom + vp.Offset.Y}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return tea.Quit

	case key.Matches(msg, m.keys.Back):
		m.canvas.Key(interact.KeyEvent{Key: interact.KeyEscape})
		return nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil
	}

	// the open pane scrolls with the vertical keys
	if m.detailOpen() && (key.Matches(msg, m.keys.Up) || key.Matches(msg, m.keys.Down) ||
		msg.Type == tea.KeyPgUp || msg.Type == tea.KeyPgDown) {
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.panBy(0, panStep)
	case key.Matches(msg, m.keys.Down):
		m.panBy(0, -panStep)
	case key.Matches(msg, m.keys.Left):
		m.panBy(panStep, 0)
	case key.Matches(msg, m.keys.Right):
		m.panBy(-panStep, 0)

	case key.Matches(msg, m.keys.DragUp):
		m.dragBy(0, -dragStep)
	case key.Matches(msg, m.keys.DragDown):
		m.dragBy(0, dragStep)
	case key.Matches(msg, m.keys.DragLeft):
		m.dragBy(-dragStep, 0)
	case key.Matches(msg, m.keys.DragRight):
		m.dragBy(dragStep, 0)

	case key.Matches(msg, m.keys.ZoomIn):
		m.zoom(-1)
	case key.Matches(msg, m.keys.ZoomOut):
		m.zoom(1)

	case key.Matches(msg, m.keys.Next):
		m.cycle(1)
	case key.Matches(msg, m.keys.Prev):
		m.cycle(-1)

	case key.Matches(msg, m.keys.Enter):
		if m.keyDrag {
			m.drop()
		} else if id := m.Focused(); id != "" {
			m.canvas.Click(id)
		}

	case key.Matches(msg, m.keys.Relax):
		before := physicsOverlaps(m.canvas)
		m.canvas.Relax()
		nodes, _ := m.canvas.Touched()
		m.status = fmt.Sprintf("relaxed %d overlaps, moved %d topics", before, len(nodes))

	case key.Matches(msg, m.keys.Reset):
		m.canvas.ResetView()
	}
	return nil
}

// panBy drags the bare canvas by a number of cells
func (m *Model) panBy(cols, rows int) {
	from := m.center()
	to := graph.Point{X: from.X + float64(cols)*cellWidth, Y: from.Y + float64(rows)*cellHeight}
	ev := interact.PointerEvent{PointerID: keyPanPointer, Button: interact.ButtonPrimary}
	ev.X, ev.Y = from.X, from.Y
	m.canvas.PointerDown(ev)
	ev.X, ev.Y = to.X, to.Y
	m.canvas.PointerMove(ev)
	m.canvas.PointerUp(ev)
}

// dragBy moves the focused topic, opening a drag on the first press. The
// drag stays open until enter drops it or esc rolls it back.
func (m *Model) dragBy(cols, rows int) {
	id := m.Focused()
	if id == "" {
		return
	}
	if !m.keyDrag {
		if m.canvas.DraggingID() != "" {
			return
		}
		m.dragAt = m.screenOf(id)
		m.canvas.PointerDown(m.dragEvent(id))
		m.keyDrag = m.canvas.DraggingID() == id
		if !m.keyDrag {
			return
		}
	}
	m.dragAt.X += float64(cols) * cellWidth
	m.dragAt.Y += float64(rows) * cellHeight
	m.canvas.PointerMove(m.dragEvent(""))
	m.status = "moving " + id + ", enter drops, esc cancels"
}

func (m *Model) dragEvent(target string) interact.PointerEvent {
	return interact.PointerEvent{
		PointerID: keyDragPointer,
		Button:    interact.ButtonSecondary,
		X:         m.dragAt.X,
		Y:         m.dragAt.Y,
		Target:    target,
	}
}

func (m *Model) drop() {
	m.canvas.PointerUp(m.dragEvent(""))
	m.keyDrag = false
	m.status = ""
}

// zoom scrolls at the center of the map; negative zooms in
func (m *Model) zoom(delta float64) {
	c := m.center()
	m.canvas.Wheel(interact.WheelEvent{X: c.X, Y: c.Y, DeltaY: delta})
}

func (m *Model) cycle(step int) {
	if len(m.ids) == 0 || m.keyDrag {
		return
	}
	m.focus = (m.focus + step + len(m.ids)) % len(m.ids)
	m.canvas.Focus(m.ids[m.focus])
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	cols, rows := m.mapSize()
	row := msg.Y - 1
	if msg.X >= cols || row < 0 || row >= rows {
		return
	}
	ev := interact.PointerEvent{
		PointerID: mousePointer,
		X:         (float64(msg.X) + 0.5) * cellWidth,
		Y:         (float64(row) + 0.5) * cellHeight,
	}

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.canvas.Wheel(interact.WheelEvent{X: ev.X, Y: ev.Y, DeltaY: -1})

	case msg.Button == tea.MouseButtonWheelDown:
		m.canvas.Wheel(interact.WheelEvent{X: ev.X, Y: ev.Y, DeltaY: 1})

	case msg.Action == tea.MouseActionPress:
		if msg.Button == tea.MouseButtonRight {
			m.mouseButton = interact.ButtonSecondary
		} else {
			m.mouseButton = interact.ButtonPrimary
		}
		ev.Button = m.mouseButton
		ev = m.canvas.Locate(ev)
		if ev.Button == interact.ButtonPrimary && ev.Target != "" {
			m.focusOn(ev.Target)
		}
		m.mouseDown = true
		m.canvas.PointerDown(ev)

	case msg.Action == tea.MouseActionMotion && m.mouseDown:
		ev.Button = m.mouseButton
		m.canvas.PointerMove(ev)

	case msg.Action == tea.MouseActionRelease && m.mouseDown:
		ev.Button = m.mouseButton
		m.mouseDown = false
		m.canvas.PointerUp(m.canvas.Locate(ev))
	}
}

func (m *Model) focusOn(id string) {
	for i, other := range m.ids {
		if other == id {
			m.focus = i
			return
		}
	}
}

func physicsOverlaps(c *canvas.Canvas) int {
	return physics.Overlaps(c.Store(), c.Engine().Config())
}

// zoomPercent is the zoom shown in the header
func (m Model) zoomPercent() int {
	return int(math.Round(m.canvas.Viewport().Zoom * 100))
}
