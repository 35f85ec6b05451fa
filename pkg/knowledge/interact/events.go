// Package interact turns pointer, wheel and key input into viewport changes
// (pan and zoom) and layout changes (dragging a topic).
//
// Coordinates on events are screen coordinates relative to the viewport's
// top-left corner. Front ends subtract the viewport rectangle before
// building an event.
package interact

import "github.com/recera/knowledgemap/pkg/knowledge/graph"

// debugLog is set by platform-specific code
var debugLog func(args ...interface{})

// SetDebugLog sets the debug logging function
func SetDebugLog(fn func(args ...interface{})) {
	debugLog = fn
}

// Button identifies a pointer button using DOM numbering
type Button int

const (
	ButtonPrimary   Button = 0
	ButtonAuxiliary Button = 1
	ButtonSecondary Button = 2
)

// PointerEvent is a pointer down, move, up or cancel.
// Target is the id of the topic under the pointer, empty for bare canvas.
type PointerEvent struct {
	PointerID int     `json:"pointerId"`
	Button    Button  `json:"button"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Target    string  `json:"target,omitempty"`
}

// Point returns the event position
func (e PointerEvent) Point() graph.Point {
	return graph.Point{X: e.X, Y: e.Y}
}

// OnNode reports whether the event landed on a topic
func (e PointerEvent) OnNode() bool {
	return e.Target != ""
}

// WheelEvent is a scroll over the viewport
type WheelEvent struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	DeltaY float64 `json:"deltaY"`
}

// KeyEvent carries a DOM key name such as "Escape"
type KeyEvent struct {
	Key string `json:"key"`
}

// KeyEscape closes the detail overlay
const KeyEscape = "Escape"
