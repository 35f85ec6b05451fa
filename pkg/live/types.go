package live

import (
	"encoding/json"
	"fmt"

	"github.com/recera/knowledgemap/pkg/knowledge/canvas"
	"github.com/recera/knowledgemap/pkg/knowledge/interact"
)

// MessageType represents the type of live protocol message
type MessageType uint8

const (
	// Frame types
	FramePatches MessageType = 0x00
	FrameEvent   MessageType = 0x01
	FrameControl MessageType = 0x02
)

// Control messages
const (
	ControlHello = "HELLO"
	ControlPing  = "PING"
	ControlPong  = "PONG"
)

// EventType names a client-side event
type EventType string

const (
	EventPointerDown   EventType = "pointerdown"
	EventPointerMove   EventType = "pointermove"
	EventPointerUp     EventType = "pointerup"
	EventPointerCancel EventType = "pointercancel"
	EventWheel         EventType = "wheel"
	EventKey           EventType = "key"
	EventClick         EventType = "click"
	EventAction        EventType = "action"
	EventResize        EventType = "resize"
)

// Event is a client-side event. Events travel as JSON text frames; only the
// field matching Type is read.
type Event struct {
	Type    EventType              `json:"type"`
	Pointer *interact.PointerEvent `json:"pointer,omitempty"`
	Wheel   *interact.WheelEvent   `json:"wheel,omitempty"`
	Key     string                 `json:"key,omitempty"`
	Topic   string                 `json:"topic,omitempty"`
	Action  string                 `json:"action,omitempty"`
	Width   float64                `json:"width,omitempty"`
	Height  float64                `json:"height,omitempty"`
}

// DecodeEvent parses a text frame
func DecodeEvent(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if err := ev.validate(); err != nil {
		return Event{}, err
	}
	return ev, nil
}

func (ev Event) validate() error {
	switch ev.Type {
	case EventPointerDown, EventPointerMove, EventPointerUp, EventPointerCancel:
		if ev.Pointer == nil {
			return fmt.Errorf("%s event without pointer", ev.Type)
		}
	case EventWheel:
		if ev.Wheel == nil {
			return fmt.Errorf("wheel event without wheel")
		}
	case EventKey, EventClick, EventAction, EventResize:
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	return nil
}

// Dispatch feeds an event to a canvas and reports what changed
func Dispatch(c *canvas.Canvas, ev Event) canvas.Change {
	if ev.validate() != nil {
		return 0
	}
	switch ev.Type {
	case EventPointerDown:
		return c.PointerDown(*ev.Pointer)
	case EventPointerMove:
		return c.PointerMove(*ev.Pointer)
	case EventPointerUp:
		return c.PointerUp(*ev.Pointer)
	case EventPointerCancel:
		return c.PointerCancel(*ev.Pointer)
	case EventWheel:
		return c.Wheel(*ev.Wheel)
	case EventKey:
		return c.Key(interact.KeyEvent{Key: ev.Key})
	case EventClick:
		return c.Click(ev.Topic)
	case EventAction:
		return c.Action(ev.Action)
	case EventResize:
		return c.Resize(ev.Width, ev.Height)
	}
	return 0
}
