package render

import (
	"github.com/recera/knowledgemap/pkg/components"
	"github.com/recera/knowledgemap/pkg/knowledge/graph"
	"github.com/recera/knowledgemap/pkg/knowledge/interact"
	"github.com/recera/knowledgemap/pkg/vango/vdom"
)

// Element ids and class names shared by the scene and the front ends
const (
	RootID       = "knowledge"
	ViewportID   = "knowledge-viewport"
	NodeIDPrefix = "node-"
	LinkIDPrefix = "link-"

	ClassNode          = "knowledge-node"
	ClassNodeActive    = "knowledge-node--active"
	ClassNodeDragging  = "knowledge-node--dragging"
	ClassLink          = "knowledge-link"
	ClassLinkStretched = "knowledge-link--stretched"
	ClassMapDragging   = "knowledge-map--dragging"
	ClassMapScripted   = "knowledge-map--scripted"
	ClassMapStill      = "knowledge-map--still"

	// AttrTopic marks a node element with its topic id
	AttrTopic = "data-topic"
)

// Hint is the usage line shown above the map
const Hint = "Drag canvas with left click · Scroll to zoom · Left click opens · Right click + drag moves a node"

// SceneState is everything the scene depends on
type SceneState struct {
	Store      *graph.Store
	Viewport   interact.Viewport
	Cursor     interact.Cursor
	ActiveID   string
	DraggingID string
	Stretch    map[string]float64
	// HomeHref adds a back link to the chrome when set
	HomeHref string
	// Still turns the idle drift off
	Still bool
}

// NodeElementID is the DOM id of a topic's element
func NodeElementID(topicID string) string { return NodeIDPrefix + topicID }

// LinkElementID is the DOM id of a link's path
func LinkElementID(linkID string) string { return LinkIDPrefix + linkID }

// NodeStyle positions a topic element at its world coordinates
func NodeStyle(id string, p graph.Point) string {
	return "left: " + Num(p.X) + "px; top: " + Num(p.Y) + "px; --idle-delay: " + IdleDelay(id)
}

// NodeClass is the class list of a topic element
func NodeClass(active, dragging bool) string {
	class := ClassNode
	if active {
		class += " " + ClassNodeActive
	}
	if dragging {
		class += " " + ClassNodeDragging
	}
	return class
}

// LinkClass is the class list of a link path
func LinkClass(stretched bool) string {
	if stretched {
		return ClassLink + " " + ClassLinkStretched
	}
	return ClassLink
}

// StretchStyle is the inline style of a stretched link
func StretchStyle(ratio float64) string {
	return "--stretch: " + FormatRatio(ratio)
}

// Scene renders the whole map
func Scene(s SceneState) *vdom.VNode {
	rootClass := "knowledge-map"
	if s.DraggingID != "" {
		rootClass += " " + ClassMapDragging
	}
	if s.Still {
		rootClass += " " + ClassMapStill
	}

	var overlay *vdom.VNode
	if s.ActiveID != "" {
		if topic, ok := s.Store.Topic(s.ActiveID); ok {
			overlay = components.TopicDetail(topic)
		}
	}

	return vdom.NewElement("section", vdom.Props{
		"class": rootClass,
		"id":    RootID,
	},
		chrome(s.HomeHref),
		vdom.NewElement("div", vdom.Props{
			"class": "knowledge-map__viewport",
			"id":    ViewportID,
		},
			vdom.NewElement("div", vdom.Props{
				"class": "knowledge-map__canvas",
				"style": "transform: " + s.Viewport.Transform() + "; cursor: " + string(cursorOrDefault(s.Cursor)),
			},
				links(s),
				nodes(s),
			),
		),
		overlay,
	)
}

func chrome(home string) *vdom.VNode {
	var back *vdom.VNode
	if home != "" {
		back = vdom.NewElement("a", vdom.Props{"class": "knowledge-map__home", "href": home}, vdom.NewText("← Back Home"))
	}
	return vdom.NewElement("header", vdom.Props{"class": "knowledge-map__chrome"},
		back,
		vdom.NewElement("div", vdom.Props{"class": "knowledge-map__hint"}, vdom.NewText(Hint)),
	)
}

func links(s SceneState) *vdom.VNode {
	size := Num(graph.CanvasExtent * 2)
	extent := Num(-graph.CanvasExtent)

	paths := make([]*vdom.VNode, 0, len(s.Store.Links())+1)
	paths = append(paths, vdom.NewElement("defs", nil,
		vdom.NewElement("linearGradient", vdom.Props{
			"id": "link-gradient", "x1": "0%", "y1": "0%", "x2": "100%", "y2": "100%",
		},
			vdom.NewElement("stop", vdom.Props{"offset": "0%", "stop-color": "rgba(255,215,0,0.7)"}),
			vdom.NewElement("stop", vdom.Props{"offset": "100%", "stop-color": "rgba(255,166,0,0.2)"}),
		),
	))

	for _, lp := range Paths(s.Store) {
		props := vdom.Props{
			"key":   lp.ID,
			"id":    LinkElementID(lp.ID),
			"d":     lp.D,
			"class": LinkClass(false),
		}
		if ratio, ok := s.Stretch[lp.ID]; ok {
			props["class"] = LinkClass(true)
			props["style"] = StretchStyle(ratio)
		}
		paths = append(paths, vdom.NewElement("path", props))
	}

	return vdom.NewElement("svg", vdom.Props{
		"class":       "knowledge-map__links",
		"viewBox":     "0 0 " + size + " " + size,
		"width":       size,
		"height":      size,
		"style":       "left: " + extent + "px; top: " + extent + "px",
		"aria-hidden": "true",
	}, paths...)
}

func nodes(s SceneState) *vdom.VNode {
	topics := s.Store.Topics()
	buttons := make([]*vdom.VNode, 0, len(topics))
	for _, t := range topics {
		buttons = append(buttons, vdom.NewElement("button", vdom.Props{
			"key":     t.ID,
			"id":      NodeElementID(t.ID),
			"type":    "button",
			"class":   NodeClass(t.ID == s.ActiveID, t.ID == s.DraggingID),
			"style":   NodeStyle(t.ID, t.Position),
			AttrTopic: t.ID,
		},
			vdom.NewElement("span", vdom.Props{"class": "knowledge-node__inner"},
				vdom.NewElement("span", vdom.Props{"class": "knowledge-node__title"}, vdom.NewText(t.Label)),
			),
		))
	}
	return vdom.NewElement("div", vdom.Props{"class": "knowledge-map__nodes"}, buttons...)
}

func cursorOrDefault(c interact.Cursor) interact.Cursor {
	if c == "" {
		return interact.CursorGrab
	}
	return c
}
