package components

import (
	"strconv"

	"github.com/recera/knowledgemap/pkg/knowledge/graph"
	"github.com/recera/knowledgemap/pkg/vango/vdom"
)

// Actions carried in data-action so that front ends can route clicks
// without handlers in the tree.
const (
	ActionClose = "close"
	ActionStay  = "stay"
)

// ModalProps defines the properties for the Modal component
type ModalProps struct {
	ID         string // id of the title element, referenced by aria-labelledby
	Kicker     string
	Title      string
	Lead       string
	Sections   []*vdom.VNode
	CloseLabel string
}

// Modal renders a dialog over a dimmed overlay. Clicking the overlay or the
// close button closes it; clicks inside the dialog do not.
func Modal(props ModalProps) *vdom.VNode {
	if props.CloseLabel == "" {
		props.CloseLabel = "Close"
	}

	header := vdom.NewElement("header", nil,
		optional(props.Kicker != "", func() *vdom.VNode {
			return vdom.NewElement("span", vdom.Props{"class": "knowledge-modal__kicker"}, vdom.NewText(props.Kicker))
		}),
		vdom.NewElement("h3", vdom.Props{"id": props.ID}, vdom.NewText(props.Title)),
		vdom.NewElement("p", nil, vdom.NewText(props.Lead)),
	)

	children := []*vdom.VNode{
		vdom.NewElement("button", vdom.Props{
			"type":        "button",
			"class":       "knowledge-modal__close",
			"aria-label":  props.CloseLabel,
			"data-action": ActionClose,
		}, vdom.NewText("×")),
		header,
	}
	children = append(children, props.Sections...)

	return vdom.NewElement("div", vdom.Props{
		"class":           "knowledge-modal__overlay",
		"role":            "dialog",
		"aria-modal":      "true",
		"aria-labelledby": props.ID,
		"data-action":     ActionClose,
	},
		vdom.NewElement("article", vdom.Props{
			"class":       "knowledge-modal",
			"data-action": ActionStay,
		}, children...),
	)
}

// Section renders a titled block inside a modal
func Section(title string, body ...*vdom.VNode) *vdom.VNode {
	kids := append([]*vdom.VNode{vdom.NewElement("h4", nil, vdom.NewText(title))}, body...)
	return vdom.NewElement("section", vdom.Props{"class": "knowledge-modal__section"}, kids...)
}

// TopicDetail renders the detail overlay of a topic
func TopicDetail(topic graph.Topic) *vdom.VNode {
	dives := make([]*vdom.VNode, 0, len(topic.Detail.DeepDives))
	for i, item := range topic.Detail.DeepDives {
		dives = append(dives, vdom.NewElement("li", vdom.Props{"key": itemKey(item, i)}, vdom.NewText(item)))
	}

	links := make([]*vdom.VNode, 0, len(topic.Detail.Resources))
	for i, res := range topic.Detail.Resources {
		links = append(links, vdom.NewElement("a", vdom.Props{
			"key":    itemKey(res.Label, i),
			"href":   vdom.SafeURL(res.Href),
			"target": "_blank",
			"rel":    "noreferrer",
		}, vdom.NewText(res.Label)))
	}

	return Modal(ModalProps{
		ID:         "topic-" + topic.ID,
		Kicker:     "Topic",
		Title:      topic.Label,
		Lead:       topic.Detail.Overview,
		CloseLabel: "Close topic details",
		Sections: []*vdom.VNode{
			Section("Deep Dives", vdom.NewElement("ul", nil, dives...)),
			Section("Resources", vdom.NewElement("div", vdom.Props{"class": "knowledge-modal__links"}, links...)),
		},
	})
}

// itemKey keeps keys unique when an item repeats
func itemKey(s string, i int) string {
	if s == "" {
		return "#" + strconv.Itoa(i)
	}
	return s + "#" + strconv.Itoa(i)
}

func optional(cond bool, build func() *vdom.VNode) *vdom.VNode {
	if !cond {
		return nil
	}
	return build()
}
