package server

import (
	_ "embed"

	"github.com/recera/knowledgemap/pkg/vango/vdom"
)

// SessionMeta is the name of the meta tag carrying the live session id
const SessionMeta = "knowledge-session"

//go:embed assets/live.js
var liveClient string

// InjectLiveClient adds the session meta tag to head and the live client
// script to the end of body. Documents that are not an html element are
// returned untouched.
func InjectLiveClient(doc *vdom.VNode, sessionID string) *vdom.VNode {
	if doc == nil || doc.Kind != vdom.KindElement || doc.Tag != "html" {
		return doc
	}

	sessionMeta := vdom.NewElement("meta", vdom.Props{
		"name":    SessionMeta,
		"content": sessionID,
	})
	clientScript := vdom.NewElement("script", vdom.Props{"type": "text/javascript"},
		vdom.NewText(liveClient))

	for i := range doc.Kids {
		child := &doc.Kids[i]
		switch child.Tag {
		case "head":
			child.Kids = append(child.Kids, *sessionMeta)
		case "body":
			child.Kids = append(child.Kids, *clientScript)
		}
	}
	return doc
}
