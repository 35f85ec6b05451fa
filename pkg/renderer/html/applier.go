package html

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/recera/knowledgemap/pkg/vango/vdom"
)

// voidElements are HTML elements that cannot have children
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// booleanAttributes are HTML attributes that are boolean flags
var booleanAttributes = map[string]bool{
	"checked":   true,
	"disabled":  true,
	"readonly":  true,
	"required":  true,
	"selected":  true,
	"defer":     true,
	"async":     true,
	"multiple":  true,
	"autofocus": true,
	"hidden":    true,
}

// HTMLApplier renders VNodes to HTML. Attributes are written in name
// order so the same tree always renders to the same bytes.
type HTMLApplier struct {
	w   io.Writer
	err error
}

// NewHTMLApplier creates a new HTML applier
func NewHTMLApplier(w io.Writer) *HTMLApplier {
	return &HTMLApplier{w: w}
}

// Apply renders a VNode tree to HTML
func (a *HTMLApplier) Apply(prev, next *vdom.VNode) error {
	if prev != nil {
		return fmt.Errorf("htmlApplier does not support incremental updates")
	}

	if next == nil {
		return nil
	}

	a.renderNode(next)
	return a.err
}

// write helper that tracks errors
func (a *HTMLApplier) write(s string) {
	if a.err != nil {
		return
	}
	_, a.err = io.WriteString(a.w, s)
}

// renderNode renders a single VNode
func (a *HTMLApplier) renderNode(node *vdom.VNode) {
	if node == nil || a.err != nil {
		return
	}

	switch node.Kind {
	case vdom.KindText:
		a.write(html.EscapeString(node.Text))

	case vdom.KindElement:
		a.renderElement(node)

	case vdom.KindFragment:
		for i := range node.Kids {
			a.renderNode(&node.Kids[i])
		}
	}
}

// renderElement renders an element node
func (a *HTMLApplier) renderElement(node *vdom.VNode) {
	a.write("<")
	a.write(node.Tag)

	for _, key := range node.Props.Keys() {
		if key == "ref" {
			continue
		}

		if booleanAttributes[key] {
			if v, ok := node.Props[key].(bool); ok && v {
				a.write(" ")
				a.write(key)
			}
			continue
		}

		valueStr, _ := node.Attr(key)

		if key == "href" || key == "src" {
			valueStr = vdom.SafeURL(valueStr)
		}

		a.write(" ")
		a.write(key)
		a.write(`="`)
		a.write(html.EscapeString(valueStr))
		a.write(`"`)
	}

	a.write(">")

	if voidElements[node.Tag] {
		return
	}

	// Script and style content is written unescaped
	isRawTextElement := node.Tag == "script" || node.Tag == "style"
	for i := range node.Kids {
		if isRawTextElement {
			a.renderRawNode(&node.Kids[i])
		} else {
			a.renderNode(&node.Kids[i])
		}
	}

	a.write("</")
	a.write(node.Tag)
	a.write(">")
}

// renderRawNode renders a node without HTML escaping (for script/style content)
func (a *HTMLApplier) renderRawNode(node *vdom.VNode) {
	if node == nil || a.err != nil {
		return
	}

	switch node.Kind {
	case vdom.KindText:
		a.write(node.Text)

	case vdom.KindElement:
		a.renderElement(node)

	case vdom.KindFragment:
		for i := range node.Kids {
			a.renderRawNode(&node.Kids[i])
		}
	}
}

// RenderToString is a convenience function to render a VNode to a string
func RenderToString(node *vdom.VNode) (string, error) {
	var buf strings.Builder
	applier := NewHTMLApplier(&buf)
	err := applier.Apply(nil, node)
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
