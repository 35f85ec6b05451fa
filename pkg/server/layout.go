package server

import (
	"github.com/recera/knowledgemap/pkg/styling"
	"github.com/recera/knowledgemap/pkg/vango/vdom"
)

// Layout wraps page content into a complete document
type Layout interface {
	Wrap(child *vdom.VNode) *vdom.VNode
}

// LayoutFunc is a function type that implements the Layout interface
type LayoutFunc func(child *vdom.VNode) *vdom.VNode

// Wrap implements the Layout interface for LayoutFunc
func (f LayoutFunc) Wrap(child *vdom.VNode) *vdom.VNode {
	return f(child)
}

// Shell returns the layout of the map page: an html document whose head
// inlines every registered stylesheet.
func Shell(title string) Layout {
	return LayoutFunc(func(child *vdom.VNode) *vdom.VNode {
		return vdom.NewElement("html", vdom.Props{"lang": "en"},
			vdom.NewElement("head", nil,
				vdom.NewElement("meta", vdom.Props{"charset": "utf-8"}),
				vdom.NewElement("meta", vdom.Props{
					"name":    "viewport",
					"content": "width=device-width, initial-scale=1",
				}),
				vdom.NewElement("title", nil, vdom.NewText(title)),
				vdom.NewElement("style", nil, vdom.NewText(styling.Minify(styling.GetAllCSS()))),
			),
			vdom.NewElement("body", nil, child),
		)
	})
}
