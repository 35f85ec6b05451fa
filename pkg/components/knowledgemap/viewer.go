//go:build !js || !wasm

package knowledgemap

import (
	"github.com/recera/knowledgemap/pkg/knowledge/canvas"
	"github.com/recera/knowledgemap/pkg/knowledge/graph"
	"github.com/recera/knowledgemap/pkg/vango/vdom"
)

// Render returns the static scene of store, sized to width x height.
// Outside the browser there is nothing to mount; the result is meant for
// server-side rendering.
func Render(store *graph.Store, width, height float64, opts *Options) (*vdom.VNode, *Controller) {
	o := opts.withDefaults()
	c := canvas.New(store, o.canvasOptions()...)
	c.Resize(width, height)
	ctrl := newController(c, o, nil)
	return c.Scene(), ctrl
}
