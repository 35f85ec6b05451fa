// Package knowledgemap mounts an interactive knowledge map in the browser.
// Every input event runs against a canvas.Canvas in the page and the
// re-rendered scene is diffed onto the DOM.
package knowledgemap

import (
	"github.com/recera/knowledgemap/pkg/knowledge/canvas"
	"github.com/recera/knowledgemap/pkg/knowledge/physics"
)

// Options configures the viewer
type Options struct {
	// Physics overrides the layout constants; nil keeps the defaults
	Physics *physics.Config

	// Viewport
	MinScale float64 // default 0.5
	MaxScale float64 // default 2.4

	// Relax pushes overlapping topics apart once before the first paint
	Relax bool

	// HomeHref adds a back link to the chrome
	HomeHref string

	// OnOpen runs when the detail overlay opens, switches or closes (id "")
	OnOpen func(id string)
}

func (o *Options) withDefaults() Options {
	d := Options{
		MinScale: 0.5,
		MaxScale: 2.4,
	}
	if o == nil {
		return d
	}
	d.Physics = o.Physics
	d.Relax = o.Relax
	d.HomeHref = o.HomeHref
	d.OnOpen = o.OnOpen
	if o.MinScale != 0 {
		d.MinScale = o.MinScale
	}
	if o.MaxScale != 0 {
		d.MaxScale = o.MaxScale
	}
	return d
}

func (o Options) canvasOptions() []canvas.Option {
	opts := []canvas.Option{canvas.WithZoomBounds(o.MinScale, o.MaxScale)}
	if o.Physics != nil {
		opts = append(opts, canvas.WithPhysics(*o.Physics))
	}
	if o.HomeHref != "" {
		opts = append(opts, canvas.WithHome(o.HomeHref))
	}
	return opts
}
