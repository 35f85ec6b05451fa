package knowledgemap

import (
	"github.com/recera/knowledgemap/pkg/knowledge/canvas"
	"github.com/recera/knowledgemap/pkg/knowledge/graph"
)

// API provides imperative control of a mounted map
type API interface {
	Focus(id string)
	Reset()
	Relax()
	Open(id string)
	Close()
	Export() graph.Document
}

// Controller implements API. Every call repaints what it changed.
type Controller struct {
	canvas  *canvas.Canvas
	repaint func()
	stop    func()
	cancel  func()
}

var _ API = (*Controller)(nil)

func newController(c *canvas.Canvas, o Options, repaint func()) *Controller {
	ctrl := &Controller{canvas: c, repaint: repaint}
	if o.Relax {
		c.Relax()
	}
	if o.OnOpen != nil {
		ctrl.cancel = c.OnActiveChange(o.OnOpen)
	}
	return ctrl
}

// Canvas returns the map state
func (c *Controller) Canvas() *canvas.Canvas { return c.canvas }

func (c *Controller) apply(change canvas.Change) {
	if change != 0 && c.repaint != nil {
		c.repaint()
	}
}

// Focus centers the viewport on a topic
func (c *Controller) Focus(id string) { c.apply(c.canvas.Focus(id)) }

// Reset restores zoom 1 with the world origin centered
func (c *Controller) Reset() { c.apply(c.canvas.ResetView()) }

// Relax pushes overlapping topics apart
func (c *Controller) Relax() { c.apply(c.canvas.Relax()) }

// Open shows the detail overlay of a topic
func (c *Controller) Open(id string) { c.apply(c.canvas.Open(id)) }

// Close hides the detail overlay
func (c *Controller) Close() { c.apply(c.canvas.Close()) }

// Export returns the map with its current positions
func (c *Controller) Export() graph.Document { return c.canvas.Store().Export() }

// Dispose detaches the viewer from the page
func (c *Controller) Dispose() {
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.canvas.Dispose()
}
