//go:build js && wasm
// +build js,wasm

package knowledgemap

import (
	"syscall/js"

	"github.com/recera/knowledgemap/pkg/knowledge/canvas"
	"github.com/recera/knowledgemap/pkg/knowledge/graph"
	"github.com/recera/knowledgemap/pkg/knowledge/interact"
	"github.com/recera/knowledgemap/pkg/knowledge/render"
	"github.com/recera/knowledgemap/pkg/renderer/dom"
	"github.com/recera/knowledgemap/pkg/vango/vdom"
)

// viewer binds one canvas to the element it was mounted on
type viewer struct {
	canvas  *canvas.Canvas
	applier *dom.DOMApplier
	scene   *vdom.VNode
	// elements of scene by id, for direct positional writes
	index map[string]*vdom.VNode
	// last drift offset of each topic
	idle map[string]graph.Point

	document js.Value
	window   js.Value
	funcs    []js.Func
	remove   []func()
	ticking  bool
	stopped  bool
}

// Mount replaces root with the map of store and starts handling input
func Mount(root js.Value, store *graph.Store, opts *Options) *Controller {
	o := opts.withDefaults()
	v := &viewer{
		document: js.Global().Get("document"),
		window:   js.Global().Get("window"),
		idle:     make(map[string]graph.Point),
	}
	v.canvas = canvas.New(store, append(o.canvasOptions(), canvas.WithVisual(v))...)
	ctrl := newController(v.canvas, o, v.repaint)
	ctrl.stop = v.stop

	v.applier = dom.NewDOMApplier(root)
	v.setScene(v.render())
	v.applier.Mount(v.scene)

	v.resize()
	v.listen()
	v.requestFrame()
	return ctrl
}

// render is the canvas scene marked as script-driven. Node styles carry
// the current drift so that patching a style does not reset it.
func (v *viewer) render() *vdom.VNode {
	scene := v.canvas.Scene()
	if class, ok := scene.Props["class"].(string); ok {
		scene.Props["class"] = class + " " + render.ClassMapScripted
	}
	v.withIdle(scene)
	return scene
}

func (v *viewer) withIdle(n *vdom.VNode) {
	if id, ok := n.Attr(render.AttrTopic); ok {
		if style, ok := n.Attr("style"); ok {
			n.Props["style"] = render.IdleStyle(style, v.idle[id])
		}
	}
	for i := range n.Kids {
		v.withIdle(&n.Kids[i])
	}
}

func (v *viewer) setScene(scene *vdom.VNode) {
	v.scene = scene
	v.index = make(map[string]*vdom.VNode)
	indexByID(scene, v.index)
}

func indexByID(n *vdom.VNode, index map[string]*vdom.VNode) {
	if id, ok := n.Attr("id"); ok {
		index[id] = n
	}
	for i := range n.Kids {
		indexByID(&n.Kids[i], index)
	}
}

// repaint diffs the canvas scene against the last one and patches the DOM
func (v *viewer) repaint() {
	next := v.render()
	patches := vdom.Diff(v.scene, next)
	v.setScene(next)
	if err := v.applier.Apply(patches); err != nil {
		// the DOM drifted from the last scene; start over from this one
		js.Global().Get("console").Call("warn", "knowledgemap: remounting:", err.Error())
		v.applier.Mount(next)
	}
}

// UpdateNodeVisual implements physics.Visual. The write lands in the DOM
// and in the last scene alike, so the next diff only carries what else
// changed.
func (v *viewer) UpdateNodeVisual(id string) {
	if p, ok := v.canvas.Store().Position(id); ok {
		v.write(render.NodeElementID(id), "style", render.IdleStyle(render.NodeStyle(id, p), v.idle[id]))
	}
}

// UpdateLinkVisual implements physics.Visual
func (v *viewer) UpdateLinkVisual(id string) {
	store := v.canvas.Store()
	link, ok := store.Link(id)
	if !ok {
		return
	}
	if d, ok := render.PathFor(store, link); ok {
		v.write(render.LinkElementID(id), "d", d)
	}
}

func (v *viewer) write(elementID, key, value string) {
	node, ok := v.index[elementID]
	if !ok {
		return
	}
	node.Props[key] = value
	if el := v.document.Call("getElementById", elementID); el.Truthy() {
		el.Call("setAttribute", key, value)
	}
}

func (v *viewer) apply(change canvas.Change) {
	if change != 0 {
		v.repaint()
	}
}

func (v *viewer) viewport() js.Value {
	return v.document.Call("getElementById", render.ViewportID)
}

func (v *viewer) resize() {
	vp := v.viewport()
	if !vp.Truthy() {
		return
	}
	rect := vp.Call("getBoundingClientRect")
	v.apply(v.canvas.Resize(rect.Get("width").Float(), rect.Get("height").Float()))
}

func topicAt(el js.Value) string {
	if !el.Truthy() || el.Get("closest").IsUndefined() {
		return ""
	}
	node := el.Call("closest", "["+render.AttrTopic+"]")
	if !node.Truthy() {
		return ""
	}
	return node.Call("getAttribute", render.AttrTopic).String()
}

func (v *viewer) pointer(e js.Value, target string) interact.PointerEvent {
	rect := v.viewport().Call("getBoundingClientRect")
	button := e.Get("button").Int()
	if button < 0 {
		button = 0
	}
	return interact.PointerEvent{
		PointerID: e.Get("pointerId").Int(),
		Button:    interact.Button(button),
		X:         e.Get("clientX").Float() - rect.Get("left").Float(),
		Y:         e.Get("clientY").Float() - rect.Get("top").Float(),
		Target:    target,
	}
}

func (v *viewer) on(target js.Value, event string, fn func(e js.Value), passive bool) {
	f := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		fn(args[0])
		return nil
	})
	opts := map[string]interface{}{"passive": passive}
	target.Call("addEventListener", event, f, opts)
	v.funcs = append(v.funcs, f)
	v.remove = append(v.remove, func() { target.Call("removeEventListener", event, f, opts) })
}

func (v *viewer) listen() {
	v.on(v.document, "pointerdown", func(e js.Value) {
		vp := v.viewport()
		if !vp.Truthy() || !vp.Call("contains", e.Get("target")).Bool() {
			return
		}
		target := topicAt(e.Get("target"))
		v.apply(v.canvas.PointerDown(v.pointer(e, target)))
		vp.Call("setPointerCapture", e.Get("pointerId"))
		if target == "" && e.Get("button").Int() == 0 {
			e.Call("preventDefault")
		}
	}, false)

	v.on(v.document, "pointermove", func(e js.Value) {
		if v.viewport().Truthy() {
			v.apply(v.canvas.PointerMove(v.pointer(e, "")))
		}
	}, true)

	v.on(v.document, "pointerup", func(e js.Value) {
		vp := v.viewport()
		if !vp.Truthy() {
			return
		}
		under := v.document.Call("elementFromPoint", e.Get("clientX"), e.Get("clientY"))
		v.apply(v.canvas.PointerUp(v.pointer(e, topicAt(under))))
		if vp.Call("hasPointerCapture", e.Get("pointerId")).Bool() {
			vp.Call("releasePointerCapture", e.Get("pointerId"))
		}
	}, true)

	v.on(v.document, "pointercancel", func(e js.Value) {
		if v.viewport().Truthy() {
			v.apply(v.canvas.PointerCancel(v.pointer(e, "")))
		}
	}, true)

	v.on(v.document, "wheel", func(e js.Value) {
		vp := v.viewport()
		if !vp.Truthy() || !vp.Call("contains", e.Get("target")).Bool() {
			return
		}
		e.Call("preventDefault")
		rect := vp.Call("getBoundingClientRect")
		v.apply(v.canvas.Wheel(interact.WheelEvent{
			X:      e.Get("clientX").Float() - rect.Get("left").Float(),
			Y:      e.Get("clientY").Float() - rect.Get("top").Float(),
			DeltaY: e.Get("deltaY").Float(),
		}))
	}, false)

	v.on(v.document, "contextmenu", func(e js.Value) {
		if topicAt(e.Get("target")) != "" {
			e.Call("preventDefault")
		}
	}, false)

	v.on(v.document, "click", func(e js.Value) {
		target := e.Get("target")
		if target.Get("closest").IsUndefined() {
			return
		}
		if action := target.Call("closest", "[data-action]"); action.Truthy() {
			v.apply(v.canvas.Action(action.Call("getAttribute", "data-action").String()))
			return
		}
		// keyboard activation has no pointer sequence behind it
		if e.Get("detail").Int() == 0 {
			if id := topicAt(target); id != "" {
				v.apply(v.canvas.Click(id))
			}
		}
	}, true)

	v.on(v.document, "keydown", func(e js.Value) {
		v.apply(v.canvas.Key(interact.KeyEvent{Key: e.Get("key").String()}))
	}, true)

	v.on(v.window, "resize", func(js.Value) { v.resize() }, true)
}

// requestFrame schedules the idle drift. Offsets go straight to the node
// elements as CSS variables and are mirrored into the last scene.
func (v *viewer) requestFrame() {
	if v.ticking {
		return
	}
	var tick js.Func
	tick = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if v.stopped {
			// a frame may still be pending after stop
			tick.Release()
			return nil
		}
		t := args[0].Float() / 1000
		dragging := v.canvas.DraggingID()
		store := v.canvas.Store()
		for i := 0; i < store.Len(); i++ {
			id := store.At(i).ID
			el := v.document.Call("getElementById", render.NodeElementID(id))
			if !el.Truthy() {
				continue
			}
			off := render.IdleOffset(id, t, id == dragging)
			v.idle[id] = off
			style := el.Get("style")
			style.Call("setProperty", "--idle-x", render.FormatPx(off.X))
			style.Call("setProperty", "--idle-y", render.FormatPx(off.Y))
			// mirror into the last scene so the next diff leaves it alone
			if node, ok := v.index[render.NodeElementID(id)]; ok {
				node.Props["style"] = render.IdleStyle(render.NodeStyle(id, store.PositionAt(i)), off)
			}
		}
		v.window.Call("requestAnimationFrame", tick)
		return nil
	})
	v.ticking = true
	v.window.Call("requestAnimationFrame", tick)
}

func (v *viewer) stop() {
	v.stopped = true
	for _, remove := range v.remove {
		remove()
	}
	for _, f := range v.funcs {
		f.Release()
	}
	v.funcs, v.remove = nil, nil
}
