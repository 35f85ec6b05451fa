//go:build js && wasm
// +build js,wasm

package dom

import (
	"fmt"
	"syscall/js"

	"github.com/recera/knowledgemap/pkg/vango/vdom"
)

const svgNS = "http://www.w3.org/2000/svg"

// debugLog is set by platform-specific code
var debugLog func(args ...interface{})

// SetDebugLog sets the debug logging function
func SetDebugLog(fn func(args ...interface{})) {
	debugLog = fn
}

// DOMApplier applies path-addressed patches to the subtree under a root
// element. The DOM under root must mirror the tree the patches were diffed
// from, which holds for anything built by Mount.
type DOMApplier struct {
	document js.Value
	root     js.Value
}

// NewDOMApplier creates an applier for the element root
func NewDOMApplier(root js.Value) *DOMApplier {
	return &DOMApplier{
		document: js.Global().Get("document"),
		root:     root,
	}
}

// Root returns the current root element
func (a *DOMApplier) Root() js.Value { return a.root }

// Mount replaces the root element with a fresh rendering of node
func (a *DOMApplier) Mount(node *vdom.VNode) js.Value {
	el := a.Create(node, a.inSVG(a.root.Get("parentNode")))
	parent := a.root.Get("parentNode")
	if !parent.IsNull() && !parent.IsUndefined() {
		parent.Call("replaceChild", el, a.root)
	}
	a.root = el
	return el
}

// Apply applies patches in order
func (a *DOMApplier) Apply(patches []vdom.Patch) error {
	for _, patch := range patches {
		if debugLog != nil {
			debugLog("[DOM] Applying patch:", patch.String())
		}
		if err := a.applyPatch(patch); err != nil {
			return fmt.Errorf("failed to apply patch %v: %w", patch, err)
		}
	}
	return nil
}

// applyPatch applies a single patch to the DOM
func (a *DOMApplier) applyPatch(patch vdom.Patch) error {
	if len(patch.Path) == 0 {
		switch patch.Op {
		case vdom.OpReplaceNode:
			a.Mount(patch.Node)
			return nil
		case vdom.OpRemoveNode, vdom.OpInsertNode:
			return fmt.Errorf("cannot insert or remove the root")
		}
		return a.applyTo(a.root, patch)
	}

	parent, err := a.walk(patch.Path[:len(patch.Path)-1])
	if err != nil {
		return err
	}
	index := patch.Path[len(patch.Path)-1]
	kids := parent.Get("childNodes")

	switch patch.Op {
	case vdom.OpInsertNode:
		el := a.Create(patch.Node, a.inSVG(parent))
		if index >= kids.Length() {
			parent.Call("appendChild", el)
		} else {
			parent.Call("insertBefore", el, kids.Index(index))
		}
		return nil
	}

	if index >= kids.Length() {
		return fmt.Errorf("no child %d at %v", index, patch.Path)
	}
	node := kids.Index(index)

	switch patch.Op {
	case vdom.OpRemoveNode:
		parent.Call("removeChild", node)
		return nil
	case vdom.OpReplaceNode:
		parent.Call("replaceChild", a.Create(patch.Node, a.inSVG(parent)), node)
		return nil
	}
	return a.applyTo(node, patch)
}

// applyTo handles the patches that modify a node in place
func (a *DOMApplier) applyTo(node js.Value, patch vdom.Patch) error {
	switch patch.Op {
	case vdom.OpReplaceText:
		node.Set("textContent", patch.Value)
	case vdom.OpSetAttribute:
		node.Call("setAttribute", patch.Key, patch.Value)
	case vdom.OpRemoveAttribute:
		node.Call("removeAttribute", patch.Key)
	default:
		return fmt.Errorf("unknown patch operation: %v", patch.Op)
	}
	return nil
}

func (a *DOMApplier) walk(path []int) (js.Value, error) {
	node := a.root
	for depth, i := range path {
		kids := node.Get("childNodes")
		if i >= kids.Length() {
			return js.Undefined(), fmt.Errorf("no child %d at depth %d", i, depth)
		}
		node = kids.Index(i)
	}
	return node, nil
}

func (a *DOMApplier) inSVG(parent js.Value) bool {
	if parent.IsNull() || parent.IsUndefined() {
		return false
	}
	ns := parent.Get("namespaceURI")
	return ns.Truthy() && ns.String() == svgNS && parent.Get("tagName").String() != "foreignObject"
}

// Create builds the DOM for node. Elements under an svg element are
// created in the SVG namespace.
func (a *DOMApplier) Create(node *vdom.VNode, svg bool) js.Value {
	switch node.Kind {
	case vdom.KindText:
		return a.document.Call("createTextNode", node.Text)

	case vdom.KindFragment:
		frag := a.document.Call("createDocumentFragment")
		a.appendKids(frag, node.Kids, svg)
		return frag
	}

	svg = svg || node.Tag == "svg"
	var el js.Value
	if svg {
		el = a.document.Call("createElementNS", svgNS, node.Tag)
	} else {
		el = a.document.Call("createElement", node.Tag)
	}

	for _, key := range node.Props.Keys() {
		if key == "ref" {
			continue
		}
		if b, ok := node.Props[key].(bool); ok {
			if b {
				el.Call("setAttribute", key, "")
			}
			continue
		}
		value, _ := node.Attr(key)
		el.Call("setAttribute", key, value)
	}

	a.appendKids(el, node.Kids, svg && node.Tag != "foreignObject")
	return el
}

func (a *DOMApplier) appendKids(parent js.Value, kids []vdom.VNode, svg bool) {
	for _, kid := range vdom.Flatten(kids) {
		kid := kid
		parent.Call("appendChild", a.Create(&kid, svg))
	}
}
