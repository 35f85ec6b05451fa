//go:build !js || !wasm
// +build !js !wasm

package dom

import (
	"fmt"

	"github.com/recera/knowledgemap/pkg/vango/vdom"
)

// DOMApplier applies VNode patches to the browser DOM (stub for non-WASM builds)
type DOMApplier struct{}

// SetDebugLog sets the debug logging function (stub)
func SetDebugLog(fn func(args ...interface{})) {}

// NewDOMApplier creates a new DOM applier (stub)
func NewDOMApplier() *DOMApplier {
	return &DOMApplier{}
}

// Apply applies patches to transform the DOM (stub)
func (a *DOMApplier) Apply(patches []vdom.Patch) error {
	return fmt.Errorf("DOM applier is only available in WASM builds")
}
