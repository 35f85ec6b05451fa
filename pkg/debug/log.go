//go:build js && wasm
// +build js,wasm

package debug

import (
	"fmt"
	"syscall/js"

	"github.com/recera/knowledgemap/pkg/renderer/dom"
)

// EnableLogging routes the debug hooks of every package to the console
func EnableLogging() {
	logFn := func(args ...interface{}) {
		js.Global().Get("console").Call("log", args...)
	}
	enable(logFn)
	dom.SetDebugLog(logFn)
}

// Log logs a message to the console
func Log(args ...interface{}) {
	js.Global().Get("console").Call("log", args...)
}

// Logf logs a formatted message to the console
func Logf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	js.Global().Get("console").Call("log", msg)
}
