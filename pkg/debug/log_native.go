//go:build !js || !wasm

package debug

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

var (
	mu     sync.Mutex
	out    io.Writer = os.Stderr
	prefix           = color.New(color.FgHiBlack)
)

// SetOutput redirects debug output, stderr by default
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// EnableLogging routes the debug hooks of every package to the output
func EnableLogging() {
	enable(Log)
}

// Log writes one dimmed line
func Log(args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	prefix.Fprint(out, "debug ")
	fmt.Fprintln(out, args...)
}

// Logf writes one formatted line
func Logf(format string, args ...interface{}) {
	Log(fmt.Sprintf(format, args...))
}
