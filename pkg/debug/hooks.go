// Package debug switches on the trace output of the knowledge map packages.
package debug

import (
	"github.com/recera/knowledgemap/pkg/knowledge/graph"
	"github.com/recera/knowledgemap/pkg/knowledge/interact"
	"github.com/recera/knowledgemap/pkg/knowledge/physics"
	"github.com/recera/knowledgemap/pkg/reactive"
)

func enable(fn func(args ...interface{})) {
	graph.SetDebugLog(fn)
	physics.SetDebugLog(fn)
	interact.SetDebugLog(fn)
	reactive.SetDebugLog(fn)
}

// DisableLogging detaches every hook
func DisableLogging() {
	enable(nil)
}
