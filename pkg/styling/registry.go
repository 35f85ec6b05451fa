package styling

import (
	"sort"
	"strings"
	"sync"
)

// StyleRegistry collects all component styles for injection
type StyleRegistry struct {
	mu     sync.RWMutex
	styles map[string]*ComponentStyle
}

var (
	globalRegistry = &StyleRegistry{
		styles: make(map[string]*ComponentStyle),
	}
)

// Register adds a component style to the global registry.
// A later sheet with the same name replaces the earlier one.
func Register(style *ComponentStyle) {
	if style == nil || style.CSS == "" {
		return
	}

	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	key := style.Name
	if key == "" {
		key = style.Hash
	}

	globalRegistry.styles[key] = style
}

// GetAllCSS returns all registered CSS as a single string, in name order
func GetAllCSS() string {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	keys := make([]string, 0, len(globalRegistry.styles))
	for k := range globalRegistry.styles {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var cssBuilder strings.Builder
	for _, k := range keys {
		cssBuilder.WriteString(globalRegistry.styles[k].CSS)
		cssBuilder.WriteString("\n")
	}

	return cssBuilder.String()
}

// Lookup returns the sheet registered under name
func Lookup(name string) (*ComponentStyle, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	s, ok := globalRegistry.styles[name]
	return s, ok
}

// Reset clears all registered styles (useful for testing)
func Reset() {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.styles = make(map[string]*ComponentStyle)
}

// StyleWithRegistry creates a new ComponentStyle and registers it
func StyleWithRegistry(name, css string) *ComponentStyle {
	style := Style(name, css)
	Register(style)
	return style
}
