// Package reactive provides small observable values for UI state that is
// changed by event handlers and read by renderers.
package reactive

import (
	"slices"
	"sync"
)

// debugLog is set by platform-specific code
var debugLog func(args ...interface{})

// SetDebugLog sets the debug logging function
func SetDebugLog(fn func(args ...interface{})) {
	debugLog = fn
}

// Watchable is anything that can report changes
type Watchable interface {
	// Watch registers fn to run after every change and returns a function
	// that removes it.
	Watch(fn func()) (cancel func())
}

// State represents a reactive state value
type State[T any] struct {
	value T
	equal func(a, b T) bool
	mu    sync.RWMutex

	subs   map[uint64]func(T)
	nextID uint64
	subsMu sync.RWMutex
}

// NewState creates a state that skips notifications when a Set stores an
// equal value.
func NewState[T comparable](initial T) *State[T] {
	return NewStateFunc(initial, func(a, b T) bool { return a == b })
}

// NewStateFunc creates a state with a custom equality. A nil equal means
// every Set notifies.
func NewStateFunc[T any](initial T, equal func(a, b T) bool) *State[T] {
	return &State[T]{
		value: initial,
		equal: equal,
		subs:  make(map[uint64]func(T)),
	}
}

// Get returns the current value
func (s *State[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set updates the value and notifies subscribers if it changed
func (s *State[T]) Set(value T) {
	s.Update(func(T) T { return value })
}

// Update atomically reads, modifies, and writes the value
func (s *State[T]) Update(fn func(T) T) {
	s.mu.Lock()
	oldValue := s.value
	newValue := fn(oldValue)
	if s.equal != nil && s.equal(oldValue, newValue) {
		s.mu.Unlock()
		return
	}
	s.value = newValue
	s.mu.Unlock()

	if debugLog != nil {
		debugLog("[State] Update, old:", oldValue, "new:", newValue)
	}
	s.notify()
}

// Subscribe registers fn to receive every new value. The returned function
// removes the subscription.
func (s *State[T]) Subscribe(fn func(T)) (cancel func()) {
	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

// Watch implements Watchable
func (s *State[T]) Watch(fn func()) func() {
	return s.Subscribe(func(T) { fn() })
}

// notify calls subscribers outside the locks, in subscription order
func (s *State[T]) notify() {
	value := s.Get()

	s.subsMu.RLock()
	ids := make([]uint64, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	s.subsMu.RUnlock()
	slices.Sort(ids)

	for _, id := range ids {
		s.subsMu.RLock()
		fn, ok := s.subs[id]
		s.subsMu.RUnlock()
		if ok {
			fn(value)
		}
	}
}

// Computed represents a memoized computed value. It is invalidated whenever
// one of its sources notifies.
type Computed[T any] struct {
	compute func() T
	value   T
	valid   bool
	mu      sync.Mutex
	cancels []func()
}

// NewComputed creates a computed value over sources
func NewComputed[T any](compute func() T, sources ...Watchable) *Computed[T] {
	c := &Computed[T]{compute: compute}
	for _, src := range sources {
		c.cancels = append(c.cancels, src.Watch(c.Invalidate))
	}
	return c
}

// Get returns the computed value, recalculating if necessary
func (c *Computed[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.valid {
		c.value = c.compute()
		c.valid = true
	}
	return c.value
}

// Invalidate marks the computed value as needing recalculation
func (c *Computed[T]) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}

// Dispose detaches the computed value from its sources
func (c *Computed[T]) Dispose() {
	for _, cancel := range c.cancels {
		cancel()
	}
	c.cancels = nil
}
