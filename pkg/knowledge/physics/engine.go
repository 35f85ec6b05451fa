package physics

import (
	"math"
	"math/rand"

	"github.com/recera/knowledgemap/pkg/knowledge/graph"
)

// debugLog is set by platform-specific code
var debugLog func(args ...interface{})

// SetDebugLog sets the debug logging function
func SetDebugLog(fn func(args ...interface{})) {
	debugLog = fn
}

// Visual is the direct positional update channel. The engine calls it for
// every topic it moves and for every link incident to that topic, so a
// render layer can patch just those elements instead of re-rendering.
type Visual interface {
	UpdateNodeVisual(id string)
	UpdateLinkVisual(id string)
}

// NopVisual discards updates
type NopVisual struct{}

func (NopVisual) UpdateNodeVisual(string) {}
func (NopVisual) UpdateLinkVisual(string) {}

// Engine runs the layout algorithms against a store it does not own.
type Engine struct {
	store  *graph.Store
	cfg    Config
	visual Visual
	rand   *rand.Rand
}

// Option configures an Engine
type Option func(*Engine)

// WithVisual routes position updates to v
func WithVisual(v Visual) Option {
	return func(e *Engine) {
		if v != nil {
			e.visual = v
		}
	}
}

// WithRand sets the jitter source used for coincident topics
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rand = r
		}
	}
}

// NewEngine creates an engine over store
func NewEngine(store *graph.Store, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		cfg:    cfg.withDefaults(),
		visual: NopVisual{},
		rand:   rand.New(rand.NewSource(rand.Int63())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the effective configuration
func (e *Engine) Config() Config { return e.cfg }

// SetVisual swaps the update channel
func (e *Engine) SetVisual(v Visual) {
	if v == nil {
		v = NopVisual{}
	}
	e.visual = v
}

// Refresh notifies the visual channel about a topic and its incident links.
func (e *Engine) Refresh(id string) {
	e.visual.UpdateNodeVisual(id)
	for _, l := range e.store.Adjacent(id) {
		e.visual.UpdateLinkVisual(l.ID)
	}
}

// RefreshAll notifies the visual channel about every topic and link.
func (e *Engine) RefreshAll() {
	for i := 0; i < e.store.Len(); i++ {
		e.visual.UpdateNodeVisual(e.store.At(i).ID)
	}
	for _, l := range e.store.Links() {
		e.visual.UpdateLinkVisual(l.ID)
	}
}

func (e *Engine) move(id string, p graph.Point) {
	e.store.SetPosition(id, p)
	e.Refresh(id)
}

// PullConnected walks the graph breadth-first from rootID and pulls the far
// endpoint of every over-long link toward the near one.
//
// The pull is min(excess, StretchBand) * FollowFactor along the link. Each
// link is handled at most once and each topic is enqueued at most once per
// call, although a topic reached by several links may be pulled by each of
// them. It returns the ids that moved, in the order they first moved.
func (e *Engine) PullConnected(rootID string) IDSet {
	moved := NewIDSet()
	if !e.store.Has(rootID) {
		return moved
	}

	visited := NewIDSet(rootID)
	processed := make(map[string]struct{})
	queue := []string{rootID}

	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]
		current, ok := e.store.Position(currentID)
		if !ok {
			continue
		}

		for _, link := range e.store.Adjacent(currentID) {
			if _, done := processed[link.ID]; done {
				continue
			}
			processed[link.ID] = struct{}{}

			neighborID := link.Other(currentID)
			neighbor, ok := e.store.Position(neighborID)
			if !ok {
				continue
			}

			dx := current.X - neighbor.X
			dy := current.Y - neighbor.Y
			distance := math.Hypot(dx, dy)
			if distance == 0 {
				distance = 1
			}
			if distance <= e.cfg.MaxLinkLength {
				continue
			}

			excess := distance - e.cfg.MaxLinkLength
			pull := math.Min(excess, e.cfg.StretchBand) * e.cfg.FollowFactor
			e.move(neighborID, graph.Point{
				X: neighbor.X + dx/distance*pull,
				Y: neighbor.Y + dy/distance*pull,
			})
			moved.Add(neighborID)

			if visited.Add(neighborID) {
				queue = append(queue, neighborID)
			}
		}
	}
	return moved
}

// ResolveCollisions separates topics closer than MinNodeDistance, starting
// from the seeded ids and cascading to every topic it displaces.
//
// Both topics of an overlapping pair are pushed apart by half the overlap,
// except that a seed being scanned holds its own position. Coincident topics
// are separated by a random jitter. It returns every id that moved.
func (e *Engine) ResolveCollisions(origin IDSet) IDSet {
	return e.resolve(origin.IDs(), origin)
}

// Relax resolves every overlap in the layout without holding any topic in
// place. It is meant for authored layouts, before any interaction.
func (e *Engine) Relax() IDSet {
	return e.resolve(e.store.IDs(), NewIDSet())
}

func (e *Engine) resolve(seeds []string, pinned IDSet) IDSet {
	moved := NewIDSet()
	if len(seeds) == 0 {
		return moved
	}

	queue := make([]string, 0, len(seeds))
	pending := make(map[string]struct{}, len(seeds))
	enqueue := func(id string) {
		if _, ok := pending[id]; ok {
			return
		}
		pending[id] = struct{}{}
		queue = append(queue, id)
	}
	for _, id := range seeds {
		enqueue(id)
	}

	minDist := e.cfg.MinNodeDistance
	limit := e.cfg.CollisionBudget * e.store.Len()
	steps := 0

	for len(queue) > 0 {
		if steps >= limit {
			if debugLog != nil {
				debugLog("[Physics] collision budget exhausted after", steps, "steps,", len(queue), "pending")
			}
			break
		}
		steps++

		currentID := queue[0]
		queue = queue[1:]
		delete(pending, currentID)

		currentIndex, ok := e.store.Index(currentID)
		if !ok {
			continue
		}

		for i := 0; i < e.store.Len(); i++ {
			if i == currentIndex {
				continue
			}
			current := e.store.PositionAt(currentIndex)
			other := e.store.At(i)

			dx := other.Position.X - current.X
			dy := other.Position.Y - current.Y
			distance := math.Hypot(dx, dy)

			switch {
			case distance > 0 && distance < minDist-overlapEpsilon:
				push := (minDist - distance) / 2
				ux, uy := dx/distance, dy/distance

				e.move(other.ID, graph.Point{
					X: other.Position.X + ux*push,
					Y: other.Position.Y + uy*push,
				})
				if !pinned.Has(currentID) {
					e.move(currentID, graph.Point{
						X: current.X - ux*push,
						Y: current.Y - uy*push,
					})
					moved.Add(currentID)
					enqueue(currentID)
				}
				moved.Add(other.ID)
				enqueue(other.ID)

			case distance == 0:
				e.move(other.ID, graph.Point{
					X: other.Position.X + e.rand.Float64()*minDist - minDist/2,
					Y: other.Position.Y + e.rand.Float64()*minDist - minDist/2,
				})
				moved.Add(other.ID)
				enqueue(other.ID)
			}
		}
	}
	return moved
}

// Settle runs one interaction step for a topic that was just moved:
// pull its neighbourhood, then resolve collisions seeded with everything
// the pull moved plus the topic itself. It returns all moved ids.
func (e *Engine) Settle(id string) IDSet {
	moved := e.PullConnected(id)
	moved.Add(id)
	moved.Merge(e.ResolveCollisions(moved))
	return moved
}

// StretchRatios reports, for every link longer than MaxLinkLength, how far
// into the stretch band it reaches, in (StretchCutoff, 1].
func (e *Engine) StretchRatios() map[string]float64 {
	return StretchRatios(e.store, e.cfg)
}

// StretchRatios computes stretch ratios for store under cfg.
func StretchRatios(store *graph.Store, cfg Config) map[string]float64 {
	cfg = cfg.withDefaults()
	ratios := make(map[string]float64)
	for _, link := range store.Links() {
		src, ok := store.Position(link.Source)
		if !ok {
			continue
		}
		dst, ok := store.Position(link.Target)
		if !ok {
			continue
		}
		distance := math.Hypot(src.X-dst.X, src.Y-dst.Y)
		if distance <= cfg.MaxLinkLength {
			continue
		}
		ratio := math.Max(0, math.Min(1, (distance-cfg.MaxLinkLength)/cfg.StretchBand))
		if ratio > StretchCutoff {
			ratios[link.ID] = ratio
		}
	}
	return ratios
}

// Overlaps counts topic pairs closer than the configured minimum distance.
func Overlaps(store *graph.Store, cfg Config) int {
	cfg = cfg.withDefaults()
	n := 0
	for i := 0; i < store.Len(); i++ {
		a := store.PositionAt(i)
		for j := i + 1; j < store.Len(); j++ {
			b := store.PositionAt(j)
			if math.Hypot(a.X-b.X, a.Y-b.Y) < cfg.MinNodeDistance-overlapEpsilon {
				n++
			}
		}
	}
	return n
}
