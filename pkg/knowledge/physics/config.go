// Package physics keeps a knowledge map readable while topics are dragged:
// a stretch-limiting pull drags neighbours along when a link grows too long,
// and collision resolution pushes overlapping topics apart.
package physics

const (
	// MaxLinkLength is the link length above which the far endpoint is pulled in
	MaxLinkLength = 420.0
	// StretchBand caps the excess that contributes to one pull step and
	// normalizes the stretch ratio
	StretchBand = 100.0
	// FollowFactor scales the capped excess into the pull distance
	FollowFactor = 0.45
	// MinNodeDistance is the closest two topic centers may sit
	MinNodeDistance = 190.0
	// CollisionBudget bounds collision resolution to CollisionBudget*N
	// worklist steps for a graph of N topics
	CollisionBudget = 64
	// StretchCutoff drops stretch ratios too small to show
	StretchCutoff = 0.001

	// overlapEpsilon keeps floating point residue from re-queueing pairs that
	// already sit at MinNodeDistance
	overlapEpsilon = 1e-9
)

// Config tunes the engine. Zero fields take the package defaults.
type Config struct {
	MaxLinkLength   float64 `yaml:"maxLinkLength,omitempty"`
	StretchBand     float64 `yaml:"stretchBand,omitempty"`
	FollowFactor    float64 `yaml:"followFactor,omitempty"`
	MinNodeDistance float64 `yaml:"minNodeDistance,omitempty"`
	CollisionBudget int     `yaml:"collisionBudget,omitempty"`
}

// DefaultConfig returns the constants the knowledge map was tuned with
func DefaultConfig() Config {
	return Config{
		MaxLinkLength:   MaxLinkLength,
		StretchBand:     StretchBand,
		FollowFactor:    FollowFactor,
		MinNodeDistance: MinNodeDistance,
		CollisionBudget: CollisionBudget,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxLinkLength > 0 {
		d.MaxLinkLength = c.MaxLinkLength
	}
	if c.StretchBand > 0 {
		d.StretchBand = c.StretchBand
	}
	if c.FollowFactor > 0 {
		d.FollowFactor = c.FollowFactor
	}
	if c.MinNodeDistance > 0 {
		d.MinNodeDistance = c.MinNodeDistance
	}
	if c.CollisionBudget > 0 {
		d.CollisionBudget = c.CollisionBudget
	}
	return d
}
