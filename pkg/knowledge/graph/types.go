// Package graph holds the knowledge map's graph model: normalized topics,
// laned links, and the Store that owns every topic position.
package graph

const (
	// CanvasExtent bounds the world square on both axes: positions always
	// stay within [-CanvasExtent, +CanvasExtent].
	CanvasExtent = 4000.0

	// NodeRadius is the offset applied to corner-anchored topics at load time.
	NodeRadius = 90.0

	// AnchorCenter is the only anchor a normalized topic carries.
	AnchorCenter = "center"
)

// Point is a position in world coordinates
type Point struct {
	X float64 `json:"x" yaml:"x" toml:"x"`
	Y float64 `json:"y" yaml:"y" toml:"y"`
}

// Resource is an external link shown in a topic's detail overlay
type Resource struct {
	Label string `json:"label" yaml:"label" toml:"label"`
	Href  string `json:"href" yaml:"href" toml:"href"`
}

// Detail is the content displayed when a topic is opened
type Detail struct {
	Overview  string     `json:"overview"`
	DeepDives []string   `json:"deepDives"`
	Resources []Resource `json:"resources"`
}

// Topic is a node of the knowledge map.
// Position is the only field that changes after load.
type Topic struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Position Point  `json:"position"`
	Anchor   string `json:"anchor"`
	Detail   Detail `json:"detail"`
}

// Link is an edge between two topics. Parallel links between the same
// pair of topics are fanned out into lanes.
type Link struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Target    string `json:"target"`
	LaneIndex int    `json:"laneIndex"`
	LaneCount int    `json:"laneCount"`
}

// Other returns the endpoint of l opposite to id.
func (l Link) Other(id string) string {
	if l.Source == id {
		return l.Target
	}
	return l.Source
}

// RawDetail is detail content as authored; every field is optional
type RawDetail struct {
	Overview  string     `json:"overview,omitempty" yaml:"overview,omitempty" toml:"overview,omitempty"`
	DeepDives []string   `json:"deepDives,omitempty" yaml:"deepDives,omitempty" toml:"deepDives,omitempty"`
	Resources []Resource `json:"resources,omitempty" yaml:"resources,omitempty" toml:"resources,omitempty"`
}

// RawTopic is a topic record as it appears in a source document
type RawTopic struct {
	ID       string     `json:"id" yaml:"id" toml:"id"`
	Label    string     `json:"label" yaml:"label" toml:"label"`
	Position *Point     `json:"position,omitempty" yaml:"position,omitempty" toml:"position,omitempty"`
	Anchor   string     `json:"anchor,omitempty" yaml:"anchor,omitempty" toml:"anchor,omitempty"`
	Detail   *RawDetail `json:"detail,omitempty" yaml:"detail,omitempty" toml:"detail,omitempty"`
}

// RawLink is an authored {source, target} pair
type RawLink struct {
	Source string `json:"source" yaml:"source" toml:"source"`
	Target string `json:"target" yaml:"target" toml:"target"`
}

// Document is the static source of a knowledge map
type Document struct {
	Topics []RawTopic `json:"topics" yaml:"topics" toml:"topics"`
	Links  []RawLink  `json:"links" yaml:"links" toml:"links"`
}

// Clamp limits a coordinate to the world square.
func Clamp(v float64) float64 {
	if v < -CanvasExtent {
		return -CanvasExtent
	}
	if v > CanvasExtent {
		return CanvasExtent
	}
	return v
}

// ClampPoint clamps both axes of p.
func ClampPoint(p Point) Point {
	return Point{X: Clamp(p.X), Y: Clamp(p.Y)}
}
