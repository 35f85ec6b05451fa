package graph

// debugLog is set by platform-specific code
var debugLog func(args ...interface{})

// SetDebugLog sets the debug logging function
func SetDebugLog(fn func(args ...interface{})) {
	debugLog = fn
}

// Store owns the topics of one knowledge map together with the lookup,
// positional index and adjacency derived from them.
//
// The topic slice is allocated once; lookup entries point into it, so a
// position written through any accessor is visible through all of them.
// Store is not safe for concurrent use: each interactive session owns one.
type Store struct {
	topics    []Topic
	lookup    map[string]*Topic
	index     map[string]int
	links     []Link
	linkIndex map[string]int
	adjacency map[string][]Link
}

// Snapshot is a copy of every topic position, by positional index
type Snapshot []Point

// New builds a store from a source document.
//
// Topics are normalized; a repeated topic id keeps its first occurrence.
// Links whose endpoints do not resolve are dropped before lanes are assigned.
func New(doc Document) *Store {
	s := &Store{
		topics:    make([]Topic, 0, len(doc.Topics)),
		index:     make(map[string]int, len(doc.Topics)),
		lookup:    make(map[string]*Topic, len(doc.Topics)),
		linkIndex: make(map[string]int, len(doc.Links)),
	}

	for _, raw := range doc.Topics {
		if _, dup := s.index[raw.ID]; dup {
			if debugLog != nil {
				debugLog("[Graph] dropping duplicate topic", raw.ID)
			}
			continue
		}
		s.index[raw.ID] = len(s.topics)
		s.topics = append(s.topics, Normalize(raw))
	}
	for i := range s.topics {
		s.lookup[s.topics[i].ID] = &s.topics[i]
	}

	resolved := make([]rawIndexed, 0, len(doc.Links))
	for i, l := range doc.Links {
		if _, ok := s.index[l.Source]; !ok {
			continue
		}
		if _, ok := s.index[l.Target]; !ok {
			continue
		}
		resolved = append(resolved, rawIndexed{RawLink: l, index: i})
	}
	if dropped := len(doc.Links) - len(resolved); dropped > 0 && debugLog != nil {
		debugLog("[Graph] dropped", dropped, "links with unknown endpoints")
	}

	s.links = laneifyIndexed(resolved)
	for i, l := range s.links {
		s.linkIndex[l.ID] = i
	}
	s.adjacency = BuildAdjacency(s.links)
	return s
}

// Len returns the number of topics
func (s *Store) Len() int { return len(s.topics) }

// At returns the topic at positional index i
func (s *Store) At(i int) Topic { return s.topics[i] }

// Topic looks a topic up by id
func (s *Store) Topic(id string) (Topic, bool) {
	t, ok := s.lookup[id]
	if !ok {
		return Topic{}, false
	}
	return *t, true
}

// Has reports whether id names a topic
func (s *Store) Has(id string) bool {
	_, ok := s.lookup[id]
	return ok
}

// Index returns the stable ordinal of a topic
func (s *Store) Index(id string) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}

// IDs returns topic ids in positional order
func (s *Store) IDs() []string {
	ids := make([]string, len(s.topics))
	for i := range s.topics {
		ids[i] = s.topics[i].ID
	}
	return ids
}

// Topics returns a copy of every topic in positional order
func (s *Store) Topics() []Topic {
	out := make([]Topic, len(s.topics))
	copy(out, s.topics)
	return out
}

// Position returns the current position of a topic
func (s *Store) Position(id string) (Point, bool) {
	t, ok := s.lookup[id]
	if !ok {
		return Point{}, false
	}
	return t.Position, true
}

// PositionAt returns the position of the topic at index i
func (s *Store) PositionAt(i int) Point { return s.topics[i].Position }

// SetPosition moves a topic, clamping it to the world square.
// It returns false when id is unknown.
func (s *Store) SetPosition(id string, p Point) bool {
	t, ok := s.lookup[id]
	if !ok {
		return false
	}
	t.Position = ClampPoint(p)
	return true
}

// Links returns every link in source order
func (s *Store) Links() []Link { return s.links }

// Link looks a link up by id
func (s *Store) Link(id string) (Link, bool) {
	i, ok := s.linkIndex[id]
	if !ok {
		return Link{}, false
	}
	return s.links[i], true
}

// Adjacent returns the links incident to a topic, in source order
func (s *Store) Adjacent(id string) []Link { return s.adjacency[id] }

// Snapshot copies every position
func (s *Store) Snapshot() Snapshot {
	snap := make(Snapshot, len(s.topics))
	for i := range s.topics {
		snap[i] = s.topics[i].Position
	}
	return snap
}

// Restore writes a snapshot back. Snapshots from a store of a different
// size are ignored.
func (s *Store) Restore(snap Snapshot) bool {
	if len(snap) != len(s.topics) {
		return false
	}
	for i := range s.topics {
		s.topics[i].Position = snap[i]
	}
	return true
}

// Clone returns an independent store with the same topics, links and positions.
func (s *Store) Clone() *Store {
	c := &Store{
		topics:    make([]Topic, len(s.topics)),
		lookup:    make(map[string]*Topic, len(s.topics)),
		index:     make(map[string]int, len(s.index)),
		links:     s.links,
		linkIndex: s.linkIndex,
		adjacency: s.adjacency,
	}
	copy(c.topics, s.topics)
	for i := range c.topics {
		c.index[c.topics[i].ID] = i
		c.lookup[c.topics[i].ID] = &c.topics[i]
	}
	return c
}

// Export converts the store back into a document carrying current positions.
func (s *Store) Export() Document {
	doc := Document{
		Topics: make([]RawTopic, len(s.topics)),
		Links:  make([]RawLink, len(s.links)),
	}
	for i, t := range s.topics {
		pos := t.Position
		detail := t.Detail
		doc.Topics[i] = RawTopic{
			ID:       t.ID,
			Label:    t.Label,
			Position: &pos,
			Anchor:   t.Anchor,
			Detail: &RawDetail{
				Overview:  detail.Overview,
				DeepDives: detail.DeepDives,
				Resources: detail.Resources,
			},
		}
	}
	for i, l := range s.links {
		doc.Links[i] = RawLink{Source: l.Source, Target: l.Target}
	}
	return doc
}
