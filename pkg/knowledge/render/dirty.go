package render

import "github.com/recera/knowledgemap/pkg/knowledge/physics"

// DirtySet is a physics.Visual that records which topics and links need
// repainting, for front ends that flush once per event.
type DirtySet struct {
	nodes physics.IDSet
	links physics.IDSet
}

func (d *DirtySet) UpdateNodeVisual(id string) { d.nodes.Add(id) }
func (d *DirtySet) UpdateLinkVisual(id string) { d.links.Add(id) }

// Empty reports whether nothing was recorded since the last Drain
func (d *DirtySet) Empty() bool {
	return d.nodes.Len() == 0 && d.links.Len() == 0
}

// Drain returns the recorded ids in first-touched order and resets the set
func (d *DirtySet) Drain() (nodes, links []string) {
	nodes, links = d.nodes.IDs(), d.links.IDs()
	d.nodes = physics.NewIDSet()
	d.links = physics.NewIDSet()
	return nodes, links
}

// Tee fans visual updates out to several receivers
type Tee []physics.Visual

func (t Tee) UpdateNodeVisual(id string) {
	for _, v := range t {
		v.UpdateNodeVisual(id)
	}
}

func (t Tee) UpdateLinkVisual(id string) {
	for _, v := range t {
		v.UpdateLinkVisual(id)
	}
}
