package graph

import (
	"sort"
	"strconv"
)

// Normalize turns an authored topic into its canonical form.
//
// Missing detail fields become empty containers. A topic authored with a
// non-center anchor is shifted by NodeRadius on both axes and re-anchored at
// the center; this happens once, at load.
func Normalize(raw RawTopic) Topic {
	var pos Point
	if raw.Position != nil {
		pos = *raw.Position
	}
	if raw.Anchor != "" && raw.Anchor != AnchorCenter {
		pos.X += NodeRadius
		pos.Y += NodeRadius
	}

	detail := Detail{DeepDives: []string{}, Resources: []Resource{}}
	if raw.Detail != nil {
		detail.Overview = raw.Detail.Overview
		if raw.Detail.DeepDives != nil {
			detail.DeepDives = append(detail.DeepDives, raw.Detail.DeepDives...)
		}
		if raw.Detail.Resources != nil {
			detail.Resources = append(detail.Resources, raw.Detail.Resources...)
		}
	}

	return Topic{
		ID:       raw.ID,
		Label:    raw.Label,
		Position: ClampPoint(pos),
		Anchor:   AnchorCenter,
		Detail:   detail,
	}
}

// PairKey is the lane grouping key for an unordered endpoint pair.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "__" + b
}

type rawIndexed struct {
	RawLink
	index int
}

// Laneify assigns lanes to raw links.
//
// Links are grouped by unordered endpoint pair; within a group the lane
// index follows input order and the lane count is the group size. The result
// is in input order regardless of grouping.
func Laneify(raw []RawLink) []Link {
	return laneifyIndexed(indexRaw(raw))
}

func indexRaw(raw []RawLink) []rawIndexed {
	out := make([]rawIndexed, len(raw))
	for i, l := range raw {
		out[i] = rawIndexed{RawLink: l, index: i}
	}
	return out
}

// laneifyIndexed keeps the original input index in link ids even when some
// raw links were filtered out beforehand.
func laneifyIndexed(raw []rawIndexed) []Link {
	groups := make(map[string][]rawIndexed)
	for _, l := range raw {
		key := PairKey(l.Source, l.Target)
		groups[key] = append(groups[key], l)
	}

	type ordered struct {
		link  Link
		index int
	}
	out := make([]ordered, 0, len(raw))
	for _, group := range groups {
		sort.SliceStable(group, func(i, j int) bool { return group[i].index < group[j].index })
		for lane, l := range group {
			out = append(out, ordered{
				link: Link{
					ID:        l.Source + "-" + l.Target + "-" + strconv.Itoa(l.index),
					Source:    l.Source,
					Target:    l.Target,
					LaneIndex: lane,
					LaneCount: len(group),
				},
				index: l.index,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].index < out[j].index })

	links := make([]Link, len(out))
	for i, o := range out {
		links[i] = o.link
	}
	return links
}

// BuildAdjacency indexes every link under both of its endpoints.
// A self-loop is listed twice under its single endpoint.
func BuildAdjacency(links []Link) map[string][]Link {
	adj := make(map[string][]Link)
	for _, l := range links {
		adj[l.Source] = append(adj[l.Source], l)
		adj[l.Target] = append(adj[l.Target], l)
	}
	return adj
}
