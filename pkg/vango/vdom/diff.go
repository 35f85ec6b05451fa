package vdom

import (
	"fmt"
	"strconv"
)

// PatchOp represents the type of patch operation
type PatchOp uint8

const (
	// OpReplaceText replaces text node content
	OpReplaceText PatchOp = 0x01
	// OpSetAttribute sets or replaces an attribute
	OpSetAttribute PatchOp = 0x02
	// OpRemoveNode removes a node
	OpRemoveNode PatchOp = 0x03
	// OpInsertNode inserts a new node so that it ends up at Path
	OpInsertNode PatchOp = 0x04
	// OpRemoveAttribute removes an attribute
	OpRemoveAttribute PatchOp = 0x06
	// OpReplaceNode swaps the node at Path for Node
	OpReplaceNode PatchOp = 0x08
)

// Patch represents a single DOM mutation.
//
// Path addresses the target by child index from the root, counting the
// children of fragments as children of the enclosing element. An empty
// path is the root itself. Patches must be applied in order.
type Patch struct {
	Op    PatchOp
	Path  []int
	Key   string // Attribute key for set/remove attribute
	Value string // Text content or attribute value
	Node  *VNode // For insert and replace operations
}

// String returns a human-readable representation of the patch
func (p Patch) String() string {
	switch p.Op {
	case OpReplaceText:
		return fmt.Sprintf("ReplaceText(path=%v, text=%q)", p.Path, p.Value)
	case OpSetAttribute:
		return fmt.Sprintf("SetAttribute(path=%v, key=%q, value=%q)", p.Path, p.Key, p.Value)
	case OpRemoveAttribute:
		return fmt.Sprintf("RemoveAttribute(path=%v, key=%q)", p.Path, p.Key)
	case OpRemoveNode:
		return fmt.Sprintf("RemoveNode(path=%v)", p.Path)
	case OpInsertNode:
		return fmt.Sprintf("InsertNode(path=%v)", p.Path)
	case OpReplaceNode:
		return fmt.Sprintf("ReplaceNode(path=%v)", p.Path)
	default:
		return fmt.Sprintf("Unknown(op=%d)", p.Op)
	}
}

// Diff computes the patches needed to transform prev into next
func Diff(prev, next *VNode) []Patch {
	var patches []Patch
	diffNode(&patches, prev, next, []int{})
	return patches
}

// diffNode recursively diffs two nodes sitting at path
func diffNode(patches *[]Patch, prev, next *VNode, path []int) {
	switch {
	case prev == nil && next == nil:
		return
	case next == nil:
		*patches = append(*patches, Patch{Op: OpRemoveNode, Path: path})
		return
	case prev == nil:
		*patches = append(*patches, Patch{Op: OpInsertNode, Path: path, Node: next})
		return
	}

	if prev.Kind != next.Kind || prev.Tag != next.Tag || prev.GetKey() != next.GetKey() {
		*patches = append(*patches, Patch{Op: OpReplaceNode, Path: path, Node: next})
		return
	}

	switch prev.Kind {
	case KindText:
		if prev.Text != next.Text {
			*patches = append(*patches, Patch{Op: OpReplaceText, Path: path, Value: next.Text})
		}

	case KindElement:
		diffProps(patches, path, prev.Props, next.Props)
		diffChildren(patches, path, prev.Kids, next.Kids)

	case KindFragment:
		diffChildren(patches, path, prev.Kids, next.Kids)
	}
}

// diffProps emits removals first, then additions and changes, each in
// attribute name order.
func diffProps(patches *[]Patch, path []int, prevProps, nextProps Props) {
	for _, key := range prevProps.Keys() {
		if _, exists := nextProps[key]; !exists {
			*patches = append(*patches, Patch{Op: OpRemoveAttribute, Path: path, Key: key})
		}
	}

	for _, key := range nextProps.Keys() {
		nextVal := nextProps[key]
		prevVal, exists := prevProps[key]
		if exists && propsEqual(prevVal, nextVal) {
			continue
		}
		*patches = append(*patches, Patch{
			Op:    OpSetAttribute,
			Path:  path,
			Key:   key,
			Value: propToString(nextVal),
		})
	}
}

// diffChildren matches children by position
func diffChildren(patches *[]Patch, path []int, prevKids, nextKids []VNode) {
	prevKids = Flatten(prevKids)
	nextKids = Flatten(nextKids)

	common := len(prevKids)
	if len(nextKids) < common {
		common = len(nextKids)
	}

	for i := 0; i < common; i++ {
		diffNode(patches, &prevKids[i], &nextKids[i], childPath(path, i))
	}

	// Remove from the end so earlier paths stay valid
	for i := len(prevKids) - 1; i >= common; i-- {
		diffNode(patches, &prevKids[i], nil, childPath(path, i))
	}

	for i := common; i < len(nextKids); i++ {
		diffNode(patches, nil, &nextKids[i], childPath(path, i))
	}
}

func childPath(path []int, i int) []int {
	out := make([]int, len(path)+1)
	copy(out, path)
	out[len(path)] = i
	return out
}

func propsEqual(a, b any) bool {
	return propToString(a) == propToString(b)
}

func propToString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", v)
	}
}
