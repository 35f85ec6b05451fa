package vdom

import "sort"

// VKind represents the type of virtual node
type VKind uint8

const (
	// KindElement represents a DOM element node
	KindElement VKind = iota
	// KindText represents a text node
	KindText
	// KindFragment groups children without a parent element.
	// Fragments are flattened into their parent when diffing and rendering.
	KindFragment
)

// Props represents the attributes of a VNode
type Props map[string]any

// Keys returns the attribute names in sorted order, skipping "key"
func (p Props) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		if k == "key" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// VNode represents a virtual DOM node.
// Trees are treated as immutable once built.
type VNode struct {
	// Kind determines the type of this node
	Kind VKind

	// Tag is the element tag name (e.g., "div", "svg")
	// Only used when Kind == KindElement
	Tag string

	// Props contains all attributes for this node
	Props Props

	// Kids contains child nodes
	Kids []VNode

	// Key identifies a child among its siblings. A child whose key changes
	// is replaced rather than patched.
	Key string

	// Text content (only used when Kind == KindText)
	Text string
}

// NewElement creates a new element VNode
func NewElement(tag string, props Props, children ...*VNode) *VNode {
	kids := make([]VNode, 0, len(children))
	for _, child := range children {
		if child != nil {
			kids = append(kids, *child)
		}
	}

	node := &VNode{
		Kind:  KindElement,
		Tag:   tag,
		Props: props,
		Kids:  kids,
	}
	if key, ok := props["key"].(string); ok {
		node.Key = key
	}
	return node
}

// NewText creates a new text VNode
func NewText(text string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: text,
	}
}

// NewFragment creates a new fragment VNode
func NewFragment(children ...*VNode) *VNode {
	kids := make([]VNode, 0, len(children))
	for _, child := range children {
		if child != nil {
			kids = append(kids, *child)
		}
	}

	return &VNode{
		Kind: KindFragment,
		Kids: kids,
	}
}

// IsElement returns true if this is an element node
func (v VNode) IsElement() bool {
	return v.Kind == KindElement
}

// IsText returns true if this is a text node
func (v VNode) IsText() bool {
	return v.Kind == KindText
}

// IsFragment returns true if this is a fragment node
func (v VNode) IsFragment() bool {
	return v.Kind == KindFragment
}

// GetKey returns the key of this node
func (v VNode) GetKey() string {
	if v.Key != "" {
		return v.Key
	}
	if key, ok := v.Props["key"].(string); ok {
		return key
	}
	return ""
}

// Attr returns an attribute rendered as a string and whether it is set
func (v VNode) Attr(name string) (string, bool) {
	val, ok := v.Props[name]
	if !ok {
		return "", false
	}
	return propToString(val), true
}

// Flatten expands fragment children in place, recursively
func Flatten(kids []VNode) []VNode {
	hasFragment := false
	for i := range kids {
		if kids[i].Kind == KindFragment {
			hasFragment = true
			break
		}
	}
	if !hasFragment {
		return kids
	}

	out := make([]VNode, 0, len(kids))
	for _, kid := range kids {
		if kid.Kind == KindFragment {
			out = append(out, Flatten(kid.Kids)...)
			continue
		}
		out = append(out, kid)
	}
	return out
}

// Find returns the first element in the tree whose id attribute equals id,
// along with its path.
func Find(root *VNode, id string) (*VNode, []int, bool) {
	if root == nil {
		return nil, nil, false
	}
	if v, ok := root.Attr("id"); ok && v == id {
		return root, []int{}, true
	}
	kids := Flatten(root.Kids)
	for i := range kids {
		if node, path, ok := Find(&kids[i], id); ok {
			return node, append([]int{i}, path...), true
		}
	}
	return nil, nil, false
}
