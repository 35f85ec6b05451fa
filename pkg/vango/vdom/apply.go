package vdom

import (
	"errors"
	"fmt"
)

// ErrBadPath is returned when a patch addresses a node that does not exist
var ErrBadPath = errors.New("vdom: patch path does not resolve")

// Clone deep-copies a tree, flattening fragments on the way
func Clone(node *VNode) *VNode {
	if node == nil {
		return nil
	}
	out := &VNode{
		Kind: node.Kind,
		Tag:  node.Tag,
		Key:  node.Key,
		Text: node.Text,
	}
	if node.Props != nil {
		out.Props = make(Props, len(node.Props))
		for k, v := range node.Props {
			out.Props[k] = v
		}
	}
	kids := Flatten(node.Kids)
	if len(kids) > 0 {
		out.Kids = make([]VNode, len(kids))
		for i := range kids {
			out.Kids[i] = *Clone(&kids[i])
		}
	}
	return out
}

// Apply replays patches against a copy of root and returns the result.
// It is the reference behaviour every patch consumer must match.
func Apply(root *VNode, patches []Patch) (*VNode, error) {
	root = Clone(root)
	for _, p := range patches {
		var err error
		root, err = applyPatch(root, p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	return root, nil
}

func applyPatch(root *VNode, p Patch) (*VNode, error) {
	if len(p.Path) == 0 {
		switch p.Op {
		case OpInsertNode, OpReplaceNode:
			return Clone(p.Node), nil
		case OpRemoveNode:
			return nil, nil
		}
		if root == nil {
			return nil, ErrBadPath
		}
		return root, applyInPlace(root, p)
	}

	parent, err := walk(root, p.Path[:len(p.Path)-1])
	if err != nil {
		return nil, err
	}
	i := p.Path[len(p.Path)-1]

	switch p.Op {
	case OpInsertNode:
		if i < 0 || i > len(parent.Kids) {
			return nil, ErrBadPath
		}
		parent.Kids = append(parent.Kids, VNode{})
		copy(parent.Kids[i+1:], parent.Kids[i:])
		parent.Kids[i] = *Clone(p.Node)
		return root, nil

	case OpRemoveNode:
		if i < 0 || i >= len(parent.Kids) {
			return nil, ErrBadPath
		}
		parent.Kids = append(parent.Kids[:i], parent.Kids[i+1:]...)
		return root, nil

	case OpReplaceNode:
		if i < 0 || i >= len(parent.Kids) {
			return nil, ErrBadPath
		}
		parent.Kids[i] = *Clone(p.Node)
		return root, nil
	}

	if i < 0 || i >= len(parent.Kids) {
		return nil, ErrBadPath
	}
	return root, applyInPlace(&parent.Kids[i], p)
}

func applyInPlace(node *VNode, p Patch) error {
	switch p.Op {
	case OpReplaceText:
		if node.Kind != KindText {
			return ErrBadPath
		}
		node.Text = p.Value
	case OpSetAttribute:
		if node.Props == nil {
			node.Props = make(Props)
		}
		node.Props[p.Key] = p.Value
	case OpRemoveAttribute:
		delete(node.Props, p.Key)
	default:
		return fmt.Errorf("vdom: unknown patch op %d", p.Op)
	}
	return nil
}

func walk(root *VNode, path []int) (*VNode, error) {
	node := root
	if node == nil {
		return nil, ErrBadPath
	}
	for _, i := range path {
		if i < 0 || i >= len(node.Kids) {
			return nil, ErrBadPath
		}
		node = &node.Kids[i]
	}
	return node, nil
}
