// SPDX-License-Identifier: Unlicense OR MIT

package view

import (
	"fmt"

	"gioui.org/f32"
)

// Node is a plain Target implementation for hosts that do not
// have a view tree of their own, and for tests.
type Node struct {
	Name string
	// Origin is the top left corner in parent coordinates.
	Origin f32.Point
	// Extent is the width and height.
	Extent f32.Point
	// Matrix is the transformation applied on top of Origin.
	Matrix f32.Affine2D
	// ScrollOffset shifts the children.
	ScrollOffset f32.Point
	Mode         Opacity
	// Overflow lets children extend outside the node's bounds
	// and still be hit there.
	Overflow bool

	parent   *Node
	children []*Node
}

// NewNode returns a node at origin with the given size.
func NewNode(name string, origin, size f32.Point) *Node {
	return &Node{Name: name, Origin: origin, Extent: size}
}

// Add appends children to n, drawn in argument order on top of
// existing children. A child attached elsewhere is moved.
func (n *Node) Add(children ...*Node) *Node {
	for _, c := range children {
		if c.parent != nil {
			c.parent.Remove(c)
		}
		c.parent = n
		n.children = append(n.children, c)
	}
	return n
}

// Remove detaches child from n.
func (n *Node) Remove(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

func (n *Node) Parent() Target {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *Node) Children() []Target {
	ts := make([]Target, len(n.children))
	for i, c := range n.children {
		ts[i] = c
	}
	return ts
}

func (n *Node) Opacity() Opacity        { return n.Mode }
func (n *Node) ClipsChildren() bool     { return !n.Overflow }
func (n *Node) Size() f32.Point         { return n.Extent }
func (n *Node) Offset() f32.Point       { return n.Origin }
func (n *Node) Transform() f32.Affine2D { return n.Matrix }
func (n *Node) Scroll() f32.Point       { return n.ScrollOffset }

func (n *Node) String() string {
	if n.Name != "" {
		return n.Name
	}
	return fmt.Sprintf("node@%v", n.Origin)
}
