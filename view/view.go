// SPDX-License-Identifier: Unlicense OR MIT

/*
Package view describes the visual-target tree that gesture
recognizers attach to.

The gesture orchestrator never depends on a concrete view
implementation. It walks any tree of Targets, consulting each
node's Opacity to decide whether the node, its children or
neither can be the target of a new pointer.

Coordinates follow package f32: the origin is the top left corner
of a target, with axes extending right and down. A target is
placed in its parent at Offset, shifted by the parent's Scroll,
and then transformed by its own Transform.
*/
package view

import (
	"gioui.org/f32"
)

// Target is a node in the visual tree.
type Target interface {
	// Parent returns the parent target, or nil for the root.
	Parent() Target
	// Children returns the child targets in draw order, the
	// last child being drawn topmost.
	Children() []Target
	// Opacity returns the event opacity of the target.
	Opacity() Opacity
	// ClipsChildren reports whether children are clipped to
	// the bounds of the target.
	ClipsChildren() bool
	// Size returns the width and height of the target.
	Size() f32.Point
	// Offset returns the position of the top left corner in
	// the coordinate space of the parent.
	Offset() f32.Point
	// Transform returns the transformation applied to the
	// target in addition to its offset. The zero value is the
	// identity.
	Transform() f32.Affine2D
	// Scroll returns the scroll offset applied to the children.
	Scroll() f32.Point
}

// Opacity controls how a target takes part in hit testing.
type Opacity uint8

const (
	// Auto lets both the target and its children be targets.
	Auto Opacity = iota
	// Blocking excludes the target and all its descendants.
	Blocking
	// SelfOnly makes the target the only candidate; its
	// children are never visited.
	SelfOnly
	// ChildrenOnly makes the target transparent: only its
	// children end the search among siblings, but the target's
	// own recognizers join any hit within their bounds.
	ChildrenOnly
)

// ToChild maps a point in the coordinate space of parent to the
// coordinate space of its child.
func ToChild(parent, child Target, p f32.Point) f32.Point {
	return childTransform(parent, child).Transform(p)
}

// Local returns the transformation from the coordinate space of
// root to the coordinate space of t. The target t must be root
// or a descendant of it; detached targets are mapped as if their
// topmost ancestor was the root.
func Local(root, t Target) f32.Affine2D {
	if t == nil || t == root {
		return f32.Affine2D{}
	}
	parent := t.Parent()
	if parent == nil {
		return f32.Affine2D{}
	}
	return childTransform(parent, t).Mul(Local(root, parent))
}

// Contains reports whether p, in the coordinate space of t, lies
// within the bounds of t. Edges are inclusive.
func Contains(t Target, p f32.Point) bool {
	sz := t.Size()
	return 0 <= p.X && p.X <= sz.X && 0 <= p.Y && p.Y <= sz.Y
}

// Overflows reports whether t extends outside the bounds of its
// parent.
func Overflows(t Target) bool {
	parent := t.Parent()
	if parent == nil {
		return false
	}
	origin := t.Transform().Transform(f32.Point{}).Add(t.Offset())
	sz, psz := t.Size(), parent.Size()
	return origin.X < 0 || origin.X+sz.X > psz.X ||
		origin.Y < 0 || origin.Y+sz.Y > psz.Y
}

// AttachedUnder reports whether t is root or one of its
// descendants.
func AttachedUnder(root, t Target) bool {
	for t != nil {
		if t == root {
			return true
		}
		t = t.Parent()
	}
	return false
}

// IsLeaf reports whether t has no children.
func IsLeaf(t Target) bool {
	return len(t.Children()) == 0
}

func childTransform(parent, child Target) f32.Affine2D {
	tr := f32.Affine2D{}.Offset(parent.Scroll().Sub(child.Offset()))
	if m := child.Transform(); m != (f32.Affine2D{}) {
		tr = m.Invert().Mul(tr)
	}
	return tr
}

func (o Opacity) String() string {
	switch o {
	case Auto:
		return "Auto"
	case Blocking:
		return "Blocking"
	case SelfOnly:
		return "SelfOnly"
	case ChildrenOnly:
		return "ChildrenOnly"
	default:
		panic("invalid Opacity")
	}
}
