// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"gioui.org/f32"

	"github.com/gestalt-go/gestalt/io/pointer"
	"github.com/gestalt-go/gestalt/view"
)

// hit is a hit test for one new pointer.
type hit struct {
	o     *Orchestrator
	id    pointer.ID
	hover bool
}

// traverse hit tests t with p in the coordinates of t and reports
// whether t or one of its descendants is a target.
func (ht *hit) traverse(t view.Target, p f32.Point) bool {
	switch t.Opacity() {
	case view.Blocking:
		return false
	case view.SelfOnly:
		return ht.record(t, p) || handlerless(t, p)
	case view.ChildrenOnly:
		// The handlers of a transparent container join a hit in
		// its area, but the container itself never ends the
		// search among its siblings.
		found := ht.children(t, p)
		ht.record(t, p)
		return found
	default:
		found := ht.children(t, p)
		return ht.record(t, p) || found || handlerless(t, p)
	}
}

// children hit tests the children of t, topmost first, and stops
// at the first that is a target.
func (ht *hit) children(t view.Target, p f32.Point) bool {
	cs := t.Children()
	for i := len(cs) - 1; i >= 0; i-- {
		c := cs[i]
		cp := view.ToChild(t, c, p)
		if clips(c) && !view.Contains(c, cp) {
			continue
		}
		if ht.traverse(c, cp) {
			return true
		}
	}
	return false
}

// record registers the handlers of t that contain p.
func (ht *hit) record(t view.Target, p f32.Point) bool {
	found := false
	for _, h := range ht.o.finder.HandlersFor(t) {
		if !ht.accepts(h, t.Size(), p) {
			continue
		}
		ht.o.record(h, t)
		h.startTracking(ht.id)
		found = true
	}
	// The handlers of the ancestors of an overflowing target
	// may not have been reached.
	if view.Contains(t, p) && view.Overflows(t) && ht.ancestors(t, p) {
		found = true
	}
	return found
}

// ancestors registers the handlers of the ancestors of t, up to the
// root, whose hit slop applied to t contains p.
func (ht *hit) ancestors(t view.Target, p f32.Point) bool {
	found := false
	for a := t.Parent(); a != nil; a = a.Parent() {
		for _, h := range ht.o.finder.HandlersFor(a) {
			if !ht.accepts(h, t.Size(), p) {
				continue
			}
			ht.o.record(h, a)
			h.startTracking(ht.id)
			found = true
		}
		if a == ht.o.root {
			break
		}
	}
	return found
}

func (ht *hit) accepts(h *Handler, size, p f32.Point) bool {
	if !h.enabled || !h.isWithinBounds(size, p) {
		return false
	}
	return !ht.hover || h.hovers()
}

// handlerless reports whether t is a leaf containing p. Such a
// target stops the search among its siblings.
func handlerless(t view.Target, p f32.Point) bool {
	return view.IsLeaf(t) && view.Contains(t, p)
}

func clips(t view.Target) bool {
	return view.IsLeaf(t) || t.ClipsChildren()
}
