// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/gestalt-go/gestalt/view"
)

// Finder returns the handlers attached to a target, in the order
// they should be hit tested.
type Finder interface {
	HandlersFor(t view.Target) []*Handler
}

// Registry attaches handlers to targets. A handler is attached to
// at most one target, and tags are unique.
type Registry struct {
	byTarget map[view.Target][]*Handler
	byTag    map[int]*Handler
	targets  map[*Handler]view.Target
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byTarget: make(map[view.Target][]*Handler),
		byTag:    make(map[int]*Handler),
		targets:  make(map[*Handler]view.Target),
	}
}

// Attach attaches h to t, detaching it from any previous target.
func (r *Registry) Attach(t view.Target, h *Handler) {
	if t == nil {
		panic(fmt.Errorf("gesture: %v: attach to nil target", h))
	}
	if o, ok := r.byTag[h.tag]; ok && o != h {
		panic(fmt.Errorf("gesture: duplicate handler tag %d", h.tag))
	}
	if old, ok := r.targets[h]; ok {
		if old == t {
			return
		}
		r.unlink(old, h)
	}
	r.byTag[h.tag] = h
	r.targets[h] = t
	r.byTarget[t] = append(r.byTarget[t], h)
}

// Detach removes h from the registry, cancelling it if it takes
// part in a touch sequence.
func (r *Registry) Detach(h *Handler) {
	t, ok := r.targets[h]
	if !ok {
		return
	}
	r.unlink(t, h)
	delete(r.targets, h)
	delete(r.byTag, h.tag)
	if h.orch != nil {
		h.Cancel()
	}
}

// DropTarget detaches every handler attached to t.
func (r *Registry) DropTarget(t view.Target) {
	for _, h := range slices.Clone(r.byTarget[t]) {
		r.Detach(h)
	}
}

// Handler returns the handler tagged tag.
func (r *Registry) Handler(tag int) (*Handler, bool) {
	h, ok := r.byTag[tag]
	return h, ok
}

// HandlersFor implements Finder.
func (r *Registry) HandlersFor(t view.Target) []*Handler {
	return r.byTarget[t]
}

func (r *Registry) unlink(t view.Target, h *Handler) {
	hs := r.byTarget[t]
	if i := slices.Index(hs, h); i != -1 {
		hs = slices.Delete(hs, i, i+1)
	}
	if len(hs) == 0 {
		delete(r.byTarget, t)
	} else {
		r.byTarget[t] = hs
	}
}
