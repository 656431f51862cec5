// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"golang.org/x/exp/slices"
)

// Policy answers how a handler interacts with a competing one.
// The orchestrator consults the policies of both handlers of a
// pair and combines the answers; a Policy need not be symmetric.
type Policy interface {
	// ShouldWaitForFailure reports whether h may only activate
	// after other has failed.
	ShouldWaitForFailure(h, other *Handler) bool
	// ShouldRecognizeSimultaneously reports whether h and other
	// may be active at the same time.
	ShouldRecognizeSimultaneously(h, other *Handler) bool
	// ShouldBeCancelledBy reports whether the active or awaiting
	// handler h yields to winner when winner activates.
	ShouldBeCancelledBy(h, winner *Handler) bool
}

type defaultPolicy struct{}

func (defaultPolicy) ShouldWaitForFailure(h, other *Handler) bool          { return false }
func (defaultPolicy) ShouldRecognizeSimultaneously(h, other *Handler) bool { return false }
func (defaultPolicy) ShouldBeCancelledBy(h, winner *Handler) bool          { return false }

// Relations is a Policy built from relations between handler tags.
// The zero value has no relations.
type Relations struct {
	waitFor      map[int][]int
	blocks       map[int][]int
	simultaneous map[int][]int
	cancelledBy  map[int][]int
}

// WaitFor makes the handler tagged tag wait for the failure of the
// handlers tagged others.
func (r *Relations) WaitFor(tag int, others ...int) {
	r.waitFor = relate(r.waitFor, tag, others)
}

// Blocks makes the handlers tagged others wait for the failure of
// the handler tagged tag.
func (r *Relations) Blocks(tag int, others ...int) {
	r.blocks = relate(r.blocks, tag, others)
}

// Simultaneous lets the handler tagged tag be active together with
// the handlers tagged others.
func (r *Relations) Simultaneous(tag int, others ...int) {
	r.simultaneous = relate(r.simultaneous, tag, others)
}

// CancelledBy makes an active handler tagged tag yield to the
// handlers tagged others.
func (r *Relations) CancelledBy(tag int, others ...int) {
	r.cancelledBy = relate(r.cancelledBy, tag, others)
}

// Drop removes the relations declared for tag.
func (r *Relations) Drop(tag int) {
	delete(r.waitFor, tag)
	delete(r.blocks, tag)
	delete(r.simultaneous, tag)
	delete(r.cancelledBy, tag)
}

func (r *Relations) ShouldWaitForFailure(h, other *Handler) bool {
	return slices.Contains(r.waitFor[h.tag], other.tag) ||
		slices.Contains(r.blocks[other.tag], h.tag)
}

func (r *Relations) ShouldRecognizeSimultaneously(h, other *Handler) bool {
	return slices.Contains(r.simultaneous[h.tag], other.tag)
}

func (r *Relations) ShouldBeCancelledBy(h, winner *Handler) bool {
	return slices.Contains(r.cancelledBy[h.tag], winner.tag)
}

func relate(m map[int][]int, tag int, others []int) map[int][]int {
	if m == nil {
		m = make(map[int][]int)
	}
	for _, o := range others {
		if !slices.Contains(m[tag], o) {
			m[tag] = append(m[tag], o)
		}
	}
	return m
}
