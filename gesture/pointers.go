// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"errors"
	"fmt"

	"github.com/gestalt-go/gestalt/io/pointer"
)

// errAdapt is returned when a frame cannot be remapped to the
// compact pointer ids of a handler.
var errAdapt = errors.New("gesture: inconsistent pointer frame")

// compactor maps the sparse raw pointer ids tracked by a handler
// to the dense local ids 0..n-1. Local ids keep the order in which
// pointers were tracked: a new pointer takes id n, and releasing a
// pointer shifts the ids above it down by one.
type compactor struct {
	tracked [pointer.MaxPointers]trackedPointer
	n       int
	// scratch backs the Pointers of adapted frames.
	scratch [pointer.MaxPointers]pointer.Pointer
}

type trackedPointer struct {
	raw   pointer.ID
	local pointer.ID
}

// track starts tracking raw. It reports false if raw was already
// tracked or the tracker is full.
func (c *compactor) track(raw pointer.ID) bool {
	if _, ok := c.local(raw); ok || c.n == len(c.tracked) {
		return false
	}
	c.tracked[c.n] = trackedPointer{raw: raw, local: pointer.ID(c.n)}
	c.n++
	return true
}

// untrack stops tracking raw and returns the local id it had.
func (c *compactor) untrack(raw pointer.ID) (pointer.ID, bool) {
	for i := 0; i < c.n; i++ {
		if c.tracked[i].raw != raw {
			continue
		}
		l := c.tracked[i].local
		copy(c.tracked[i:c.n], c.tracked[i+1:c.n])
		c.n--
		c.tracked[c.n] = trackedPointer{}
		for j := range c.tracked[:c.n] {
			if c.tracked[j].local > l {
				c.tracked[j].local--
			}
		}
		return l, true
	}
	return 0, false
}

func (c *compactor) local(raw pointer.ID) (pointer.ID, bool) {
	for _, t := range c.tracked[:c.n] {
		if t.raw == raw {
			return t.local, true
		}
	}
	return 0, false
}

// count returns the number of tracked pointers.
func (c *compactor) count() int {
	return c.n
}

// shares reports whether c and o track a common raw pointer.
func (c *compactor) shares(o *compactor) bool {
	for _, t := range c.tracked[:c.n] {
		if _, ok := o.local(t.raw); ok {
			return true
		}
	}
	return false
}

func (c *compactor) reset() {
	*c = compactor{}
}

// identity reports whether f already contains exactly the tracked
// pointers with raw ids equal to their local ids.
func (c *compactor) identity(f pointer.Frame) bool {
	if len(f.Pointers) != c.n {
		return false
	}
	for _, p := range f.Pointers {
		if l, ok := c.local(p.ID); !ok || l != p.ID {
			return false
		}
	}
	return true
}

// adapt returns f restricted to the tracked pointers, with local
// ids. A Press or Release of an untracked pointer becomes a Move.
// The returned frame aliases the compactor's scratch buffer.
func (c *compactor) adapt(f pointer.Frame) (pointer.Frame, error) {
	if len(f.Pointers) > pointer.MaxPointers {
		return f, fmt.Errorf("%w: %d pointers", errAdapt, len(f.Pointers))
	}
	for i, p := range f.Pointers {
		for _, p2 := range f.Pointers[:i] {
			if p.ID == p2.ID {
				return f, fmt.Errorf("%w: duplicate pointer %d", errAdapt, p.ID)
			}
		}
	}
	changed := -1
	switch f.Kind {
	case pointer.Press, pointer.Release, pointer.Hover, pointer.Leave:
		if f.Changed < 0 || f.Changed >= len(f.Pointers) {
			return f, fmt.Errorf("%w: changed index %d of %d", errAdapt, f.Changed, len(f.Pointers))
		}
		changed = f.Changed
	}
	if c.identity(f) {
		return f, nil
	}
	out := f
	out.Changed = 0
	if changed != -1 {
		if _, ok := c.local(f.Pointers[changed].ID); !ok {
			out.Kind = pointer.Move
		}
	}
	n := 0
	for i, p := range f.Pointers {
		l, ok := c.local(p.ID)
		if !ok {
			continue
		}
		if i == changed {
			out.Changed = n
		}
		c.scratch[n] = pointer.Pointer{ID: l, Position: p.Position}
		n++
	}
	if n != c.n {
		return f, fmt.Errorf("%w: %d of %d tracked pointers present", errAdapt, n, c.n)
	}
	out.Pointers = c.scratch[:n]
	return out, nil
}
