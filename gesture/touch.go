// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"gioui.org/f32"

	"github.com/gestalt-go/gestalt/io/pointer"
)

// TouchType is the kind of a TouchEvent.
type TouchType uint8

const (
	TouchDown TouchType = iota
	TouchMove
	TouchUp
	TouchCancelled
)

// TouchEvent describes the pointers of a handler that changed.
// A pointer keeps its id from TouchDown to TouchUp; ids freed by
// released pointers are reused lowest first.
type TouchEvent struct {
	Type TouchType
	// Changed lists the pointers the event is about.
	Changed []TouchPoint
	// All lists every pointer down after the event, except for
	// TouchUp and TouchCancelled which include the pointers
	// being removed.
	All []TouchPoint
}

// TouchPoint is a pointer of a TouchEvent.
type TouchPoint struct {
	ID pointer.ID
	// Position in target coordinates.
	Position f32.Point
	// Absolute is the position in root coordinates.
	Absolute f32.Point
}

// touchTracker builds the TouchEvents of a handler. A pointer keeps
// its touch id from press to release, and a new pointer takes the
// lowest free id.
type touchTracker struct {
	raw    [pointer.MaxPointers]pointer.ID
	points [pointer.MaxPointers]TouchPoint
	down   [pointer.MaxPointers]bool
	n      int
}

func (t *touchTracker) reset() {
	*t = touchTracker{}
}

func (t *touchTracker) count() int {
	return t.n
}

// slot returns the touch id of the raw pointer id.
func (t *touchTracker) slot(id pointer.ID) (int, bool) {
	for i, d := range t.down {
		if d && t.raw[i] == id {
			return i, true
		}
	}
	return 0, false
}

// update reports f, given with raw ids and in target coordinates.
// kind is the kind of f as seen by the handler.
func (t *touchTracker) update(h *Handler, kind pointer.Kind, f pointer.Frame, toRoot f32.Affine2D) {
	switch kind {
	case pointer.Press:
		t.press(h, f, toRoot)
		t.move(h, f, toRoot)
	case pointer.Release:
		t.move(h, f, toRoot)
		t.release(h, f, toRoot)
	case pointer.Move:
		t.move(h, f, toRoot)
	}
}

func (t *touchTracker) press(h *Handler, f pointer.Frame, toRoot f32.Affine2D) {
	p, ok := f.ChangedPointer()
	if !ok {
		return
	}
	i, ok := t.slot(p.ID)
	if !ok {
		i = -1
		for j, d := range t.down {
			if !d {
				i = j
				break
			}
		}
		if i == -1 {
			return
		}
		t.raw[i] = p.ID
		t.down[i] = true
		t.n++
	}
	tp := touchPoint(i, p, toRoot)
	t.points[i] = tp
	h.observer.OnTouchEvent(h, TouchEvent{
		Type:    TouchDown,
		Changed: []TouchPoint{tp},
		All:     t.all(),
	})
}

func (t *touchTracker) release(h *Handler, f pointer.Frame, toRoot f32.Affine2D) {
	p, ok := f.ChangedPointer()
	if !ok {
		return
	}
	i, ok := t.slot(p.ID)
	if !ok {
		return
	}
	tp := touchPoint(i, p, toRoot)
	t.points[i] = tp
	all := t.all()
	t.forget(p.ID)
	h.observer.OnTouchEvent(h, TouchEvent{
		Type:    TouchUp,
		Changed: []TouchPoint{tp},
		All:     all,
	})
}

// move reports the pointers whose position changed, if any.
func (t *touchTracker) move(h *Handler, f pointer.Frame, toRoot f32.Affine2D) {
	var changed []TouchPoint
	for _, p := range f.Pointers {
		i, ok := t.slot(p.ID)
		if !ok || t.points[i].Position == p.Position {
			continue
		}
		tp := touchPoint(i, p, toRoot)
		t.points[i] = tp
		changed = append(changed, tp)
	}
	if len(changed) == 0 {
		return
	}
	h.observer.OnTouchEvent(h, TouchEvent{
		Type:    TouchMove,
		Changed: changed,
		All:     t.all(),
	})
}

// cancel reports every pointer down as cancelled and forgets them.
func (t *touchTracker) cancel(h *Handler) {
	all := t.all()
	t.reset()
	h.observer.OnTouchEvent(h, TouchEvent{
		Type:    TouchCancelled,
		Changed: all,
		All:     all,
	})
}

// forget frees the touch id of the raw pointer id.
func (t *touchTracker) forget(id pointer.ID) {
	i, ok := t.slot(id)
	if !ok {
		return
	}
	t.raw[i] = 0
	t.points[i] = TouchPoint{}
	t.down[i] = false
	t.n--
}

func (t *touchTracker) all() []TouchPoint {
	all := make([]TouchPoint, 0, t.n)
	for i, d := range t.down {
		if d {
			all = append(all, t.points[i])
		}
	}
	return all
}

func touchPoint(id int, p pointer.Pointer, toRoot f32.Affine2D) TouchPoint {
	return TouchPoint{ID: pointer.ID(id), Position: p.Position, Absolute: toRoot.Transform(p.Position)}
}

func (t TouchType) String() string {
	switch t {
	case TouchDown:
		return "DOWN"
	case TouchMove:
		return "MOVE"
	case TouchUp:
		return "UP"
	case TouchCancelled:
		return "CANCELLED"
	default:
		panic("invalid TouchType")
	}
}
