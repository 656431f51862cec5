// SPDX-License-Identifier: Unlicense OR MIT

/*
Package gesture implements gesture recognizer state machines and
the orchestrator that arbitrates between them.

A Handler is one recognizer instance bound to a view.Target. Its
behavior is supplied by a Recognizer, which decides from the
pointer frames it receives when to Begin, Activate, End, Fail or
Cancel. Many handlers may be interested in the same pointers; the
Orchestrator for a touch root hit-tests new pointers, delivers
frames to every live handler in priority order and resolves
conflicts: a handler may have to wait for another one to fail,
may run simultaneously with another, or is cancelled when a
competitor activates.

State changes are reported synchronously to the handler's
Observer. The orchestrator normalizes the reported transitions so
that every observed BEGAN or ACTIVE is followed by exactly one
observed END, CANCELLED or FAILED.

All methods of a Handler and of an Orchestrator must be called
from the goroutine feeding input frames.
*/
package gesture

import (
	"gioui.org/f32"

	"github.com/gestalt-go/gestalt/io/pointer"
)

// State of a Handler.
type State uint8

const (
	// StateUndetermined is the initial state.
	StateUndetermined State = iota
	// StateBegan is reported when the handler has started
	// receiving pointers it may recognize.
	StateBegan
	// StateActive is reported when the gesture is recognized.
	StateActive
	// StateCancelled is reported when the gesture is
	// interrupted.
	StateCancelled
	// StateFailed is reported when the pointers did not form
	// the gesture.
	StateFailed
	// StateEnd is reported when a recognized gesture
	// completes.
	StateEnd
)

// Recognizer supplies the kind-specific behavior of a Handler.
//
// Handle is called for every frame delivered to the handler, with
// pointer ids remapped to the dense range [0, n) and positions in
// the coordinate space of the handler's target. The frame and its
// Pointers slice are only valid for the duration of the call.
//
// A Recognizer may also implement any of Preparer, Resetter,
// Canceller, ProgressResetter, StateChanger, Hoverer and Policy.
type Recognizer interface {
	Handle(h *Handler, f pointer.Frame)
}

// Preparer is implemented by recognizers that initialize state
// when their handler is registered for a touch sequence.
type Preparer interface {
	Prepare(h *Handler)
}

// Resetter is implemented by recognizers that clear state when
// their handler is evicted after a touch sequence.
type Resetter interface {
	Reset(h *Handler)
}

// Canceller is implemented by recognizers that must release
// resources, such as pending timers, before a cancellation is
// published.
type Canceller interface {
	Cancel(h *Handler)
}

// ProgressResetter is implemented by recognizers that accumulate
// movement. ResetProgress is called when the handler leaves
// StateUndetermined and again when it stops waiting for another
// handler, so that deltas restart from the current position.
type ProgressResetter interface {
	ResetProgress(h *Handler)
}

// StateChanger is implemented by recognizers that observe their
// own transitions. It is called after the orchestrator has
// processed the transition.
type StateChanger interface {
	StateChanged(h *Handler, state, prev State)
}

// Hoverer is implemented by recognizers that track pointers
// which are not pressed.
type Hoverer interface {
	Hovers() bool
}

// Observer receives the externally visible events of a Handler.
// Calls are made synchronously while a frame is processed.
type Observer interface {
	OnStateChange(h *Handler, state, prev State)
	OnUpdate(h *Handler, f pointer.Frame)
	OnTouchEvent(h *Handler, e TouchEvent)
}

// Finished reports whether s is one of the terminal states
// StateCancelled, StateFailed or StateEnd.
func (s State) Finished() bool {
	return s == StateCancelled || s == StateFailed || s == StateEnd
}

func (s State) String() string {
	switch s {
	case StateUndetermined:
		return "UNDETERMINED"
	case StateBegan:
		return "BEGAN"
	case StateActive:
		return "ACTIVE"
	case StateCancelled:
		return "CANCELLED"
	case StateFailed:
		return "FAILED"
	case StateEnd:
		return "END"
	default:
		panic("invalid State")
	}
}

// averagePosition returns the mean position of the pointers of f,
// leaving out a pointer being released.
func averagePosition(f pointer.Frame) f32.Point {
	var sum f32.Point
	n := 0
	for i, p := range f.Pointers {
		if f.Kind == pointer.Release && i == f.Changed {
			continue
		}
		sum = sum.Add(p.Position)
		n++
	}
	if n == 0 {
		if p, ok := f.ChangedPointer(); ok {
			return p.Position
		}
		return f32.Point{}
	}
	return sum.Div(float32(n))
}
