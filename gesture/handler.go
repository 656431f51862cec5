// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"fmt"
	"math"

	"gioui.org/f32"

	"github.com/gestalt-go/gestalt/io/pointer"
	"github.com/gestalt-go/gestalt/view"
)

// noActivation is the activation index of a handler that is
// neither active nor awaiting.
const noActivation = math.MaxInt

// Handler is a gesture recognizer bound to a view.Target. The
// zero value is not usable; use NewHandler.
type Handler struct {
	tag      int
	kind     Recognizer
	policy   Policy
	observer Observer

	state  State
	target view.Target
	orch   *Orchestrator

	enabled           bool
	manualActivation  bool
	cancelWhenOutside bool
	needsPointerData  bool
	hitSlop           HitSlop
	requiredPointers  int

	pointers compactor
	touches  touchTracker

	// Owned by the orchestrator.
	active          bool
	awaiting        bool
	activationIndex int
	resetProgress   bool

	position    f32.Point
	last        f32.Point
	numPointers int
	inBounds    bool
}

// Config is the declarative configuration of a Handler.
type Config struct {
	// Enabled defaults to true.
	Enabled           *bool              `yaml:"enabled" toml:"enabled"`
	ManualActivation  bool               `yaml:"manualActivation" toml:"manualActivation"`
	CancelWhenOutside bool               `yaml:"shouldCancelWhenOutside" toml:"shouldCancelWhenOutside"`
	NeedsPointerData  bool               `yaml:"needsPointerData" toml:"needsPointerData"`
	HitSlop           map[string]float32 `yaml:"hitSlop" toml:"hitSlop"`
	// RequiredPointers is the number of pointers the gesture
	// needs to be down at once. Zero means any.
	RequiredPointers int `yaml:"numberOfPointers" toml:"numberOfPointers"`
}

type nopObserver struct{}

func (nopObserver) OnStateChange(*Handler, State, State) {}
func (nopObserver) OnUpdate(*Handler, pointer.Frame)     {}
func (nopObserver) OnTouchEvent(*Handler, TouchEvent)    {}

// NewHandler returns an enabled handler identified by tag whose
// behavior is supplied by r.
func NewHandler(tag int, r Recognizer) *Handler {
	if r == nil {
		panic("gesture: nil Recognizer")
	}
	return &Handler{
		tag:             tag,
		kind:            r,
		observer:        nopObserver{},
		enabled:         true,
		activationIndex: noActivation,
	}
}

// Configure resets the configuration of h to its defaults and
// applies c. The hit slop is validated before anything is
// changed.
func (h *Handler) Configure(c Config) error {
	var slop HitSlop
	if c.HitSlop != nil {
		s, err := ParseHitSlop(c.HitSlop)
		if err != nil {
			return err
		}
		slop = s
	}
	if c.RequiredPointers < 0 || c.RequiredPointers > pointer.MaxPointers {
		return fmt.Errorf("gesture: %d required pointers out of range", c.RequiredPointers)
	}
	h.hitSlop = slop
	h.requiredPointers = c.RequiredPointers
	h.manualActivation = c.ManualActivation
	h.cancelWhenOutside = c.CancelWhenOutside
	h.needsPointerData = c.NeedsPointerData
	enabled := true
	if c.Enabled != nil {
		enabled = *c.Enabled
	}
	h.SetEnabled(enabled)
	return nil
}

// SetHitSlop validates and sets the hit slop of h.
func (h *Handler) SetHitSlop(s HitSlop) error {
	if err := s.Validate(); err != nil {
		return err
	}
	h.hitSlop = s
	return nil
}

// SetEnabled enables or disables h. Disabling a handler taking part
// in a touch sequence cancels it.
func (h *Handler) SetEnabled(enabled bool) {
	if h.orch != nil && h.enabled != enabled {
		h.Cancel()
	}
	h.enabled = enabled
}

// SetManualActivation controls whether Activate requires force.
func (h *Handler) SetManualActivation(manual bool) {
	h.manualActivation = manual
}

// SetCancelWhenOutside controls whether h is cancelled (or failed,
// before activation) when its pointers leave the hit area.
func (h *Handler) SetCancelWhenOutside(cancel bool) {
	h.cancelWhenOutside = cancel
}

// SetRequiredPointers sets the number of simultaneous pointers
// the recognizer of h needs. Zero means any.
func (h *Handler) SetRequiredPointers(n int) {
	h.requiredPointers = n
}

// SetNeedsPointerData controls whether h reports TouchEvents.
func (h *Handler) SetNeedsPointerData(needs bool) {
	h.needsPointerData = needs
}

// SetPolicy sets the interaction policy of h. A Recognizer that
// implements Policy takes precedence.
func (h *Handler) SetPolicy(p Policy) {
	h.policy = p
}

// SetObserver sets the receiver of the events of h. A nil o
// discards them.
func (h *Handler) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	h.observer = o
}

// SetState moves h to s on behalf of the host. StateActive forces
// activation of manually activated handlers.
func (h *Handler) SetState(s State) {
	switch s {
	case StateBegan:
		h.Begin()
	case StateActive:
		h.Activate(true)
	case StateEnd:
		h.End()
	case StateFailed:
		h.Fail()
	case StateCancelled:
		h.Cancel()
	}
}

// Begin moves an undetermined handler to StateBegan.
func (h *Handler) Begin() {
	if h.state == StateUndetermined {
		h.moveToState(StateBegan)
	}
}

// Activate moves an undetermined or began handler to StateActive.
// Handlers with manual activation only activate when forced.
func (h *Handler) Activate(force bool) {
	if h.manualActivation && !force {
		return
	}
	if h.state == StateUndetermined || h.state == StateBegan {
		h.moveToState(StateActive)
	}
}

// Cancel moves a handler that has not finished to StateCancelled.
func (h *Handler) Cancel() {
	switch h.state {
	case StateUndetermined, StateBegan, StateActive:
		if c, ok := h.kind.(Canceller); ok {
			c.Cancel(h)
		}
		h.moveToState(StateCancelled)
	}
}

// Fail moves a handler that has not finished to StateFailed.
func (h *Handler) Fail() {
	switch h.state {
	case StateUndetermined, StateBegan, StateActive:
		h.moveToState(StateFailed)
	}
}

// End moves a began or active handler to StateEnd.
func (h *Handler) End() {
	if h.state == StateBegan || h.state == StateActive {
		h.moveToState(StateEnd)
	}
}

func (h *Handler) moveToState(s State) {
	if h.orch == nil {
		panic(fmt.Errorf("gesture: %v: state change to %v outside a touch sequence", h, s))
	}
	if h.state == s {
		return
	}
	if s.Finished() && h.touches.count() > 0 {
		h.touches.cancel(h)
	}
	prev := h.state
	h.state = s
	h.orch.stateChanged(h, s, prev)
	if sc, ok := h.kind.(StateChanger); ok {
		sc.StateChanged(h, s, prev)
	}
}

// prepare registers h with o for a touch sequence on target t.
func (h *Handler) prepare(t view.Target, o *Orchestrator) {
	if h.orch != nil {
		panic(fmt.Errorf("gesture: %v: already prepared", h))
	}
	h.state = StateUndetermined
	h.target = t
	h.orch = o
	h.pointers.reset()
	h.touches.reset()
	h.position, h.last = f32.Point{}, f32.Point{}
	h.numPointers = 0
	h.inBounds = false
	if p, ok := h.kind.(Preparer); ok {
		p.Prepare(h)
	}
}

// reset releases h from its orchestrator after a touch sequence.
// The final state is kept until the next prepare.
func (h *Handler) reset() {
	h.target = nil
	h.orch = nil
	h.pointers.reset()
	h.touches.reset()
	h.active = false
	h.awaiting = false
	h.activationIndex = noActivation
	h.resetProgress = false
	if r, ok := h.kind.(Resetter); ok {
		r.Reset(h)
	}
}

// handle runs the recognizer on f, given in target coordinates.
// It returns the adapted frame and whether the recognizer ran.
func (h *Handler) handle(f pointer.Frame) (pointer.Frame, bool) {
	if !h.enabled || h.state.Finished() || h.pointers.count() == 0 {
		return f, false
	}
	af, err := h.pointers.adapt(f)
	if err != nil {
		h.orch.warn("adapt frame", "handler", h.tag, "err", err)
		h.Fail()
		return f, false
	}
	h.position = af.Position()
	h.numPointers = len(af.Pointers)
	h.inBounds = h.isWithinBounds(h.target.Size(), h.position)
	if h.cancelWhenOutside && !h.inBounds {
		switch h.state {
		case StateActive:
			h.Cancel()
		case StateBegan:
			h.Fail()
		}
		return af, false
	}
	h.last = averagePosition(af)
	h.kind.Handle(h, af)
	return af, true
}

// updateTouches reports the touch payload of f, given in target
// coordinates. toRoot maps target coordinates back to the root.
func (h *Handler) updateTouches(f pointer.Frame, toRoot f32.Affine2D) {
	af, err := h.pointers.adapt(f)
	if err != nil {
		return
	}
	h.touches.update(h, af.Kind, f, toRoot)
}

func (h *Handler) wantsEvents() bool {
	return h.enabled && !h.state.Finished() && h.pointers.count() > 0
}

func (h *Handler) startTracking(id pointer.ID) {
	h.pointers.track(id)
}

func (h *Handler) stopTracking(id pointer.ID) {
	h.pointers.untrack(id)
	h.touches.forget(id)
}

func (h *Handler) sharesPointers(o *Handler) bool {
	return h.pointers.shares(&o.pointers)
}

// isWithinBounds reports whether p is in the hit area of a target
// of the given size.
func (h *Handler) isWithinBounds(size, p f32.Point) bool {
	return h.hitSlop.Contains(size, p)
}

func (h *Handler) hovers() bool {
	hv, ok := h.kind.(Hoverer)
	return ok && hv.Hovers()
}

func (h *Handler) policyFor() Policy {
	if p, ok := h.kind.(Policy); ok {
		return p
	}
	if h.policy != nil {
		return h.policy
	}
	return defaultPolicy{}
}

// Tag returns the host identifier of h.
func (h *Handler) Tag() int { return h.tag }

// Recognizer returns the recognizer of h.
func (h *Handler) Recognizer() Recognizer { return h.kind }

// State returns the current state.
func (h *Handler) State() State { return h.state }

// Target returns the target h was registered for, or nil outside a
// touch sequence.
func (h *Handler) Target() view.Target { return h.target }

// Enabled reports whether h takes part in hit testing.
func (h *Handler) Enabled() bool { return h.enabled }

// HitSlop returns the hit slop of h.
func (h *Handler) HitSlop() HitSlop { return h.hitSlop }

// Active reports whether the orchestrator has activated h and h
// has not finished.
func (h *Handler) Active() bool { return h.active && !h.state.Finished() }

// Awaiting reports whether h has reached StateActive but waits for
// another handler to fail.
func (h *Handler) Awaiting() bool { return h.awaiting }

// Position returns the position of the first pointer of the last
// frame, in target coordinates.
func (h *Handler) Position() f32.Point { return h.position }

// LastPosition returns the average position of the pointers that
// remained down in the last frame, in target coordinates.
func (h *Handler) LastPosition() f32.Point { return h.last }

// NumPointers returns the number of pointers in the last frame.
func (h *Handler) NumPointers() int { return h.numPointers }

// RequiredPointers returns the number of simultaneous pointers the
// recognizer needs, or zero.
func (h *Handler) RequiredPointers() int { return h.requiredPointers }

// HasRequiredPointers reports whether the last frame had at least
// the required number of pointers.
func (h *Handler) HasRequiredPointers() bool { return h.numPointers >= h.requiredPointers }

// WithinBounds reports whether the first pointer of the last frame
// was in the hit area.
func (h *Handler) WithinBounds() bool { return h.inBounds }

// TransformPoint maps p from root coordinates to the coordinates
// of the target of h. The result is NaN outside a touch sequence.
func (h *Handler) TransformPoint(p f32.Point) f32.Point {
	if h.orch == nil {
		nan := float32(math.NaN())
		return f32.Pt(nan, nan)
	}
	return h.orch.TransformPoint(h.target, p)
}

func (h *Handler) String() string {
	return fmt.Sprintf("%T#%d", h.kind, h.tag)
}
