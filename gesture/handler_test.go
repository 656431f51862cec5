// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"errors"
	"testing"

	"gioui.org/f32"

	"github.com/gestalt-go/gestalt/io/pointer"
	"github.com/gestalt-go/gestalt/view"
)

// prepared returns a handler registered for a touch sequence
// without delivering any frame.
func prepared(fx *fixture, manual bool) *Handler {
	h := NewHandler(1, idle)
	h.SetManualActivation(manual)
	h.prepare(fx.root, fx.orch)
	return h
}

func TestStateGraph(t *testing.T) {
	type op func(h *Handler)
	var (
		begin    op = (*Handler).Begin
		activate op = func(h *Handler) { h.Activate(false) }
		force    op = func(h *Handler) { h.Activate(true) }
		cancel   op = (*Handler).Cancel
		fail     op = (*Handler).Fail
		end      op = (*Handler).End
	)
	for _, tc := range []struct {
		label  string
		manual bool
		ops    []op
		want   State
	}{
		{"begin", false, []op{begin}, StateBegan},
		{"activate from undetermined", false, []op{activate}, StateActive},
		{"activate from began", false, []op{begin, activate}, StateActive},
		{"end from undetermined", false, []op{end}, StateUndetermined},
		{"end from began", false, []op{begin, end}, StateEnd},
		{"end from active", false, []op{activate, end}, StateEnd},
		{"cancel from undetermined", false, []op{cancel}, StateCancelled},
		{"fail from began", false, []op{begin, fail}, StateFailed},
		{"cancel from active", false, []op{activate, cancel}, StateCancelled},
		{"fail from active", false, []op{activate, fail}, StateFailed},
		{"begin while active", false, []op{activate, begin}, StateActive},
		{"manual activate", true, []op{begin, activate}, StateBegan},
		{"manual forced", true, []op{begin, force}, StateActive},
		{"end is terminal", false, []op{activate, end, begin, activate, cancel, fail}, StateEnd},
		{"cancelled is terminal", false, []op{cancel, begin, activate, end, fail}, StateCancelled},
		{"failed is terminal", false, []op{fail, begin, force, end, cancel}, StateFailed},
	} {
		t.Run(tc.label, func(t *testing.T) {
			fx := newFixture()
			h := prepared(fx, tc.manual)
			for _, o := range tc.ops {
				o(h)
			}
			if got := h.State(); got != tc.want {
				t.Errorf("state = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestStateChangeUnpreparedPanics(t *testing.T) {
	h := NewHandler(1, idle)
	defer func() {
		if recover() == nil {
			t.Error("Begin on an unprepared handler did not panic")
		}
	}()
	h.Begin()
}

func TestPrepareTwicePanics(t *testing.T) {
	fx := newFixture()
	h := prepared(fx, false)
	defer func() {
		if recover() == nil {
			t.Error("second prepare did not panic")
		}
	}()
	h.prepare(fx.root, fx.orch)
}

type cancelHook struct {
	cancelled int
	// state is the state observed by the hook.
	state State
}

func (c *cancelHook) Handle(*Handler, pointer.Frame) {}

func (c *cancelHook) Cancel(h *Handler) {
	c.cancelled++
	c.state = h.State()
}

func TestCancelHookRunsBeforeTransition(t *testing.T) {
	fx := newFixture()
	hook := new(cancelHook)
	h := NewHandler(1, hook)
	h.prepare(fx.root, fx.orch)
	h.Begin()
	h.Cancel()
	h.Cancel()
	if hook.cancelled != 1 {
		t.Errorf("cancel hook ran %d times, want 1", hook.cancelled)
	}
	if hook.state != StateBegan {
		t.Errorf("cancel hook saw state %v, want %v", hook.state, StateBegan)
	}
}

type orderHook struct {
	rec   *recorder
	calls []int
}

func (o *orderHook) Handle(*Handler, pointer.Frame) {}

func (o *orderHook) StateChanged(h *Handler, state, prev State) {
	o.calls = append(o.calls, len(o.rec.states))
}

func TestOrchestratorNotifiedBeforeHook(t *testing.T) {
	fx := newFixture()
	hook := &orderHook{rec: fx.rec}
	h := NewHandler(1, hook)
	h.SetObserver(fx.rec)
	h.prepare(fx.root, fx.orch)
	h.Begin()
	if len(hook.calls) != 1 || hook.calls[0] != 1 {
		t.Errorf("hook saw %v published changes, want [1]", hook.calls)
	}
}

func TestConfigure(t *testing.T) {
	h := NewHandler(1, idle)
	off := false
	err := h.Configure(Config{
		Enabled:          &off,
		ManualActivation: true,
		HitSlop:          map[string]float32{"horizontal": 5, "top": 2},
		RequiredPointers: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if h.Enabled() {
		t.Error("handler enabled")
	}
	s := h.HitSlop()
	if s.Left != Pad(5) || s.Right != Pad(5) || s.Top != Pad(2) || s.Bottom.Set {
		t.Errorf("hit slop = %+v", s)
	}
	if got := h.RequiredPointers(); got != 2 {
		t.Errorf("required pointers = %d, want 2", got)
	}
	if err := h.Configure(Config{}); err != nil {
		t.Fatal(err)
	}
	if !h.Enabled() || h.manualActivation || !h.HitSlop().IsZero() || h.RequiredPointers() != 0 {
		t.Error("Configure did not reset to defaults")
	}
	bad := Config{HitSlop: map[string]float32{"left": 1, "right": 1, "width": 3}}
	if err := h.Configure(bad); !errors.Is(err, ErrHitSlop) {
		t.Errorf("Configure(%v) = %v, want ErrHitSlop", bad.HitSlop, err)
	}
	if err := h.Configure(Config{RequiredPointers: -1}); err == nil {
		t.Error("Configure accepted a negative pointer count")
	}
}

func TestDisableCancels(t *testing.T) {
	fx := newFixture()
	h := fx.attach(fx.root, 1, funcRecognizer(func(h *Handler, f pointer.Frame) { h.Begin() }))
	fx.orch.Frame(frame(pointer.Press, 0, ptr(0, 10, 10)))
	h.SetEnabled(false)
	if h.State() != StateCancelled {
		t.Errorf("state after disable = %v, want %v", h.State(), StateCancelled)
	}
	assertStates(t, fx.rec.states, "1 UNDETERMINED->BEGAN", "1 BEGAN->CANCELLED")
	if len(fx.orch.Handlers()) != 0 {
		t.Error("cancelled handler not evicted outside a frame")
	}
}

func TestSetStateForcesActivation(t *testing.T) {
	fx := newFixture()
	h := fx.attach(fx.root, 1, Manual{})
	h.SetManualActivation(true)
	fx.orch.Frame(frame(pointer.Press, 0, ptr(0, 10, 10)))
	h.Activate(false)
	if h.State() != StateBegan {
		t.Fatalf("manual handler activated without force: %v", h.State())
	}
	h.SetState(StateActive)
	fx.orch.Frame(frame(pointer.Release, 0, ptr(0, 10, 10)))
	assertStates(t, fx.rec.states,
		"1 UNDETERMINED->BEGAN",
		"1 BEGAN->ACTIVE",
		"1 ACTIVE->END",
	)
}

func TestCancelWhenOutside(t *testing.T) {
	fx := newFixture()
	h := fx.attach(fx.root, 1, funcRecognizer(func(h *Handler, f pointer.Frame) {
		h.Begin()
		h.Activate(false)
	}))
	h.SetCancelWhenOutside(true)
	fx.orch.Frame(frame(pointer.Press, 0, ptr(0, 10, 10)))
	fx.orch.Frame(frame(pointer.Move, 0, ptr(0, 150, 10)))
	assertStates(t, fx.rec.states,
		"1 UNDETERMINED->BEGAN",
		"1 BEGAN->ACTIVE",
		"1 ACTIVE->CANCELLED",
	)
	if h.WithinBounds() {
		t.Error("pointer outside reported within bounds")
	}
}

func TestHandlerPositions(t *testing.T) {
	fx := newFixture()
	child := view.NewNode("child", f32.Pt(20, 30), f32.Pt(50, 50))
	fx.root.Add(child)
	h := fx.attach(child, 1, idle)
	fx.orch.Frame(frame(pointer.Press, 0, ptr(0, 30, 40)))
	if got, want := h.Position(), f32.Pt(10, 10); got != want {
		t.Errorf("Position = %v, want %v", got, want)
	}
	if got, want := h.TransformPoint(f32.Pt(70, 80)), f32.Pt(50, 50); got != want {
		t.Errorf("TransformPoint = %v, want %v", got, want)
	}
	fx.orch.Frame(frame(pointer.Press, 1, ptr(0, 30, 40), ptr(1, 50, 60)))
	if got, want := h.LastPosition(), f32.Pt(20, 20); got != want {
		t.Errorf("LastPosition = %v, want %v", got, want)
	}
	if h.NumPointers() != 2 {
		t.Errorf("NumPointers = %d, want 2", h.NumPointers())
	}
}
