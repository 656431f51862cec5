// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"fmt"

	"gioui.org/f32"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"

	"github.com/gestalt-go/gestalt/io/pointer"
	"github.com/gestalt-go/gestalt/view"
)

// Orchestrator arbitrates between the handlers attached to the
// targets below a touch root. Frames are fed to it with Frame.
type Orchestrator struct {
	root   view.Target
	finder Finder
	log    *slog.Logger

	// live is the handlers of the current touch sequence, in
	// registration order.
	live []*Handler
	// awaiting is the handlers waiting for others to fail.
	awaiting []*Handler
	// delivery is the scratch list for sorted delivery.
	delivery []*Handler

	activations int
	// depth counts the state changes being processed.
	depth          int
	handlingFrame  bool
	cleanupPending bool

	// seq identifies the current touch sequence in logs.
	seq uuid.UUID
}

// Option configures an Orchestrator.
type Option func(o *Orchestrator)

// WithLogger sets the logger of an Orchestrator. The default is
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.log = l
	}
}

// NewOrchestrator returns an orchestrator for the targets below
// root, looking up their handlers through finder.
func NewOrchestrator(root view.Target, finder Finder, opts ...Option) *Orchestrator {
	if root == nil {
		panic("gesture: nil root")
	}
	if finder == nil {
		panic("gesture: nil Finder")
	}
	o := &Orchestrator{
		root:   root,
		finder: finder,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = slog.Default()
	}
	return o
}

// Frame processes an input frame whose positions are in root
// coordinates. Observers are notified before Frame returns.
func (o *Orchestrator) Frame(f pointer.Frame) {
	if o.handlingFrame {
		panic("gesture: Frame called during frame processing")
	}
	o.handlingFrame = true
	switch f.Kind {
	case pointer.Press, pointer.Hover:
		o.extract(f)
	case pointer.Cancel:
		o.cancelAll()
	}
	o.deliver(f)
	o.handlingFrame = false
	if o.cleanupPending && o.depth == 0 {
		o.cleanup()
	}
}

// IsAnyHandlerActive reports whether a live handler is in
// StateActive.
func (o *Orchestrator) IsAnyHandlerActive() bool {
	for _, h := range o.live {
		if h.state == StateActive {
			return true
		}
	}
	return false
}

// Handlers returns the handlers of the current touch sequence in
// registration order.
func (o *Orchestrator) Handlers() []*Handler {
	return slices.Clone(o.live)
}

// TransformPoint maps p from root coordinates to the coordinates of
// t.
func (o *Orchestrator) TransformPoint(t view.Target, p f32.Point) f32.Point {
	return view.Local(o.root, t).Transform(p)
}

func (o *Orchestrator) extract(f pointer.Frame) {
	p, ok := f.ChangedPointer()
	if !ok {
		o.warn("no changed pointer", "kind", f.Kind, "changed", f.Changed, "pointers", len(f.Pointers))
		return
	}
	if len(o.live) == 0 {
		o.seq = uuid.New()
	}
	ht := &hit{o: o, id: p.ID, hover: f.Kind == pointer.Hover}
	ht.traverse(o.root, p.Position)
}

// record adds h to the live handlers, unless already present.
func (o *Orchestrator) record(h *Handler, t view.Target) {
	if slices.Contains(o.live, h) {
		return
	}
	o.live = append(o.live, h)
	h.active = false
	h.awaiting = false
	h.activationIndex = noActivation
	h.prepare(t, o)
	o.debug("register", "handler", h.tag, "target", t)
}

func (o *Orchestrator) cancelAll() {
	awaiting := slices.Clone(o.awaiting)
	for i := len(awaiting) - 1; i >= 0; i-- {
		awaiting[i].Cancel()
	}
	live := slices.Clone(o.live)
	for i := len(live) - 1; i >= 0; i-- {
		live[i].Cancel()
	}
}

func (o *Orchestrator) deliver(f pointer.Frame) {
	// State changes may alter the order; deliver from a snapshot.
	o.delivery = append(o.delivery[:0], o.live...)
	sortForDelivery(o.delivery)
	for _, h := range o.delivery {
		o.deliverTo(h, f)
	}
	for i := range o.delivery {
		o.delivery[i] = nil
	}
}

func (o *Orchestrator) deliverTo(h *Handler, f pointer.Frame) {
	if h.target == nil || !view.AttachedUnder(o.root, h.target) {
		if h.orch != nil {
			o.debug("target detached", "handler", h.tag)
			h.Cancel()
		}
		return
	}
	if !h.wantsEvents() {
		return
	}
	local := view.Local(o.root, h.target)
	lf := f.Transform(local)
	toRoot := local.Invert()
	// The first touch down is reported after the handler has
	// handled it.
	first := h.state == StateUndetermined
	if h.needsPointerData && !first {
		h.updateTouches(lf, toRoot)
	}
	if !h.awaiting || f.Kind != pointer.Move {
		af, handled := h.handle(lf)
		if handled {
			if (h.active && h.resetProgress) || (first && h.state != StateUndetermined) {
				h.resetProgress = false
				if pr, ok := h.kind.(ProgressResetter); ok {
					pr.ResetProgress(h)
				}
			}
			if h.active {
				h.observer.OnUpdate(h, af)
			}
		}
		if h.needsPointerData && first {
			h.updateTouches(lf, toRoot)
		}
		if f.Kind == pointer.Release || f.Kind == pointer.Leave {
			if p, ok := f.ChangedPointer(); ok {
				h.stopTracking(p.ID)
			}
		}
	}
}

// stateChanged is called by a handler for every change of its
// state, before the change is reported.
func (o *Orchestrator) stateChanged(h *Handler, state, prev State) {
	o.depth++
	if state.Finished() {
		if state != StateEnd && h.awaiting {
			// A handler that gave up while waiting is never
			// activated.
			h.awaiting = false
		}
		for _, other := range slices.Clone(o.awaiting) {
			if !other.awaiting || !o.shouldWaitFor(other, h) {
				continue
			}
			if state == StateEnd {
				o.debug("cancel awaiting", "handler", other.tag, "winner", h.tag)
				o.forceCancel(other)
				other.awaiting = false
			} else {
				o.tryActivate(other)
			}
		}
		o.pruneAwaiting()
	}
	switch {
	case state == StateActive:
		o.tryActivate(h)
	case prev == StateActive || prev == StateEnd:
		if h.active {
			o.publish(h, state, prev)
		} else if prev == StateActive && (state == StateCancelled || state == StateFailed) {
			// Observers never saw h activate.
			o.publish(h, state, StateBegan)
		}
	case prev != StateUndetermined || state != StateCancelled:
		o.publish(h, state, prev)
	}
	o.depth--
	o.scheduleCleanup()
}

func (o *Orchestrator) tryActivate(h *Handler) {
	if o.mustWait(h) {
		o.addAwaiting(h)
		return
	}
	if w := o.activeRival(h); w != nil {
		o.debug("activation blocked", "handler", h.tag, "by", w.tag)
		o.forceCancel(h)
		h.awaiting = false
		o.pruneAwaiting()
		return
	}
	o.makeActive(h)
}

func (o *Orchestrator) makeActive(h *Handler) {
	cur := h.state
	h.awaiting = false
	h.active = true
	h.resetProgress = true
	h.activationIndex = o.nextActivation()
	o.debug("activate", "handler", h.tag, "index", h.activationIndex)

	live := slices.Clone(o.live)
	for i := len(live) - 1; i >= 0; i-- {
		if other := live[i]; o.shouldBeCancelledBy(other, h) {
			other.Cancel()
		}
	}
	awaiting := slices.Clone(o.awaiting)
	for i := len(awaiting) - 1; i >= 0; i-- {
		other := awaiting[i]
		if other.awaiting && o.shouldBeCancelledBy(other, h) {
			o.forceCancel(other)
			other.awaiting = false
		}
	}
	o.pruneAwaiting()

	o.publish(h, StateActive, StateBegan)
	if cur != StateActive {
		o.publish(h, StateEnd, StateActive)
		if cur != StateEnd {
			o.publish(h, StateUndetermined, StateEnd)
		}
	}
}

// forceCancel cancels h. A handler that already ended is reported
// as cancelled from StateBegan, closing the BEGAN observers saw.
func (o *Orchestrator) forceCancel(h *Handler) {
	h.Cancel()
	if h.state == StateEnd {
		o.publish(h, StateCancelled, StateBegan)
	}
}

func (o *Orchestrator) addAwaiting(h *Handler) {
	if slices.Contains(o.awaiting, h) {
		return
	}
	o.awaiting = append(o.awaiting, h)
	h.awaiting = true
	h.activationIndex = o.nextActivation()
	o.debug("await", "handler", h.tag, "index", h.activationIndex)
}

func (o *Orchestrator) pruneAwaiting() {
	n := 0
	for _, h := range o.awaiting {
		if h.awaiting {
			o.awaiting[n] = h
			n++
		}
	}
	for i := n; i < len(o.awaiting); i++ {
		o.awaiting[i] = nil
	}
	o.awaiting = o.awaiting[:n]
}

func (o *Orchestrator) nextActivation() int {
	i := o.activations
	o.activations++
	return i
}

func (o *Orchestrator) scheduleCleanup() {
	if o.handlingFrame || o.depth != 0 {
		o.cleanupPending = true
		return
	}
	o.cleanup()
}

// cleanup evicts the finished handlers that are not awaiting.
func (o *Orchestrator) cleanup() {
	n := 0
	for _, h := range o.live {
		if h.state.Finished() && !h.awaiting {
			o.debug("evict", "handler", h.tag, "state", h.state)
			h.reset()
			continue
		}
		o.live[n] = h
		n++
	}
	for i := n; i < len(o.live); i++ {
		o.live[i] = nil
	}
	o.live = o.live[:n]
	o.cleanupPending = false
}

// mustWait reports whether a live handler that has not finished
// requires h to wait for its failure.
func (o *Orchestrator) mustWait(h *Handler) bool {
	for _, other := range o.live {
		if !other.state.Finished() && o.shouldWaitFor(h, other) {
			return true
		}
	}
	return false
}

// activeRival returns an active handler that competes with h for a
// pointer and does not yield to it.
func (o *Orchestrator) activeRival(h *Handler) *Handler {
	for _, other := range o.live {
		if other == h || !other.active || other.state.Finished() {
			continue
		}
		if !other.sharesPointers(h) || o.simultaneous(other, h) {
			continue
		}
		if !other.policyFor().ShouldBeCancelledBy(other, h) {
			return other
		}
	}
	return nil
}

func (o *Orchestrator) shouldWaitFor(h, other *Handler) bool {
	return h != other && (h.policyFor().ShouldWaitForFailure(h, other) ||
		other.policyFor().ShouldWaitForFailure(h, other))
}

func (o *Orchestrator) simultaneous(a, b *Handler) bool {
	return a == b || a.policyFor().ShouldRecognizeSimultaneously(a, b) ||
		b.policyFor().ShouldRecognizeSimultaneously(b, a)
}

// shouldBeCancelledBy reports whether h must be cancelled when
// winner activates.
func (o *Orchestrator) shouldBeCancelledBy(h, winner *Handler) bool {
	if !h.sharesPointers(winner) || o.simultaneous(h, winner) {
		return false
	}
	if h.awaiting || h.state == StateActive {
		return h.policyFor().ShouldBeCancelledBy(h, winner)
	}
	return true
}

func (o *Orchestrator) publish(h *Handler, state, prev State) {
	o.debug("state", "handler", h.tag, "state", state, "prev", prev)
	h.observer.OnStateChange(h, state, prev)
}

func (o *Orchestrator) debug(msg string, args ...any) {
	o.log.Debug(msg, append(args, "seq", o.seq.String())...)
}

func (o *Orchestrator) warn(msg string, args ...any) {
	o.log.Warn(msg, append(args, "seq", o.seq.String())...)
}

func (o *Orchestrator) String() string {
	return fmt.Sprintf("orchestrator(%v)", o.root)
}
