// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"encoding/json"
	"io"

	"gioui.org/f32"

	"github.com/gestalt-go/gestalt/gesture"
	"github.com/gestalt-go/gestalt/internal/scenario"
	"github.com/gestalt-go/gestalt/io/pointer"
	"github.com/gestalt-go/gestalt/view"
)

// liveTrace is a full screen target with a single manual handler,
// fed from a live source.
type liveTrace struct {
	format   string
	handler  *gesture.Handler
	orch     *gesture.Orchestrator
	tr       *scenario.Transcript
	activate bool
}

func newLiveTrace(opts *options, logw io.Writer, size f32.Point, activate bool) *liveTrace {
	screen := view.NewNode("screen", f32.Point{}, size)
	reg := gesture.NewRegistry()
	tr := scenario.NewTranscript("live")
	h := gesture.NewHandler(1, gesture.Manual{})
	h.SetNeedsPointerData(true)
	h.SetObserver(tr)
	tr.Label(1, "screen")
	reg.Attach(screen, h)
	return &liveTrace{
		format:   opts.format,
		handler:  h,
		orch:     gesture.NewOrchestrator(screen, reg, opts.orchestratorOptions(logw)...),
		tr:       tr,
		activate: activate,
	}
}

// feed runs frames and writes the steps they produced to w.
func (l *liveTrace) feed(w io.Writer, frames []pointer.Frame) error {
	for _, f := range frames {
		l.tr.Step(scenario.Describe(f))
		l.orch.Frame(f)
		if l.activate && f.Kind == pointer.Press && l.handler.State() == gesture.StateBegan {
			l.handler.SetState(gesture.StateActive)
		}
	}
	if l.format == "json" {
		enc := json.NewEncoder(w)
		for _, s := range l.tr.Steps {
			if err := enc.Encode(s); err != nil {
				return err
			}
		}
		return l.tr.Flush(io.Discard)
	}
	return l.tr.Flush(w)
}
