// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"github.com/gestalt-go/gestalt/io/pointer"
)

// Hover is a Recognizer that activates while a pointer hovers over
// its target, and ends when the pointer leaves. A press fails it.
type Hover struct{}

func (Hover) Hovers() bool { return true }

func (Hover) Handle(h *Handler, f pointer.Frame) {
	switch f.Kind {
	case pointer.Hover:
		if h.State() == StateUndetermined {
			h.Begin()
			h.Activate(false)
		}
	case pointer.Leave:
		h.End()
	case pointer.Press:
		h.Fail()
	}
}
