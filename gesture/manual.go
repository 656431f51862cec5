// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"github.com/gestalt-go/gestalt/io/pointer"
)

// Manual is a Recognizer that begins on the first frame and leaves
// activation to the host, through Handler.SetState or
// Handler.Activate. When the last pointer is released an active
// handler ends and any other fails.
type Manual struct{}

func (Manual) Handle(h *Handler, f pointer.Frame) {
	if h.State() == StateUndetermined {
		h.Begin()
	}
	if f.Kind == pointer.Release && len(f.Pointers) == 1 {
		if h.State() == StateActive {
			h.End()
		} else {
			h.Fail()
		}
	}
}
