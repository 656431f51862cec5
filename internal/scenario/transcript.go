// SPDX-License-Identifier: Unlicense OR MIT

package scenario

import (
	"fmt"
	"io"
	"strings"

	"github.com/gestalt-go/gestalt/gesture"
	"github.com/gestalt-go/gestalt/io/pointer"
)

// Transcript records the callbacks of the handlers it observes,
// grouped by the step that caused them.
type Transcript struct {
	Scenario string    `json:"scenario"`
	Steps    []StepLog `json:"steps"`

	names map[int]string
	// flushed is the number of steps already written by Flush.
	flushed int
}

// StepLog is the input of a step and the entries it produced.
type StepLog struct {
	Input   string  `json:"input"`
	Entries []Entry `json:"entries"`
}

// Entry is one observer callback.
type Entry struct {
	Handler string `json:"handler"`
	Tag     int    `json:"tag"`
	// Event is "state", "update" or "touch".
	Event  string `json:"event"`
	Detail string `json:"detail"`
}

// NewTranscript returns an empty transcript for the named scenario.
func NewTranscript(scenario string) *Transcript {
	return &Transcript{Scenario: scenario, names: make(map[int]string)}
}

// Label names the handler tagged tag in entries.
func (t *Transcript) Label(tag int, name string) {
	if name != "" {
		t.names[tag] = name
	}
}

func (t *Transcript) name(tag int) string {
	if n, ok := t.names[tag]; ok {
		return n
	}
	return fmt.Sprintf("#%d", tag)
}

// Step starts recording the entries of a new step.
func (t *Transcript) Step(input string) {
	t.Steps = append(t.Steps, StepLog{Input: input})
}

func (t *Transcript) add(h *gesture.Handler, event, detail string) {
	if len(t.Steps) == 0 {
		t.Step("")
	}
	s := &t.Steps[len(t.Steps)-1]
	s.Entries = append(s.Entries, Entry{
		Handler: t.name(h.Tag()),
		Tag:     h.Tag(),
		Event:   event,
		Detail:  detail,
	})
}

func (t *Transcript) OnStateChange(h *gesture.Handler, state, prev gesture.State) {
	t.add(h, "state", fmt.Sprintf("%v->%v", prev, state))
}

func (t *Transcript) OnUpdate(h *gesture.Handler, f pointer.Frame) {
	t.add(h, "update", Describe(f))
}

func (t *Transcript) OnTouchEvent(h *gesture.Handler, e gesture.TouchEvent) {
	var b strings.Builder
	b.WriteString(e.Type.String())
	for _, p := range e.Changed {
		fmt.Fprintf(&b, " %d%s", p.ID, formatPoint(p.Position))
	}
	fmt.Fprintf(&b, " of %d", len(e.All))
	t.add(h, "touch", b.String())
}

// WriteTo writes the text form of the transcript to w.
func (t *Transcript) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for i, s := range t.Steps {
		m, err := fmt.Fprintf(w, "step %d: %s\n", t.flushed+i+1, s.Input)
		n += int64(m)
		if err != nil {
			return n, err
		}
		for _, e := range s.Entries {
			m, err := fmt.Fprintf(w, "  %s\n", e)
			n += int64(m)
			if err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

// Flush writes the recorded steps to w and forgets them.
func (t *Transcript) Flush(w io.Writer) error {
	_, err := t.WriteTo(w)
	t.flushed += len(t.Steps)
	t.Steps = t.Steps[:0]
	return err
}

func (t *Transcript) String() string {
	var b strings.Builder
	t.WriteTo(&b)
	return b.String()
}

func (e Entry) String() string {
	return fmt.Sprintf("%s %s %s", e.Handler, e.Event, e.Detail)
}
