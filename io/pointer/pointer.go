// SPDX-License-Identifier: Unlicense OR MIT

/*
Package pointer describes the raw pointer input consumed by
gesture recognition.

A Frame is an immutable snapshot of every pointer that is down
(or hovering) at one instant, together with the kind of change
that produced it. Positions are expressed in the coordinate
space of the touch root; recognizers receive copies transformed
into the space of their own target.
*/
package pointer

import (
	"strings"
	"time"

	"gioui.org/f32"
)

// MaxPointers is the maximum number of simultaneous pointers
// a recognizer can track.
const MaxPointers = 12

// Frame is one input frame.
type Frame struct {
	Kind   Kind
	Source Source
	// Time is when the frame was produced. The timestamp is
	// relative to an undefined base.
	Time time.Duration
	// Changed is the index into Pointers of the pointer that
	// was pressed, released or is hovering. It is ignored for
	// Move and Cancel frames.
	Changed int
	// Pointers lists every pointer that is down, including a
	// pointer being released by a Release frame.
	Pointers []Pointer
}

// Pointer is the state of a single pointer within a Frame.
type Pointer struct {
	// ID identifies the pointer from Press to Release or Cancel.
	// IDs are assigned by the input source and may be sparse.
	ID       ID
	Position f32.Point
}

// ID is a raw pointer identifier.
type ID uint32

// Kind of a Frame.
type Kind uint8

// Source of a Frame.
type Source uint8

const (
	// Cancel is generated when the input source aborts the
	// current touch sequence.
	Cancel Kind = 1 << iota
	// Press of a pointer.
	Press
	// Release of a pointer.
	Release
	// Move of one or more pointers.
	Move
	// Hover of a pointer that is not pressed.
	Hover
	// Leave is reported when a hovering pointer leaves the root.
	Leave
)

const (
	// Touch generated frame.
	Touch Source = iota
	// Mouse generated frame.
	Mouse
	// Stylus generated frame.
	Stylus
)

// ChangedPointer returns the pointer that triggered a Press,
// Release, Hover or Leave frame.
func (f Frame) ChangedPointer() (Pointer, bool) {
	switch f.Kind {
	case Press, Release, Hover, Leave:
	default:
		return Pointer{}, false
	}
	if f.Changed < 0 || f.Changed >= len(f.Pointers) {
		return Pointer{}, false
	}
	return f.Pointers[f.Changed], true
}

// Index returns the index of the pointer with the given id,
// or -1.
func (f Frame) Index(id ID) int {
	for i, p := range f.Pointers {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Position returns the position of the first pointer, or the
// zero point for an empty frame.
func (f Frame) Position() f32.Point {
	if len(f.Pointers) == 0 {
		return f32.Point{}
	}
	return f.Pointers[0].Position
}

// Transform returns a copy of f with every position mapped
// through t. The receiver is not modified.
func (f Frame) Transform(t f32.Affine2D) Frame {
	ptrs := make([]Pointer, len(f.Pointers))
	for i, p := range f.Pointers {
		p.Position = t.Transform(p.Position)
		ptrs[i] = p
	}
	f.Pointers = ptrs
	return f
}

func (k Kind) String() string {
	if k == Cancel {
		return "Cancel"
	}
	var buf strings.Builder
	for kk := Kind(1); kk > 0; kk <<= 1 {
		if k&kk > 0 {
			if buf.Len() > 0 {
				buf.WriteByte('|')
			}
			buf.WriteString((k & kk).string())
		}
	}
	return buf.String()
}

func (k Kind) string() string {
	switch k {
	case Press:
		return "Press"
	case Release:
		return "Release"
	case Cancel:
		return "Cancel"
	case Move:
		return "Move"
	case Hover:
		return "Hover"
	case Leave:
		return "Leave"
	default:
		panic("unknown Kind")
	}
}

func (s Source) String() string {
	switch s {
	case Touch:
		return "Touch"
	case Mouse:
		return "Mouse"
	case Stylus:
		return "Stylus"
	default:
		panic("unknown source")
	}
}
