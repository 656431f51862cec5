// SPDX-License-Identifier: Unlicense OR MIT

/*
Package evdev turns Linux multitouch input events into pointer
frames.

The Decoder understands type B of the kernel multitouch protocol
(slots and tracking ids) as well as single touch devices that only
report ABS_X, ABS_Y and BTN_TOUCH. Events are accumulated until a
SYN_REPORT, at which point the changes since the previous report
are emitted as pointer.Frames: one Move frame for the contacts that
moved, one Release frame per lifted contact and one Press frame per
new contact, in that order.

The Decoder is portable; Device, which reads events from a device
node, is only available on Linux.
*/
package evdev

import (
	"time"

	"gioui.org/f32"

	"github.com/gestalt-go/gestalt/io/pointer"
)

// Event types and codes from linux/input-event-codes.h.
const (
	EvSyn = 0x00
	EvKey = 0x01
	EvAbs = 0x03

	SynReport  = 0x00
	SynDropped = 0x03

	BtnTouch = 0x14a

	AbsX            = 0x00
	AbsY            = 0x01
	AbsMTSlot       = 0x2f
	AbsMTPositionX  = 0x35
	AbsMTPositionY  = 0x36
	AbsMTTrackingID = 0x39
)

const (
	maxSlots = pointer.MaxPointers

	// Single touch devices report through slot 0.
	singleTouchSlot  = 0
	singleTouchTrack = 0
)

// Event is a decoded input_event.
type Event struct {
	Time  time.Duration
	Type  uint16
	Code  uint16
	Value int32
}

// Axis is the range of an absolute axis.
type Axis struct {
	Min, Max int32
}

type slot struct {
	// track is the tracking id, or -1 for an empty slot.
	track int32
	x, y  int32
	// down, id and pos are the contact reported in the last
	// frames.
	down bool
	id   pointer.ID
	pos  f32.Point
}

// lifted reports whether the reported contact of s is gone, possibly
// replaced by a new one.
func (s *slot) lifted(i int) bool {
	return s.down && (s.track < 0 || contactID(i, s.track) != s.id)
}

// Decoder accumulates input events into pointer frames.
type Decoder struct {
	size  f32.Point
	xAxis Axis
	yAxis Axis

	slots [maxSlots]slot
	cur   int
	// multitouch is set once an ABS_MT event is seen.
	multitouch bool
	// dropped is set after SYN_DROPPED until the next report.
	dropped bool
}

// NewDecoder returns a decoder scaling the x and y axes to size.
func NewDecoder(x, y Axis, size f32.Point) *Decoder {
	d := &Decoder{size: size, xAxis: x, yAxis: y}
	for i := range d.slots {
		d.slots[i].track = -1
	}
	return d
}

// Decode feeds e to the decoder and appends the frames completed
// by e, if any, to frames.
func (d *Decoder) Decode(frames []pointer.Frame, e Event) []pointer.Frame {
	switch e.Type {
	case EvAbs:
		d.abs(e)
	case EvKey:
		if e.Code == BtnTouch && !d.multitouch {
			s := &d.slots[singleTouchSlot]
			if e.Value != 0 {
				s.track = singleTouchTrack
			} else {
				s.track = -1
			}
		}
	case EvSyn:
		switch e.Code {
		case SynDropped:
			d.dropped = true
		case SynReport:
			if d.dropped {
				// The state since the last report is unreliable.
				d.dropped = false
				return d.cancel(frames, e.Time)
			}
			return d.report(frames, e.Time)
		}
	}
	return frames
}

func (d *Decoder) abs(e Event) {
	switch e.Code {
	case AbsMTSlot:
		d.multitouch = true
		d.cur = int(e.Value)
	case AbsMTTrackingID:
		d.multitouch = true
		if s := d.slot(); s != nil {
			s.track = e.Value
		}
	case AbsMTPositionX:
		d.multitouch = true
		if s := d.slot(); s != nil {
			s.x = e.Value
		}
	case AbsMTPositionY:
		d.multitouch = true
		if s := d.slot(); s != nil {
			s.y = e.Value
		}
	case AbsX:
		if !d.multitouch {
			d.slots[singleTouchSlot].x = e.Value
		}
	case AbsY:
		if !d.multitouch {
			d.slots[singleTouchSlot].y = e.Value
		}
	}
}

// slot returns the current slot, or nil if the device reports
// more slots than supported.
func (d *Decoder) slot() *slot {
	if d.cur < 0 || d.cur >= len(d.slots) {
		return nil
	}
	return &d.slots[d.cur]
}

func (d *Decoder) report(frames []pointer.Frame, t time.Duration) []pointer.Frame {
	moved := false
	for i := range d.slots {
		s := &d.slots[i]
		if s.down && !s.lifted(i) {
			if p := d.position(s); p != s.pos {
				s.pos = p
				moved = true
			}
		}
	}
	if moved {
		frames = append(frames, d.frame(pointer.Move, -1, t))
	}
	for i := range d.slots {
		s := &d.slots[i]
		if s.lifted(i) {
			frames = append(frames, d.frame(pointer.Release, i, t))
			s.down = false
		}
	}
	for i := range d.slots {
		s := &d.slots[i]
		if !s.down && s.track >= 0 {
			s.down = true
			s.id = contactID(i, s.track)
			s.pos = d.position(s)
			frames = append(frames, d.frame(pointer.Press, i, t))
		}
	}
	return frames
}

// cancel forgets every contact and emits a Cancel frame if any
// was down.
func (d *Decoder) cancel(frames []pointer.Frame, t time.Duration) []pointer.Frame {
	down := false
	for i := range d.slots {
		s := &d.slots[i]
		down = down || s.down
		s.down = false
		s.track = -1
	}
	if !down {
		return frames
	}
	return append(frames, pointer.Frame{Kind: pointer.Cancel, Source: pointer.Touch, Time: t})
}

// frame builds a frame of the contacts that are down, marking the
// contact in slot changed. Changed is ignored for Move frames.
func (d *Decoder) frame(k pointer.Kind, changed int, t time.Duration) pointer.Frame {
	f := pointer.Frame{Kind: k, Source: pointer.Touch, Time: t}
	for i := range d.slots {
		s := &d.slots[i]
		if !s.down {
			continue
		}
		if i == changed {
			f.Changed = len(f.Pointers)
		}
		f.Pointers = append(f.Pointers, pointer.Pointer{ID: s.id, Position: s.pos})
	}
	return f
}

// contactID returns the pointer id of the contact tracked as track
// in slot i. Tracking ids are only unique among live contacts, so
// the slot is encoded as well.
func contactID(i int, track int32) pointer.ID {
	return pointer.ID(uint32(track)<<4 | uint32(i))
}

func (d *Decoder) position(s *slot) f32.Point {
	return f32.Pt(scale(s.x, d.xAxis, d.size.X), scale(s.y, d.yAxis, d.size.Y))
}

func scale(v int32, a Axis, size float32) float32 {
	if a.Max <= a.Min {
		return float32(v)
	}
	if v < a.Min {
		v = a.Min
	}
	if v > a.Max {
		v = a.Max
	}
	return float32(v-a.Min) * size / float32(a.Max-a.Min)
}
