// SPDX-License-Identifier: Unlicense OR MIT

package evdev

import (
	"reflect"
	"testing"

	"gioui.org/f32"

	"github.com/gestalt-go/gestalt/io/pointer"
)

func newTestDecoder() *Decoder {
	return NewDecoder(Axis{Min: 0, Max: 1000}, Axis{Min: 0, Max: 2000}, f32.Pt(100, 200))
}

func decodeAll(d *Decoder, evs ...Event) []pointer.Frame {
	var frames []pointer.Frame
	for _, e := range evs {
		frames = d.Decode(frames, e)
	}
	return frames
}

func abs(code uint16, v int32) Event { return Event{Type: EvAbs, Code: code, Value: v} }

func syn() Event { return Event{Type: EvSyn, Code: SynReport} }

type frameSummary struct {
	Kind    pointer.Kind
	Changed int
	IDs     []pointer.ID
	Pos     []f32.Point
}

func summarize(frames []pointer.Frame) []frameSummary {
	var out []frameSummary
	for _, f := range frames {
		s := frameSummary{Kind: f.Kind}
		if f.Kind != pointer.Move && f.Kind != pointer.Cancel {
			s.Changed = f.Changed
		}
		for _, p := range f.Pointers {
			s.IDs = append(s.IDs, p.ID)
			s.Pos = append(s.Pos, p.Position)
		}
		out = append(out, s)
	}
	return out
}

func TestMultitouch(t *testing.T) {
	d := newTestDecoder()
	id0 := contactID(0, 7)
	id1 := contactID(1, 8)
	frames := decodeAll(d,
		abs(AbsMTSlot, 0),
		abs(AbsMTTrackingID, 7),
		abs(AbsMTPositionX, 100),
		abs(AbsMTPositionY, 200),
		syn(),
		abs(AbsMTSlot, 1),
		abs(AbsMTTrackingID, 8),
		abs(AbsMTPositionX, 500),
		abs(AbsMTPositionY, 500),
		abs(AbsMTSlot, 0),
		abs(AbsMTPositionX, 200),
		syn(),
		abs(AbsMTTrackingID, -1),
		syn(),
		abs(AbsMTSlot, 1),
		abs(AbsMTTrackingID, -1),
		syn(),
	)
	want := []frameSummary{
		{pointer.Press, 0, []pointer.ID{id0}, []f32.Point{{X: 10, Y: 20}}},
		{pointer.Move, 0, []pointer.ID{id0}, []f32.Point{{X: 20, Y: 20}}},
		{pointer.Press, 1, []pointer.ID{id0, id1}, []f32.Point{{X: 20, Y: 20}, {X: 50, Y: 50}}},
		{pointer.Release, 0, []pointer.ID{id0, id1}, []f32.Point{{X: 20, Y: 20}, {X: 50, Y: 50}}},
		{pointer.Release, 0, []pointer.ID{id1}, []f32.Point{{X: 50, Y: 50}}},
	}
	if got := summarize(frames); !reflect.DeepEqual(got, want) {
		t.Errorf("frames:\n got %+v\nwant %+v", got, want)
	}
}

func TestSlotReuse(t *testing.T) {
	d := newTestDecoder()
	frames := decodeAll(d,
		abs(AbsMTTrackingID, 1),
		syn(),
		abs(AbsMTTrackingID, 2),
		syn(),
	)
	want := []frameSummary{
		{pointer.Press, 0, []pointer.ID{contactID(0, 1)}, []f32.Point{{}}},
		{pointer.Release, 0, []pointer.ID{contactID(0, 1)}, []f32.Point{{}}},
		{pointer.Press, 0, []pointer.ID{contactID(0, 2)}, []f32.Point{{}}},
	}
	if got := summarize(frames); !reflect.DeepEqual(got, want) {
		t.Errorf("frames:\n got %+v\nwant %+v", got, want)
	}
}

func TestSingleTouch(t *testing.T) {
	d := newTestDecoder()
	frames := decodeAll(d,
		Event{Type: EvKey, Code: BtnTouch, Value: 1},
		abs(AbsX, 1000),
		abs(AbsY, 3000),
		syn(),
		abs(AbsX, 500),
		syn(),
		syn(),
		Event{Type: EvKey, Code: BtnTouch, Value: 0},
		syn(),
	)
	id := contactID(singleTouchSlot, singleTouchTrack)
	want := []frameSummary{
		{pointer.Press, 0, []pointer.ID{id}, []f32.Point{{X: 100, Y: 200}}},
		{pointer.Move, 0, []pointer.ID{id}, []f32.Point{{X: 50, Y: 200}}},
		{pointer.Release, 0, []pointer.ID{id}, []f32.Point{{X: 50, Y: 200}}},
	}
	if got := summarize(frames); !reflect.DeepEqual(got, want) {
		t.Errorf("frames:\n got %+v\nwant %+v", got, want)
	}
}

func TestDropped(t *testing.T) {
	d := newTestDecoder()
	frames := decodeAll(d,
		abs(AbsMTTrackingID, 3),
		syn(),
		Event{Type: EvSyn, Code: SynDropped},
		abs(AbsMTPositionX, 10),
		syn(),
	)
	if len(frames) != 2 || frames[1].Kind != pointer.Cancel {
		t.Fatalf("frames = %+v, want press then cancel", frames)
	}
	if more := decodeAll(d, syn()); len(more) != 0 {
		t.Errorf("frames after cancel = %+v", more)
	}
}

func TestExtraSlotsIgnored(t *testing.T) {
	d := newTestDecoder()
	frames := decodeAll(d,
		abs(AbsMTSlot, maxSlots),
		abs(AbsMTTrackingID, 1),
		syn(),
	)
	if len(frames) != 0 {
		t.Errorf("frames = %+v, want none", frames)
	}
}

func TestScale(t *testing.T) {
	a := Axis{Min: 100, Max: 300}
	for _, tc := range []struct {
		v    int32
		want float32
	}{
		{100, 0}, {200, 50}, {300, 100}, {0, 0}, {400, 100},
	} {
		if got := scale(tc.v, a, 100); got != tc.want {
			t.Errorf("scale(%d) = %v, want %v", tc.v, got, tc.want)
		}
	}
	if got := scale(42, Axis{}, 100); got != 42 {
		t.Errorf("scale without range = %v, want 42", got)
	}
}
