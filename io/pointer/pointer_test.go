// SPDX-License-Identifier: Unlicense OR MIT

package pointer

import (
	"testing"

	"gioui.org/f32"
)

func TestKindString(t *testing.T) {
	for _, tc := range []struct {
		kind Kind
		res  string
	}{
		{Cancel, "Cancel"},
		{Press, "Press"},
		{Release, "Release"},
		{Move, "Move"},
		{Hover, "Hover"},
		{Leave, "Leave"},
		{Press | Release, "Press|Release"},
		{Hover | Leave, "Hover|Leave"},
		{Press | Move | Leave, "Press|Move|Leave"},
	} {
		t.Run(tc.res, func(t *testing.T) {
			if want, got := tc.res, tc.kind.String(); want != got {
				t.Errorf("got %q; want %q", got, want)
			}
		})
	}
}

func TestChangedPointer(t *testing.T) {
	f := Frame{
		Kind:    Release,
		Changed: 1,
		Pointers: []Pointer{
			{ID: 3, Position: f32.Pt(1, 1)},
			{ID: 9, Position: f32.Pt(2, 2)},
		},
	}
	p, ok := f.ChangedPointer()
	if !ok || p.ID != 9 {
		t.Errorf("got %v, %v; want pointer 9", p, ok)
	}
	f.Kind = Move
	if _, ok := f.ChangedPointer(); ok {
		t.Error("Move frame reported a changed pointer")
	}
	f.Kind = Press
	f.Changed = 2
	if _, ok := f.ChangedPointer(); ok {
		t.Error("out of range Changed index reported a pointer")
	}
}

func TestFrameTransform(t *testing.T) {
	f := Frame{
		Kind:     Move,
		Pointers: []Pointer{{ID: 1, Position: f32.Pt(10, 20)}},
	}
	got := f.Transform(f32.Affine2D{}.Offset(f32.Pt(-5, 5)))
	if p := got.Pointers[0].Position; p != f32.Pt(5, 25) {
		t.Errorf("transformed position %v, want (5,25)", p)
	}
	if p := f.Pointers[0].Position; p != f32.Pt(10, 20) {
		t.Errorf("source frame modified: %v", p)
	}
	if idx := got.Index(1); idx != 0 {
		t.Errorf("Index(1) = %d, want 0", idx)
	}
	if idx := got.Index(2); idx != -1 {
		t.Errorf("Index(2) = %d, want -1", idx)
	}
	if p := got.Position(); p != f32.Pt(5, 25) {
		t.Errorf("Position() = %v, want (5,25)", p)
	}
	if p := (Frame{Kind: Cancel}).Position(); p != (f32.Point{}) {
		t.Errorf("Position() of an empty frame = %v", p)
	}
}
