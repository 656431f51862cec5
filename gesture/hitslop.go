// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"errors"
	"fmt"

	"gioui.org/f32"
)

// ErrHitSlop is returned for a contradictory HitSlop.
var ErrHitSlop = errors.New("gesture: invalid hit slop")

// Slop is an optional hit slop distance.
type Slop struct {
	V   float32
	Set bool
}

// HitSlop expands (positive values) or contracts (negative values)
// the area of a target in which a handler is considered hit.
//
// Width and Height fix the size of the area along an axis. A
// fixed width must be anchored by exactly one of Left or Right,
// and a fixed height by exactly one of Top or Bottom.
type HitSlop struct {
	Left, Top, Right, Bottom Slop
	Width, Height            Slop
}

// Pad returns a set Slop of v.
func Pad(v float32) Slop {
	return Slop{V: v, Set: true}
}

// UniformHitSlop returns a HitSlop padding every edge by p.
func UniformHitSlop(p float32) HitSlop {
	return HitSlop{Left: Pad(p), Top: Pad(p), Right: Pad(p), Bottom: Pad(p)}
}

// IsZero reports whether no field of s is set.
func (s HitSlop) IsZero() bool {
	return s == HitSlop{}
}

// Validate reports whether the pads and sizes of s agree.
func (s HitSlop) Validate() error {
	switch {
	case s.Width.Set && s.Left.Set && s.Right.Set:
		return fmt.Errorf("%w: cannot have all of left, right and width defined", ErrHitSlop)
	case s.Width.Set && !s.Left.Set && !s.Right.Set:
		return fmt.Errorf("%w: when width is set one of left or right pads need to be defined", ErrHitSlop)
	case s.Height.Set && s.Top.Set && s.Bottom.Set:
		return fmt.Errorf("%w: cannot have all of top, bottom and height defined", ErrHitSlop)
	case s.Height.Set && !s.Top.Set && !s.Bottom.Set:
		return fmt.Errorf("%w: when height is set one of top or bottom pads need to be defined", ErrHitSlop)
	}
	return nil
}

// Bounds returns the hit area of a target of the given size, as
// the top left and bottom right corners.
func (s HitSlop) Bounds(size f32.Point) (min, max f32.Point) {
	max = size
	if s.Left.Set {
		min.X -= s.Left.V
	}
	if s.Top.Set {
		min.Y -= s.Top.V
	}
	if s.Right.Set {
		max.X += s.Right.V
	}
	if s.Bottom.Set {
		max.Y += s.Bottom.V
	}
	if s.Width.Set {
		if !s.Left.Set {
			min.X = max.X - s.Width.V
		} else if !s.Right.Set {
			max.X = min.X + s.Width.V
		}
	}
	if s.Height.Set {
		if !s.Top.Set {
			min.Y = max.Y - s.Height.V
		} else if !s.Bottom.Set {
			max.Y = min.Y + s.Height.V
		}
	}
	return min, max
}

// Contains reports whether p lies within the hit area of a target
// of the given size. Edges are inclusive.
func (s HitSlop) Contains(size, p f32.Point) bool {
	min, max := s.Bounds(size)
	return min.X <= p.X && p.X <= max.X && min.Y <= p.Y && p.Y <= max.Y
}

// ParseHitSlop builds a HitSlop from named distances. The keys are
// left, top, right, bottom, width and height, plus horizontal and
// vertical which set both pads of an axis and are overridden by
// the individual pads.
func ParseHitSlop(m map[string]float32) (HitSlop, error) {
	var s HitSlop
	if v, ok := m["horizontal"]; ok {
		s.Left, s.Right = Pad(v), Pad(v)
	}
	if v, ok := m["vertical"]; ok {
		s.Top, s.Bottom = Pad(v), Pad(v)
	}
	for k, v := range m {
		switch k {
		case "left":
			s.Left = Pad(v)
		case "top":
			s.Top = Pad(v)
		case "right":
			s.Right = Pad(v)
		case "bottom":
			s.Bottom = Pad(v)
		case "width":
			s.Width = Pad(v)
		case "height":
			s.Height = Pad(v)
		case "horizontal", "vertical":
		default:
			return HitSlop{}, fmt.Errorf("%w: unknown key %q", ErrHitSlop, k)
		}
	}
	if err := s.Validate(); err != nil {
		return HitSlop{}, err
	}
	return s, nil
}
