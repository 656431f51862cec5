// SPDX-License-Identifier: Unlicense OR MIT

package scenario

import (
	"fmt"
	"strings"

	"gioui.org/f32"

	"github.com/gestalt-go/gestalt/gesture"
	"github.com/gestalt-go/gestalt/io/pointer"
	"github.com/gestalt-go/gestalt/view"
)

// Run builds the target tree and handlers of s, feeds its steps to
// an orchestrator configured by opts and returns the transcript.
func Run(s *Scenario, opts ...gesture.Option) (*Transcript, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	root := view.NewNode(RootName, f32.Point{}, f32.Pt(s.Size[0], s.Size[1]))
	nodes := map[string]*view.Node{RootName: root}
	for _, t := range s.Targets {
		n := view.NewNode(t.Name, f32.Pt(t.At[0], t.At[1]), f32.Pt(t.Size[0], t.Size[1]))
		n.ScrollOffset = f32.Pt(t.Scroll[0], t.Scroll[1])
		if t.Scale != 0 {
			n.Matrix = f32.Affine2D{}.Scale(f32.Point{}, f32.Pt(t.Scale, t.Scale))
		}
		n.Mode, _ = parseOpacity(t.Opacity)
		n.Overflow = t.Overflow
		parent := t.Parent
		if parent == "" {
			parent = RootName
		}
		nodes[parent].Add(n)
		nodes[t.Name] = n
	}

	tr := NewTranscript(s.Name)
	reg := gesture.NewRegistry()
	rel := new(gesture.Relations)
	for _, hs := range s.Handlers {
		r, _ := newRecognizer(hs)
		h := gesture.NewHandler(hs.Tag, r)
		if err := h.Configure(hs.Config); err != nil {
			return nil, fmt.Errorf("%w: handler %d: %v", ErrInvalid, hs.Tag, err)
		}
		h.SetPolicy(rel)
		h.SetObserver(tr)
		tr.Label(hs.Tag, hs.Name)
		target := hs.Target
		if target == "" {
			target = RootName
		}
		reg.Attach(nodes[target], h)
	}
	for _, r := range s.Relations {
		rel.WaitFor(r.Handler, r.WaitFor...)
		rel.Blocks(r.Handler, r.Blocks...)
		rel.Simultaneous(r.Handler, r.Simultaneous...)
		rel.CancelledBy(r.Handler, r.CancelledBy...)
	}

	o := gesture.NewOrchestrator(root, reg, opts...)
	for i, st := range s.Steps {
		switch {
		case st.Frame != "":
			f := st.frame()
			tr.Step(Describe(f))
			o.Frame(f)
		case st.State != nil:
			h, ok := reg.Handler(st.State.Handler)
			if !ok {
				return nil, fmt.Errorf("%w: step %d: handler %d is detached", ErrInvalid, i+1, st.State.Handler)
			}
			to, _ := parseState(st.State.To)
			tr.Step(fmt.Sprintf("state %s %v", tr.name(h.Tag()), to))
			h.SetState(to)
		case st.Detach != nil:
			h, ok := reg.Handler(*st.Detach)
			if !ok {
				return nil, fmt.Errorf("%w: step %d: handler %d is detached", ErrInvalid, i+1, *st.Detach)
			}
			tr.Step(fmt.Sprintf("detach %s", tr.name(h.Tag())))
			reg.Detach(h)
			rel.Drop(h.Tag())
		case st.Drop != "":
			n := nodes[st.Drop]
			tr.Step(fmt.Sprintf("drop %s", st.Drop))
			for _, h := range reg.HandlersFor(n) {
				rel.Drop(h.Tag())
			}
			reg.DropTarget(n)
		case st.Remove != "":
			n := nodes[st.Remove]
			tr.Step(fmt.Sprintf("remove %s", st.Remove))
			if p, ok := n.Parent().(*view.Node); ok {
				p.Remove(n)
			}
		}
	}
	return tr, nil
}

func (st *Step) frame() pointer.Frame {
	k, _ := parseKind(st.Frame)
	src, _ := parseSource(st.Source)
	f := pointer.Frame{Kind: k, Source: src, Changed: st.Changed}
	for _, p := range st.Pointers {
		f.Pointers = append(f.Pointers, pointer.Pointer{
			ID:       pointer.ID(p.ID),
			Position: f32.Pt(p.At[0], p.At[1]),
		})
	}
	return f
}

// Describe formats f for transcripts, marking the changed pointer
// of presses, releases and hovers with a '*'.
func Describe(f pointer.Frame) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(f.Kind.String()))
	changed, hasChanged := f.ChangedPointer()
	for _, p := range f.Pointers {
		b.WriteByte(' ')
		if hasChanged && p.ID == changed.ID {
			b.WriteByte('*')
		}
		fmt.Fprintf(&b, "%d%s", p.ID, formatPoint(p.Position))
	}
	return b.String()
}

func formatPoint(p f32.Point) string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

type action func(h *gesture.Handler)

// activate and force wait for the required number of pointers.
var actions = map[string]action{
	"begin": (*gesture.Handler).Begin,
	"activate": func(h *gesture.Handler) {
		if h.HasRequiredPointers() {
			h.Activate(false)
		}
	},
	"force": func(h *gesture.Handler) {
		if h.HasRequiredPointers() {
			h.Activate(true)
		}
	},
	"end":    (*gesture.Handler).End,
	"fail":   (*gesture.Handler).Fail,
	"cancel": (*gesture.Handler).Cancel,
}

// script is a Recognizer running fixed actions per frame kind.
type script struct {
	on     map[pointer.Kind][]action
	hovers bool
}

func (s *script) Handle(h *gesture.Handler, f pointer.Frame) {
	for _, a := range s.on[f.Kind] {
		a(h)
	}
}

func (s *script) Hovers() bool {
	return s.hovers
}

func newRecognizer(h Handler) (gesture.Recognizer, error) {
	switch h.Kind {
	case "manual", "hover":
		if len(h.On) > 0 || h.Hovers {
			return nil, fmt.Errorf("%s handlers take no actions", h.Kind)
		}
		if h.Kind == "manual" {
			return gesture.Manual{}, nil
		}
		return gesture.Hover{}, nil
	case "", "script":
		s := &script{on: make(map[pointer.Kind][]action), hovers: h.Hovers}
		for k, names := range h.On {
			kind, err := parseKind(k)
			if err != nil {
				return nil, err
			}
			if kind == pointer.Cancel {
				return nil, fmt.Errorf("no actions on cancel frames")
			}
			for _, n := range names {
				a, ok := actions[n]
				if !ok {
					return nil, fmt.Errorf("unknown action %q", n)
				}
				s.on[kind] = append(s.on[kind], a)
			}
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown kind %q", h.Kind)
	}
}

func parseKind(s string) (pointer.Kind, error) {
	switch s {
	case "press":
		return pointer.Press, nil
	case "release":
		return pointer.Release, nil
	case "move":
		return pointer.Move, nil
	case "hover":
		return pointer.Hover, nil
	case "leave":
		return pointer.Leave, nil
	case "cancel":
		return pointer.Cancel, nil
	default:
		return 0, fmt.Errorf("unknown frame kind %q", s)
	}
}

func parseSource(s string) (pointer.Source, error) {
	switch s {
	case "", "touch":
		return pointer.Touch, nil
	case "mouse":
		return pointer.Mouse, nil
	case "stylus":
		return pointer.Stylus, nil
	default:
		return 0, fmt.Errorf("unknown source %q", s)
	}
}

func parseOpacity(s string) (view.Opacity, error) {
	switch s {
	case "", "auto":
		return view.Auto, nil
	case "blocking":
		return view.Blocking, nil
	case "selfOnly":
		return view.SelfOnly, nil
	case "childrenOnly":
		return view.ChildrenOnly, nil
	default:
		return 0, fmt.Errorf("unknown opacity %q", s)
	}
}

func parseState(s string) (gesture.State, error) {
	for st := gesture.StateUndetermined; st <= gesture.StateEnd; st++ {
		if strings.EqualFold(s, st.String()) {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown state %q", s)
}
