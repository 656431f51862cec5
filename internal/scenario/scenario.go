// SPDX-License-Identifier: Unlicense OR MIT

// Package scenario runs declarative gesture scenarios: a target tree,
// the handlers attached to it, their relations and a sequence of
// input frames and host commands. Running a scenario produces a
// Transcript of everything the handlers reported.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/gestalt-go/gestalt/gesture"
)

// ErrInvalid is returned for scenarios that cannot be run.
var ErrInvalid = errors.New("scenario: invalid")

// RootName names the root target of every scenario.
const RootName = "root"

// Scenario is a decoded scenario file.
type Scenario struct {
	Name        string `yaml:"name" toml:"name"`
	Description string `yaml:"description" toml:"description"`
	// Size of the root target.
	Size      Vec        `yaml:"size" toml:"size"`
	Targets   []Target   `yaml:"targets" toml:"targets"`
	Handlers  []Handler  `yaml:"handlers" toml:"handlers"`
	Relations []Relation `yaml:"relations" toml:"relations"`
	Steps     []Step     `yaml:"steps" toml:"steps"`
}

// Vec is a point or size written as [x, y].
type Vec [2]float32

// Target declares a target below the root. Siblings are drawn in
// declaration order.
type Target struct {
	Name string `yaml:"name" toml:"name"`
	// Parent defaults to the root.
	Parent string `yaml:"parent" toml:"parent"`
	At     Vec    `yaml:"at" toml:"at"`
	Size   Vec    `yaml:"size" toml:"size"`
	Scroll Vec    `yaml:"scroll" toml:"scroll"`
	// Scale, if set, scales the target about its origin.
	Scale float32 `yaml:"scale" toml:"scale"`
	// Opacity is auto (the default), blocking, selfOnly or
	// childrenOnly.
	Opacity  string `yaml:"opacity" toml:"opacity"`
	Overflow bool   `yaml:"overflow" toml:"overflow"`
}

// Handler declares a handler attached to a target.
type Handler struct {
	Tag  int    `yaml:"tag" toml:"tag"`
	Name string `yaml:"name" toml:"name"`
	// Target defaults to the root.
	Target string `yaml:"target" toml:"target"`
	// Kind is "script" (the default), "manual" or "hover".
	Kind string `yaml:"kind" toml:"kind"`
	// On maps frame kinds (press, release, move, hover, leave) to
	// the actions a script handler takes: begin, activate, force,
	// end, fail or cancel.
	On     map[string][]string `yaml:"on" toml:"on"`
	Hovers bool                `yaml:"hovers" toml:"hovers"`
	Config gesture.Config      `yaml:"config" toml:"config"`
}

// Relation declares how the handler tagged Handler relates to
// others.
type Relation struct {
	Handler      int   `yaml:"handler" toml:"handler"`
	WaitFor      []int `yaml:"waitFor" toml:"waitFor"`
	Blocks       []int `yaml:"blocks" toml:"blocks"`
	Simultaneous []int `yaml:"simultaneous" toml:"simultaneous"`
	CancelledBy  []int `yaml:"cancelledBy" toml:"cancelledBy"`
}

// Step is either an input frame or a host command. Exactly one of
// Frame, State, Detach, Drop and Remove is set.
type Step struct {
	// Frame is the kind of an input frame: press, release, move,
	// hover, leave or cancel.
	Frame   string `yaml:"frame" toml:"frame"`
	Source  string `yaml:"source" toml:"source"`
	Changed int    `yaml:"changed" toml:"changed"`
	// Pointers lists the pointers of the frame in root
	// coordinates.
	Pointers []Pointer `yaml:"pointers" toml:"pointers"`

	// State moves a handler on behalf of the host.
	State *StateCommand `yaml:"state" toml:"state"`
	// Detach detaches the handler with the given tag.
	Detach *int `yaml:"detach" toml:"detach"`
	// Drop detaches every handler attached to the named target.
	Drop string `yaml:"drop" toml:"drop"`
	// Remove removes the named target from its parent.
	Remove string `yaml:"remove" toml:"remove"`
}

// Pointer is a pointer of a frame step.
type Pointer struct {
	ID uint32 `yaml:"id" toml:"id"`
	At Vec    `yaml:"at" toml:"at"`
}

// StateCommand is a host state change.
type StateCommand struct {
	Handler int    `yaml:"handler" toml:"handler"`
	To      string `yaml:"to" toml:"to"`
}

// Load reads a scenario file. The format is chosen by extension:
// .yaml and .yml files are YAML, .toml files are TOML.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	var s *Scenario
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		s, err = ParseYAML(data)
	case ".toml":
		s, err = ParseTOML(data)
	default:
		return nil, fmt.Errorf("%w: %s: unknown format %q", ErrInvalid, path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// ParseYAML decodes a YAML scenario. Unknown fields are rejected.
func ParseYAML(data []byte) (*Scenario, error) {
	s := new(Scenario)
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ParseTOML decodes a TOML scenario. Unknown keys are rejected.
func ParseTOML(data []byte) (*Scenario, error) {
	s := new(Scenario)
	md, err := toml.Decode(string(data), s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if und := md.Undecoded(); len(und) > 0 {
		return nil, fmt.Errorf("%w: unknown keys %v", ErrInvalid, und)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the references and names of s without building
// it.
func (s *Scenario) Validate() error {
	if s.Size[0] <= 0 || s.Size[1] <= 0 {
		return fmt.Errorf("%w: root size %v", ErrInvalid, s.Size)
	}
	targets := map[string]bool{RootName: true}
	for _, t := range s.Targets {
		switch {
		case t.Name == "":
			return fmt.Errorf("%w: unnamed target", ErrInvalid)
		case targets[t.Name]:
			return fmt.Errorf("%w: duplicate target %q", ErrInvalid, t.Name)
		case t.Parent != "" && !targets[t.Parent]:
			return fmt.Errorf("%w: target %q: parent %q must be declared first", ErrInvalid, t.Name, t.Parent)
		}
		if _, err := parseOpacity(t.Opacity); err != nil {
			return fmt.Errorf("%w: target %q: %v", ErrInvalid, t.Name, err)
		}
		targets[t.Name] = true
	}
	tags := make(map[int]bool)
	for _, h := range s.Handlers {
		if tags[h.Tag] {
			return fmt.Errorf("%w: duplicate handler tag %d", ErrInvalid, h.Tag)
		}
		tags[h.Tag] = true
		if h.Target != "" && !targets[h.Target] {
			return fmt.Errorf("%w: handler %d: unknown target %q", ErrInvalid, h.Tag, h.Target)
		}
		if _, err := newRecognizer(h); err != nil {
			return fmt.Errorf("%w: handler %d: %v", ErrInvalid, h.Tag, err)
		}
		if h.Config.HitSlop != nil {
			if _, err := gesture.ParseHitSlop(h.Config.HitSlop); err != nil {
				return fmt.Errorf("%w: handler %d: %v", ErrInvalid, h.Tag, err)
			}
		}
	}
	for _, r := range s.Relations {
		for _, others := range [][]int{{r.Handler}, r.WaitFor, r.Blocks, r.Simultaneous, r.CancelledBy} {
			for _, tag := range others {
				if !tags[tag] {
					return fmt.Errorf("%w: relation of %d: unknown handler %d", ErrInvalid, r.Handler, tag)
				}
			}
		}
	}
	for i, st := range s.Steps {
		if err := st.validate(tags, targets); err != nil {
			return fmt.Errorf("%w: step %d: %v", ErrInvalid, i+1, err)
		}
	}
	return nil
}

func (st *Step) validate(tags map[int]bool, targets map[string]bool) error {
	n := 0
	if st.Frame != "" {
		n++
	}
	if st.State != nil {
		n++
	}
	if st.Detach != nil {
		n++
	}
	if st.Drop != "" {
		n++
	}
	if st.Remove != "" {
		n++
	}
	if n != 1 {
		return errors.New("exactly one of frame, state, detach, drop and remove must be set")
	}
	switch {
	case st.Frame != "":
		if _, err := parseKind(st.Frame); err != nil {
			return err
		}
		if _, err := parseSource(st.Source); err != nil {
			return err
		}
	case st.State != nil:
		if !tags[st.State.Handler] {
			return fmt.Errorf("unknown handler %d", st.State.Handler)
		}
		if _, err := parseState(st.State.To); err != nil {
			return err
		}
	case st.Detach != nil:
		if !tags[*st.Detach] {
			return fmt.Errorf("unknown handler %d", *st.Detach)
		}
	case st.Drop != "":
		if !targets[st.Drop] {
			return fmt.Errorf("unknown target %q", st.Drop)
		}
	case st.Remove != "":
		if st.Remove == RootName || !targets[st.Remove] {
			return fmt.Errorf("cannot remove target %q", st.Remove)
		}
	}
	return nil
}
