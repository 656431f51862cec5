// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"gioui.org/f32"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestalt-go/gestalt/internal/scenario"
	"github.com/gestalt-go/gestalt/io/pointer"
)

var scenarios = filepath.Join("..", "..", "internal", "scenario", "testdata")

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	cmd := newRootCommand()
	for _, name := range []string{"run", "evdev"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
	f := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, f)
	assert.Equal(t, "text", f.DefValue)
}

func TestRunText(t *testing.T) {
	out, err := execute(t, "run", "-j", "1",
		filepath.Join(scenarios, "wait_for_tap.yaml"),
		filepath.Join(scenarios, "transparent_list.toml"),
	)
	require.NoError(t, err)
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "run_text", []byte(out))
}

func TestRunJSON(t *testing.T) {
	out, err := execute(t, "run", "--format", "json", filepath.Join(scenarios, "wait_for_tap.yaml"))
	require.NoError(t, err)

	var trs []scenario.Transcript
	require.NoError(t, json.Unmarshal([]byte(out), &trs))
	require.Len(t, trs, 1)
	assert.Equal(t, "wait_for_tap", trs[0].Scenario)
	require.Len(t, trs[0].Steps, 3)
	assert.Equal(t, "release *0(11,10)", trs[0].Steps[2].Input)
	assert.Equal(t, scenario.Entry{
		Handler: "longpress",
		Tag:     2,
		Event:   "state",
		Detail:  "BEGAN->CANCELLED",
	}, trs[0].Steps[2].Entries[1])
}

func TestRunErrors(t *testing.T) {
	_, err := execute(t, "run", "--format", "xml", filepath.Join(scenarios, "wait_for_tap.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")

	_, err = execute(t, "run")
	require.Error(t, err)

	_, err = execute(t, "run",
		filepath.Join(scenarios, "wait_for_tap.yaml"),
		filepath.Join(scenarios, "missing.yaml"),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.yaml")
}

func TestLiveTrace(t *testing.T) {
	l := newLiveTrace(&options{format: "text"}, io.Discard, f32.Pt(100, 100), true)
	press := pointer.Frame{
		Kind:     pointer.Press,
		Source:   pointer.Touch,
		Pointers: []pointer.Pointer{{ID: 5, Position: f32.Pt(10, 10)}},
	}
	release := press
	release.Kind = pointer.Release

	var out bytes.Buffer
	require.NoError(t, l.feed(&out, []pointer.Frame{press}))
	assert.Equal(t, "step 1: press *5(10,10)\n"+
		"  screen state UNDETERMINED->BEGAN\n"+
		"  screen touch DOWN 0(10,10) of 1\n"+
		"  screen state BEGAN->ACTIVE\n", out.String())

	out.Reset()
	require.NoError(t, l.feed(&out, []pointer.Frame{release}))
	assert.Equal(t, "step 2: release *5(10,10)\n"+
		"  screen touch UP 0(10,10) of 1\n"+
		"  screen state ACTIVE->END\n"+
		"  screen update release *0(10,10)\n", out.String())
}
