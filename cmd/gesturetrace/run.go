// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gestalt-go/gestalt/internal/scenario"
)

func newRunCommand(opts *options) *cobra.Command {
	var jobs int
	cmd := &cobra.Command{
		Use:   "run <scenario>...",
		Short: "Run scenario files",
		Long: `Run loads YAML (.yaml, .yml) or TOML (.toml) scenario files, runs each
with its own orchestrator and prints the transcripts in argument order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			trs, err := runFiles(opts, cmd.ErrOrStderr(), args, jobs)
			if err != nil {
				return err
			}
			return writeTranscripts(cmd.OutOrStdout(), opts.format, trs)
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "maximum number of scenarios run at once (0 for no limit)")
	return cmd
}

// runFiles runs the scenario files concurrently. The first error
// stops the remaining runs.
func runFiles(opts *options, logw io.Writer, files []string, jobs int) ([]*scenario.Transcript, error) {
	trs := make([]*scenario.Transcript, len(files))
	var g errgroup.Group
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			s, err := scenario.Load(file)
			if err != nil {
				return err
			}
			tr, err := scenario.Run(s, opts.orchestratorOptions(logw)...)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			trs[i] = tr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return trs, nil
}

func writeTranscripts(w io.Writer, format string, trs []*scenario.Transcript) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(trs)
	}
	for _, tr := range trs {
		if _, err := fmt.Fprintf(w, "# %s\n", tr.Scenario); err != nil {
			return err
		}
		if _, err := tr.WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}
