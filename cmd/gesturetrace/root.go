// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"

	"github.com/gestalt-go/gestalt/gesture"
)

// options are the flags shared by every command.
type options struct {
	verbose bool
	format  string
}

var formats = []string{"text", "json"}

func newRootCommand() *cobra.Command {
	opts := new(options)
	cmd := &cobra.Command{
		Use:   "gesturetrace",
		Short: "Trace gesture arbitration",
		Long: `gesturetrace feeds pointer input to a gesture orchestrator and prints
the state changes, updates and touch events of its handlers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(formats, opts.format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.format, formats)
			}
			return nil
		},
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log orchestrator decisions to stderr")
	cmd.PersistentFlags().StringVar(&opts.format, "format", "text", "output format (text|json)")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newEvdevCommand(opts))
	return cmd
}

// orchestratorOptions returns the orchestrator options for the
// flags in opts, logging to w.
func (opts *options) orchestratorOptions(w io.Writer) []gesture.Option {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	l := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return []gesture.Option{gesture.WithLogger(l)}
}
