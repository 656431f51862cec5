// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"context"
	"errors"
	"fmt"

	"gioui.org/f32"
	"github.com/spf13/cobra"

	"github.com/gestalt-go/gestalt/io/evdev"
)

func newEvdevCommand(opts *options) *cobra.Command {
	var (
		device        string
		width, height float32
		activate      bool
	)
	cmd := &cobra.Command{
		Use:   "evdev",
		Short: "Trace a live touch device",
		Long: `Evdev reads a Linux multitouch device and feeds its contacts to a
single full screen handler, printing every step as it happens. The
handler begins on the first touch and fails when the last pointer is
released, unless --activate is set, in which case it activates on the
first touch and ends on release.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := evdev.Open(device, f32.Pt(width, height))
			if err != nil {
				return err
			}
			defer dev.Close()
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go func() {
				<-ctx.Done()
				dev.Close()
			}()
			fmt.Fprintf(cmd.ErrOrStderr(), "reading %s (%s)\n", device, dev.Name())
			t := newLiveTrace(opts, cmd.ErrOrStderr(), f32.Pt(width, height), activate)
			for {
				frames, err := dev.Next()
				if errors.Is(err, evdev.ErrClosed) {
					return nil
				}
				if err != nil {
					return err
				}
				if err := t.feed(cmd.OutOrStdout(), frames); err != nil {
					return err
				}
			}
		},
	}
	cmd.Flags().StringVarP(&device, "device", "d", "", "evdev device node, for example /dev/input/event3")
	cmd.Flags().Float32Var(&width, "width", 1080, "width of the screen the device is scaled to")
	cmd.Flags().Float32Var(&height, "height", 1920, "height of the screen the device is scaled to")
	cmd.Flags().BoolVar(&activate, "activate", false, "activate the handler on the first touch")
	cmd.MarkFlagRequired("device")
	return cmd
}
