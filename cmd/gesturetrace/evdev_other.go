// SPDX-License-Identifier: Unlicense OR MIT

//go:build !linux
// +build !linux

package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func newEvdevCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "evdev",
		Short: "Trace a live touch device (Linux only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("evdev devices are only supported on Linux")
		},
	}
}
