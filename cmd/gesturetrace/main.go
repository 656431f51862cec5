// SPDX-License-Identifier: Unlicense OR MIT

// Command gesturetrace runs gesture scenarios and live touch devices
// through an orchestrator and prints what the handlers report.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "gesturetrace: %v\n", err)
		os.Exit(1)
	}
}
