// Command planctl builds study plans offline and replays request fixtures
// against a running API to check that its output is stable.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "planctl",
		Short:        "Generate and verify study plans",
		SilenceUsage: true,
	}
	root.AddCommand(newGenerateCommand(), newReplayCommand())
	return root
}
