package blockfeeder

import (
	"github.com/spf13/cobra"

	"github.com/WholesumNet/block-feeder/internal/blobsource"
	"github.com/WholesumNet/block-feeder/internal/feeder"
	"github.com/WholesumNet/block-feeder/internal/logstore"
	"github.com/WholesumNet/block-feeder/internal/runtime"
)

// newWriteCommand constructs the `write` subcommand.
func newWriteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "write",
		Short: "Reset the log and append every subblock and aggregate of the block set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd.Context(), func(rt *runtime.Runtime, store logstore.Store) error {
				p := &feeder.Producer{
					Store:   store,
					Locator: blobsource.New(a.root, a.size),
					Out:     cmd.OutOrStdout(),
					Logger:  a.logger,
					Metrics: rt.Metrics(),
				}
				_, err := p.Run(cmd.Context())
				return err
			})
		},
	}
}
