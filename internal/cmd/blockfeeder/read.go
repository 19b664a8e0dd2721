package blockfeeder

import (
	"github.com/spf13/cobra"

	"github.com/WholesumNet/block-feeder/internal/feeder"
	"github.com/WholesumNet/block-feeder/internal/logstore"
	"github.com/WholesumNet/block-feeder/internal/runtime"
)

// newReadCommand constructs the `read` subcommand.
func newReadCommand(a *app) *cobra.Command {
	readCmd := &cobra.Command{
		Use:   "read",
		Short: "Wait for entries and print each key with its payload length",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			group, _ := cmd.Flags().GetString("group")
			follow, _ := cmd.Flags().GetBool("follow")
			expr, _ := cmd.Flags().GetString("filter")

			filter, err := feeder.NewFilter(expr)
			if err != nil {
				return err
			}
			return a.withStore(cmd.Context(), func(rt *runtime.Runtime, store logstore.Store) error {
				c := &feeder.Consumer{
					Store:   store,
					Out:     cmd.OutOrStdout(),
					Logger:  a.logger,
					Metrics: rt.Metrics(),
					Group:   group,
					Limit:   a.cfg.ReadLimit,
					Filter:  filter,
				}
				if follow {
					return c.Follow(cmd.Context())
				}
				_, err := c.Run(cmd.Context())
				return err
			})
		},
	}
	readCmd.Flags().String("group", "", "Resume after, and commit, this group's cursor")
	readCmd.Flags().Bool("follow", false, "Keep reading new entries until interrupted")
	readCmd.Flags().Int("limit", 0, "Max entries per read (0 = all available)")
	readCmd.Flags().String("filter", "", "CEL filter over block, index, size, key")
	return readCmd
}
