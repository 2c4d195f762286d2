package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dreamware/rangefan/internal/cluster"
)

// newDrainCmd creates the drain command
func newDrainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drain",
		Short: "Begin graceful coordinator shutdown",
		Long: `Tell the coordinator that no further ranges will arrive.

New submissions are rejected from this point on. The coordinator keeps
running until every outstanding chunk has been accounted for, then
stops itself.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout())
			defer cancel()

			if err := cluster.PostJSON(ctx, coordinatorURL()+"/drain", nil, nil); err != nil {
				return fmt.Errorf("failed to drain coordinator: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Coordinator is draining")
			return nil
		},
	}
}
