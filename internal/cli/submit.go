package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dreamware/rangefan/internal/cluster"
)

// newSubmitCmd creates the submit command
func newSubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit <start> <end>",
		Short: "Submit a numeric range for processing",
		Long: `Submit the inclusive range [start, end] to the coordinator.

The coordinator partitions the range into one chunk per worker and
fans the chunks out. Results are rendered on the coordinator's console
when the whole request completes.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid start %q: %w", args[0], err)
			}
			end, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid end %q: %w", args[1], err)
			}
			if start > end {
				return fmt.Errorf("start %d must be <= end %d", start, end)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout())
			defer cancel()

			req := cluster.RangeRequest{Start: start, End: end}
			if err := cluster.PostJSON(ctx, coordinatorURL()+"/ranges", req, nil); err != nil {
				return fmt.Errorf("failed to submit range: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Submitted range [%d, %d]\n", start, end)
			return nil
		},
	}
}
