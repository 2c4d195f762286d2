package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dreamware/rangefan/internal/cluster"
	"github.com/dreamware/rangefan/internal/output"
)

// newWorkersCmd creates the workers command
func newWorkersCmd() *cobra.Command {
	var noHeaders bool

	cmd := &cobra.Command{
		Use:     "workers",
		Short:   "List registered workers and their health",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout())
			defer cancel()

			var resp struct {
				Workers []cluster.WorkerStatus `json:"workers"`
				Count   int                    `json:"count"`
			}
			if err := cluster.GetJSON(ctx, coordinatorURL()+"/workers", &resp); err != nil {
				return fmt.Errorf("failed to list workers: %w", err)
			}

			format := output.Format(viper.GetString("output"))
			formatter := output.NewFormatter(format,
				output.WithNoColor(viper.GetBool("no-color")),
				output.WithNoHeaders(noHeaders),
			)
			return formatter.FormatWorkers(cmd.OutOrStdout(), resp.Workers)
		},
	}

	cmd.Flags().BoolVar(&noHeaders, "no-headers", false, "omit table headers")

	return cmd
}
