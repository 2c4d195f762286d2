package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/dreamware/rangefan/internal/cluster"
	"github.com/dreamware/rangefan/internal/history"
)

// newBatchesCmd creates the batches command
func newBatchesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batches",
		Short: "List completed result batches",
		Long: `List the result batches the coordinator has completed so far.

Each batch is the full accumulated result log at the moment one range
request completed, so later batches contain everything earlier ones do.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout())
			defer cancel()

			var resp struct {
				Batches []history.Entry `json:"batches"`
				Count   int             `json:"count"`
			}
			if err := cluster.GetJSON(ctx, coordinatorURL()+"/batches", &resp); err != nil {
				return fmt.Errorf("failed to list batches: %w", err)
			}

			switch viper.GetString("output") {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			case "yaml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(resp)
			default:
				return batchesTable(cmd, resp.Batches)
			}
		},
	}
}

func batchesTable(cmd *cobra.Command, batches []history.Entry) error {
	if len(batches) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No completed batches")
		return nil
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"SEQ", "COMPLETED", "ITEMS", "TAIL"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	for _, batch := range batches {
		tail := batch.Items
		if len(tail) > 5 {
			tail = tail[len(tail)-5:]
		}
		table.Append([]string{
			fmt.Sprintf("%d", batch.Seq),
			batch.CompletedAt.Format("15:04:05"),
			fmt.Sprintf("%d", len(batch.Items)),
			strings.Join(tail, " "),
		})
	}
	table.Render()
	return nil
}
