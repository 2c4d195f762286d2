package output

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/dreamware/rangefan/internal/cluster"
)

// TableFormatter formats output as a table (kubectl-style)
type TableFormatter struct {
	options *Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(opts *Options) *TableFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &TableFormatter{
		options: opts,
	}
}

// FormatWorkers outputs the registered workers as a table
func (f *TableFormatter) FormatWorkers(w io.Writer, workers []cluster.WorkerStatus) error {
	if len(workers) == 0 {
		fmt.Fprintln(w, "No workers registered")
		return nil
	}

	colors := NewColorScheme(w, f.options.NoColor)
	table := f.createTable(w)

	headers := []string{"ID", "ADDR", "STATUS"}
	if !f.options.NoHeaders {
		if colors.Disabled {
			table.SetHeader(headers)
		} else {
			coloredHeaders := make([]string, len(headers))
			for i, h := range headers {
				coloredHeaders[i] = colors.Header(h)
			}
			table.SetHeader(coloredHeaders)
		}
	}

	for _, worker := range workers {
		id := worker.ID
		status := worker.Status
		if !colors.Disabled {
			id = colors.WorkerID(id)
			status = colors.StatusColor(worker.Status)(status)
		}
		table.Append([]string{id, worker.Addr, status})
	}

	table.Render()
	return nil
}

// FormatBatch outputs an accumulated result batch as a table
func (f *TableFormatter) FormatBatch(w io.Writer, batch cluster.ResultBatch) error {
	if len(batch.Items) == 0 {
		fmt.Fprintln(w, "No results")
		return nil
	}

	table := f.createTable(w)
	if !f.options.NoHeaders {
		table.SetHeader([]string{"#", "ITEM"})
	}
	for i, item := range batch.Items {
		table.Append([]string{fmt.Sprintf("%d", i+1), item})
	}
	table.Render()

	fmt.Fprintf(w, "\n%d items accumulated\n", len(batch.Items))
	return nil
}

// createTable creates a new table with kubectl-style configuration
func (f *TableFormatter) createTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	return table
}
