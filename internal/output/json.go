package output

import (
	"encoding/json"
	"io"

	"github.com/dreamware/rangefan/internal/cluster"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	options *Options
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(opts *Options) *JSONFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &JSONFormatter{
		options: opts,
	}
}

// FormatWorkers outputs the registered workers as JSON
func (f *JSONFormatter) FormatWorkers(w io.Writer, workers []cluster.WorkerStatus) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(struct {
		Workers []cluster.WorkerStatus `json:"workers"`
		Count   int                    `json:"count"`
	}{Workers: workers, Count: len(workers)})
}

// FormatBatch outputs an accumulated result batch as JSON
func (f *JSONFormatter) FormatBatch(w io.Writer, batch cluster.ResultBatch) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(struct {
		Items []string `json:"items"`
		Count int      `json:"count"`
	}{Items: batch.Items, Count: len(batch.Items)})
}
