package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dreamware/rangefan/internal/cluster"
)

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	options *Options
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(opts *Options) *YAMLFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &YAMLFormatter{
		options: opts,
	}
}

// FormatWorkers outputs the registered workers as YAML
func (f *YAMLFormatter) FormatWorkers(w io.Writer, workers []cluster.WorkerStatus) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	out := make([]map[string]string, len(workers))
	for i, worker := range workers {
		out[i] = map[string]string{
			"id":     worker.ID,
			"addr":   worker.Addr,
			"status": worker.Status,
		}
	}
	return encoder.Encode(struct {
		Workers []map[string]string `yaml:"workers"`
	}{Workers: out})
}

// FormatBatch outputs an accumulated result batch as YAML
func (f *YAMLFormatter) FormatBatch(w io.Writer, batch cluster.ResultBatch) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	return encoder.Encode(struct {
		Items []string `yaml:"items"`
		Count int      `yaml:"count"`
	}{Items: batch.Items, Count: len(batch.Items)})
}
