// Package sink receives completed result batches from the coordinator
// and renders them for the user.
//
// The coordinator's event loop must never block on output, so the
// console sink runs its own goroutine fed by a buffered channel.
// Deliver drops the batch with a warning if the channel is full; the
// coordinator keeps the full accumulated log, so a dropped batch is a
// missed display, not lost data.
package sink

import (
	"io"
	"log/slog"
	"sync"

	"github.com/dreamware/rangefan/internal/cluster"
	"github.com/dreamware/rangefan/internal/output"
)

// Console renders result batches to a writer as they arrive.
type Console struct {
	logger    *slog.Logger
	out       io.Writer
	formatter output.Formatter

	mu      sync.Mutex
	stopped bool
	batches chan cluster.ResultBatch
	wg      sync.WaitGroup
}

// NewConsole creates a console sink writing to out with the given
// formatter and starts its rendering goroutine.
//
// Parameters:
//   - out: destination writer, typically os.Stdout
//   - formatter: how batches are rendered (table, json, yaml)
//   - logger: structured logger for delivery diagnostics
func NewConsole(out io.Writer, formatter output.Formatter, logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Console{
		logger:    logger,
		out:       out,
		formatter: formatter,
		batches:   make(chan cluster.ResultBatch, 16),
	}
	c.wg.Add(1)
	go c.run()
	return c
}

// Deliver hands a completed batch to the sink. It never blocks: if the
// sink has stopped or cannot keep up, the batch is dropped with a
// warning.
func (c *Console) Deliver(batch cluster.ResultBatch) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		c.logger.Warn("Sink stopped, dropping batch",
			"items", len(batch.Items))
		return
	}
	select {
	case c.batches <- batch:
	default:
		c.logger.Warn("Sink backlogged, dropping batch",
			"items", len(batch.Items))
	}
}

// Stop terminates the sink. Batches already queued are rendered before
// the rendering goroutine exits. Stop is idempotent and safe to call
// concurrently with Deliver.
func (c *Console) Stop() {
	c.mu.Lock()
	if !c.stopped {
		c.stopped = true
		close(c.batches)
	}
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Console) run() {
	defer c.wg.Done()
	for batch := range c.batches {
		c.logger.Info("Result batch completed",
			"items", len(batch.Items))
		if err := c.formatter.FormatBatch(c.out, batch); err != nil {
			c.logger.Error("Failed to render batch",
				"error", err)
		}
	}
}
