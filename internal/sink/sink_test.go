package sink

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dreamware/rangefan/internal/cluster"
	"github.com/dreamware/rangefan/internal/output"
)

// syncBuffer guards a bytes.Buffer so the test can read while the
// sink's goroutine writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestConsoleRendersBatches(t *testing.T) {
	var buf syncBuffer
	c := NewConsole(&buf, output.NewFormatter(output.FormatTable, output.WithNoColor(true)), quietLogger())

	c.Deliver(cluster.ResultBatch{Items: []string{"2", "3", "5"}})
	c.Stop()

	out := buf.String()
	assert.Contains(t, out, "2")
	assert.Contains(t, out, "5")
	assert.Contains(t, out, "3 items accumulated")
}

func TestConsoleStopDrainsQueued(t *testing.T) {
	var buf syncBuffer
	c := NewConsole(&buf, output.NewFormatter(output.FormatJSON), quietLogger())

	c.Deliver(cluster.ResultBatch{Items: []string{"2"}})
	c.Deliver(cluster.ResultBatch{Items: []string{"2", "3"}})
	c.Stop()

	// Both batches must have been rendered before Stop returned.
	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, `"count"`))
}

func TestConsoleDeliverAfterStopIsDropped(t *testing.T) {
	var buf syncBuffer
	c := NewConsole(&buf, output.NewFormatter(output.FormatJSON), quietLogger())
	c.Stop()

	assert.NotPanics(t, func() {
		c.Deliver(cluster.ResultBatch{Items: []string{"7"}})
	})
	assert.Empty(t, buf.String())
}

func TestConsoleStopIsIdempotent(t *testing.T) {
	c := NewConsole(io.Discard, output.NewFormatter(output.FormatJSON), quietLogger())
	c.Stop()
	assert.NotPanics(t, c.Stop)
}

func TestConsoleConcurrentDeliverAndStop(t *testing.T) {
	c := NewConsole(io.Discard, output.NewFormatter(output.FormatJSON), quietLogger())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.Deliver(cluster.ResultBatch{Items: []string{"11"}})
			}
		}()
	}
	time.Sleep(5 * time.Millisecond)
	c.Stop()
	wg.Wait()
}
