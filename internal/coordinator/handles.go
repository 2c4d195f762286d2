package coordinator

import (
	"context"
	"fmt"

	"github.com/dreamware/rangefan/internal/cluster"
	"github.com/dreamware/rangefan/internal/prime"
)

// WorkerFactory builds a worker handle for a network address. It is the
// connection-factory capability behind "attach remote worker": the
// coordinator never dials anything itself, it just asks the factory for
// a handle that can Send.
type WorkerFactory func(info cluster.WorkerInfo) (Worker, error)

// RemoteWorker is a worker reachable over HTTP. Chunks go to its
// /compute endpoint; the worker posts results and faults back to the
// coordinator on its own.
type RemoteWorker struct {
	id   string
	addr string
}

// NewRemoteWorker builds a handle for the worker at info.Addr.
func NewRemoteWorker(info cluster.WorkerInfo) (*RemoteWorker, error) {
	if info.ID == "" || info.Addr == "" {
		return nil, fmt.Errorf("remote worker needs id and addr, got %+v", info)
	}
	return &RemoteWorker{id: info.ID, addr: info.Addr}, nil
}

func (w *RemoteWorker) ID() string   { return w.id }
func (w *RemoteWorker) Addr() string { return w.addr }

// Send posts the chunk to the worker's /compute endpoint. The call
// returns once the worker has accepted the chunk; the computation result
// arrives later through the coordinator's /results endpoint.
func (w *RemoteWorker) Send(ctx context.Context, chunk cluster.ComputeChunk) error {
	return cluster.PostJSON(ctx, w.addr+"/compute", chunk, nil)
}

// RemoteFactory is the default WorkerFactory for HTTP workers.
func RemoteFactory(info cluster.WorkerInfo) (Worker, error) {
	return NewRemoteWorker(info)
}

// LocalWorker computes chunks in-process. The coordinator starts with
// one local worker by default so a bare coordinator can already serve
// requests before any remote worker attaches.
//
// Results and faults are delivered straight back into the coordinator's
// event queue through the deliver and fault callbacks, making the local
// worker indistinguishable from a remote one as far as the dispatch and
// accounting logic is concerned.
type LocalWorker struct {
	id      string
	deliver func(cluster.ChunkResult)
	fault   func(cluster.FaultReport)
}

// NewLocalWorker builds an in-process worker. deliver receives the
// finished chunk result; fault receives a report when the computation
// fails.
func NewLocalWorker(id string, deliver func(cluster.ChunkResult), fault func(cluster.FaultReport)) *LocalWorker {
	return &LocalWorker{id: id, deliver: deliver, fault: fault}
}

func (w *LocalWorker) ID() string   { return w.id }
func (w *LocalWorker) Addr() string { return "" }

// Send runs the prime computation on its own goroutine and feeds the
// result back asynchronously, preserving the fire-and-forget contract.
func (w *LocalWorker) Send(_ context.Context, chunk cluster.ComputeChunk) error {
	go func() {
		items, err := prime.Primes(chunk.Numbers)
		if err != nil {
			w.fault(cluster.FaultReport{
				WorkerID: w.id,
				Category: cluster.FaultCompute,
				Message:  err.Error(),
			})
			return
		}
		w.deliver(cluster.ChunkResult{
			RequestID: chunk.RequestID,
			WorkerID:  w.id,
			Items:     items,
		})
	}()
	return nil
}
