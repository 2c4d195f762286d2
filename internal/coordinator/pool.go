package coordinator

import (
	"context"
	"errors"

	"golang.org/x/exp/slices"

	"github.com/dreamware/rangefan/internal/cluster"
)

// ErrEmptyPool is returned by SelectNext when every worker has left the
// pool. Arriving here with work to dispatch is an exceptional state: the
// caller must decide whether to drop or fail the enclosing request.
var ErrEmptyPool = errors.New("worker pool is empty")

// Worker is the capability a pool member provides: an identity and a
// fire-and-forget chunk send. Local and remote workers are two
// implementations of the same capability, not a hierarchy.
//
// Send must not block on the result of the computation; the result
// arrives later as an independent ChunkResult event on the coordinator.
type Worker interface {
	// ID uniquely identifies the worker within the pool.
	ID() string

	// Addr is the worker's endpoint address, or "" for in-process workers.
	Addr() string

	// Send delivers one chunk to the worker. An error means the chunk
	// could not be handed off; it says nothing about the computation.
	Send(ctx context.Context, chunk cluster.ComputeChunk) error
}

// Pool is an ordered collection of workers with round-robin selection.
//
// Insertion order is round-robin order. The pool is intentionally
// lock-free: it is owned exclusively by the coordinator's event loop and
// must never be touched from another goroutine.
//
// Invariants:
//   - cursor is always valid modulo the current size
//   - size is never negative
//   - removing an absent worker is a no-op (death notifications may race
//     with an explicit removal)
type Pool struct {
	workers []Worker
	cursor  int
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

// Add appends w to the pool. It becomes eligible for selection on the
// next dispatch; requests already partitioned do not retroactively send
// it work.
func (p *Pool) Add(w Worker) {
	p.workers = append(p.workers, w)
}

// Remove deletes the worker with the given id, if present. The cursor is
// adjusted so it never points past the new end and subsequent selection
// still wraps correctly.
func (p *Pool) Remove(id string) {
	idx := slices.IndexFunc(p.workers, func(w Worker) bool { return w.ID() == id })
	if idx < 0 {
		return
	}
	p.workers = append(p.workers[:idx], p.workers[idx+1:]...)
	if idx < p.cursor {
		p.cursor--
	}
	if len(p.workers) == 0 {
		p.cursor = 0
	} else {
		p.cursor %= len(p.workers)
	}
}

// SelectNext returns the next worker in round-robin order and advances
// the cursor, wrapping at the end. It returns ErrEmptyPool when no
// workers remain.
func (p *Pool) SelectNext() (Worker, error) {
	if len(p.workers) == 0 {
		return nil, ErrEmptyPool
	}
	w := p.workers[p.cursor]
	p.cursor = (p.cursor + 1) % len(p.workers)
	return w, nil
}

// Size returns the current worker count. The coordinator captures this
// at dispatch time to decide how many chunks a request is split into.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Members returns a snapshot of pool membership in insertion order.
func (p *Pool) Members() []cluster.WorkerInfo {
	out := make([]cluster.WorkerInfo, 0, len(p.workers))
	for _, w := range p.workers {
		out = append(out, cluster.WorkerInfo{ID: w.ID(), Addr: w.Addr()})
	}
	return out
}
