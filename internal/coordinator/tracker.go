package coordinator

import "errors"

// ErrUnknownRequest is returned by CompleteOne for a request id that was
// never admitted, or that has already fully completed and been reaped.
// It signals a duplicate completion or a protocol violation and is a
// non-fatal, logged anomaly, never a reason to crash the coordinator.
var ErrUnknownRequest = errors.New("unknown or already completed request")

// Tracker assigns a unique id to each admitted request and tracks the
// number of outstanding chunk completions per id.
//
// Like the Pool, the tracker is owned exclusively by the coordinator's
// event loop and carries no locking of its own.
//
// Invariants:
//   - ids are monotonically increasing and unique for the coordinator's
//     lifetime
//   - a pending count strictly decreases with each completion and never
//     drops below zero
//   - reaching zero reaps the id; later completions for it are rejected
type Tracker struct {
	next    int
	pending map[int]int
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{pending: make(map[int]int)}
}

// Admit allocates the next sequential request id. The pending count is
// not set until SetPending runs, immediately after partitioning decides
// the chunk count; a request rejected between the two leaves no tracked
// state behind.
func (t *Tracker) Admit() int {
	id := t.next
	t.next++
	return id
}

// SetPending records the remaining chunk count for id. Called exactly
// once per id; count must equal the number of chunks actually dispatched.
// The returned count is the value being overwritten: zero for a fresh
// id, non-zero when the caller broke the once-per-id protocol.
func (t *Tracker) SetPending(id, count int) int {
	prev := t.pending[id]
	t.pending[id] = count
	return prev
}

// CompleteOne decrements id's pending count by one and returns the
// remainder. At zero the id is reaped. Completions for unknown or reaped
// ids return ErrUnknownRequest.
func (t *Tracker) CompleteOne(id int) (int, error) {
	remaining, ok := t.pending[id]
	if !ok {
		return 0, ErrUnknownRequest
	}
	remaining--
	if remaining == 0 {
		delete(t.pending, id)
	} else {
		t.pending[id] = remaining
	}
	return remaining, nil
}

// HasOutstanding reports whether any tracked request still has pending
// chunks. It is used only as a shutdown gate, never per request.
func (t *Tracker) HasOutstanding() bool {
	for _, remaining := range t.pending {
		if remaining > 0 {
			return true
		}
	}
	return false
}
