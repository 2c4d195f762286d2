package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dreamware/rangefan/internal/cluster"
)

// ErrNoWorkers is logged when a range request arrives while the pool is
// empty. The request is rejected at admission and leaves no tracked
// state behind.
var ErrNoWorkers = errors.New("no workers available for dispatch")

// ErrEscalated is returned by Run when a fault outside the
// classification table forces the whole coordinator subsystem down.
var ErrEscalated = errors.New("unrecognized fault escalated")

// FaultAction is what the classification table decides for a fault
// category.
type FaultAction int

const (
	// ActionTerminateWorker stops the faulting worker (no restart). Its
	// in-flight chunk is permanently lost.
	ActionTerminateWorker FaultAction = iota

	// ActionEscalate terminates the coordinator subsystem: the system is
	// in an unknown state not worth attempting local recovery for.
	ActionEscalate
)

// Sink is the result-sink collaborator. It receives one ResultBatch per
// fully completed request and a terminal Stop signal when the
// coordinator shuts down.
type Sink interface {
	Deliver(batch cluster.ResultBatch)
	Stop()
}

// Coordinator owns the worker pool, the request tracker, and the
// lifecycle state machine, and drives them from a single event loop.
//
// All inbound events (worker attachment, range requests, chunk
// results, drain signals, death notifications, fault reports) are
// serialized through one ordered queue and handled strictly one at a
// time. No handler blocks: dispatch to a worker is fire-and-forget and
// the corresponding result re-enters the queue as a future event. This
// single-thread ownership is what lets Pool, Tracker, and Lifecycle go
// without locks.
//
// The accumulated result log is shared across all requests: every chunk
// result appends to one ever-growing sequence, and each completed
// request hands the sink a snapshot of the entire history, not just its
// own contribution.
type Coordinator struct {
	pool      *Pool
	tracker   *Tracker
	lifecycle *Lifecycle
	factory   WorkerFactory
	sink      Sink
	logger    *slog.Logger

	// results is the shared, append-only result log across all requests.
	results []string

	// faultTable maps fault category to the action taken. Categories not
	// in the table escalate.
	faultTable map[string]FaultAction

	events chan event
	done   chan struct{}
}

// Events are processed one at a time by Run. Each variant corresponds
// to one inbound message of the wire protocol.
type event interface{}

type (
	attachEvent struct{ info cluster.WorkerInfo }
	localEvent  struct{ worker Worker }
	rangeEvent  struct{ req cluster.RangeRequest }
	drainEvent  struct{}
	resultEvent struct{ res cluster.ChunkResult }
	diedEvent   struct{ workerID string }
	faultEvent  struct{ report cluster.FaultReport }
)

// New creates a coordinator. factory builds handles for remote workers;
// sink receives completed batches and the terminal stop signal.
func New(factory WorkerFactory, sink Sink, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		pool:      NewPool(),
		tracker:   NewTracker(),
		lifecycle: NewLifecycle(),
		factory:   factory,
		sink:      sink,
		logger:    logger,
		faultTable: map[string]FaultAction{
			cluster.FaultCompute: ActionTerminateWorker,
		},
		events: make(chan event, 128),
		done:   make(chan struct{}),
	}
}

// AttachRemote asks the event loop to build a handle for the worker at
// info.Addr and add it to the pool.
func (c *Coordinator) AttachRemote(info cluster.WorkerInfo) {
	c.post(attachEvent{info: info})
}

// AttachLocal adds an already built handle (an in-process worker) to the
// pool.
func (c *Coordinator) AttachLocal(w Worker) {
	c.post(localEvent{worker: w})
}

// SubmitRange enqueues a range request.
func (c *Coordinator) SubmitRange(req cluster.RangeRequest) {
	c.post(rangeEvent{req: req})
}

// Drain announces that no further range requests will arrive.
func (c *Coordinator) Drain() {
	c.post(drainEvent{})
}

// DeliverResult enqueues a chunk result from a worker.
func (c *Coordinator) DeliverResult(res cluster.ChunkResult) {
	c.post(resultEvent{res: res})
}

// WorkerDied enqueues a death notification for the given worker. It is
// safe to report the same worker more than once; removal is idempotent.
func (c *Coordinator) WorkerDied(workerID string) {
	c.post(diedEvent{workerID: workerID})
}

// ReportFault enqueues a worker fault report for classification.
func (c *Coordinator) ReportFault(report cluster.FaultReport) {
	c.post(faultEvent{report: report})
}

// Done is closed when the coordinator reaches StateStopped.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// State returns the lifecycle state as of the last processed event.
// Intended for tests and status reporting, not for gating decisions;
// only the event loop may act on state.
func (c *Coordinator) State() State {
	return c.lifecycle.State()
}

// post enqueues an event unless the coordinator has already stopped.
// Events posted after shutdown are dropped; Stopped is terminal and
// nothing may be processed past it.
func (c *Coordinator) post(e event) {
	select {
	case <-c.done:
	case c.events <- e:
	}
}

// Run processes events until the coordinator stops, the context is
// cancelled, or a fault escalates. It must be called exactly once.
func (c *Coordinator) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e := <-c.events:
			stopped, err := c.handle(ctx, e)
			if err != nil {
				return err
			}
			if stopped {
				return nil
			}
		}
	}
}

// handle processes a single event to completion. It reports whether the
// coordinator stopped, and a non-nil error on escalation.
func (c *Coordinator) handle(ctx context.Context, e event) (bool, error) {
	switch ev := e.(type) {
	case attachEvent:
		c.handleAttach(ev.info)
	case localEvent:
		c.pool.Add(ev.worker)
		c.logger.Info("local worker attached", "worker", ev.worker.ID(), "pool_size", c.pool.Size())
	case rangeEvent:
		c.handleRange(ctx, ev.req)
	case drainEvent:
		return c.handleDrain(), nil
	case resultEvent:
		return c.handleResult(ev.res), nil
	case diedEvent:
		c.pool.Remove(ev.workerID)
		c.logger.Info("worker removed from pool", "worker", ev.workerID, "pool_size", c.pool.Size())
	case faultEvent:
		return c.handleFault(ev.report)
	default:
		c.logger.Warn("unknown event", "event", fmt.Sprintf("%T", e))
	}
	return false, nil
}

// handleAttach builds a handle through the connection factory and adds
// it to the pool. A factory failure is a caller error: logged, dropped.
func (c *Coordinator) handleAttach(info cluster.WorkerInfo) {
	w, err := c.factory(info)
	if err != nil {
		c.logger.Error("failed to attach worker", "worker", info.ID, "addr", info.Addr, "error", err)
		return
	}
	c.pool.Add(w)
	c.logger.Info("worker attached", "worker", info.ID, "addr", info.Addr, "pool_size", c.pool.Size())
}

// handleRange admits, partitions, and dispatches one range request.
//
// The chunk count is the pool size captured here, at dispatch time. A
// worker that attaches afterwards receives nothing from this request.
// Dispatch order follows chunk order through round-robin selection, so
// with a stable pool the i-th chunk goes to the i-th worker.
func (c *Coordinator) handleRange(ctx context.Context, req cluster.RangeRequest) {
	if !c.lifecycle.Accepting() {
		c.logger.Warn("discarding range request, no longer accepting",
			"start", req.Start, "end", req.End, "state", c.lifecycle.State().String())
		return
	}
	if req.Start > req.End {
		c.logger.Error("rejecting inverted range", "start", req.Start, "end", req.End)
		return
	}

	n := c.pool.Size()
	if n == 0 {
		c.logger.Error("rejecting range request", "error", ErrNoWorkers, "start", req.Start, "end", req.End)
		return
	}

	id := c.tracker.Admit()
	chunks := Split(Range{Start: req.Start, End: req.End}, n)
	if prev := c.tracker.SetPending(id, n); prev != 0 {
		c.logger.Warn("pending count overwritten for request", "request", id, "previous", prev)
	}

	c.logger.Info("dispatching range", "request", id, "start", req.Start, "end", req.End, "chunks", n)

	for _, chunk := range chunks {
		w, err := c.pool.SelectNext()
		if err != nil {
			// Cannot happen: size was captured above and nothing removes
			// workers inside this handler. Log and drop the chunk anyway.
			c.logger.Error("dispatch failed", "request", id, "error", err)
			continue
		}
		payload := cluster.ComputeChunk{RequestID: id, Numbers: chunk.Numbers()}
		if err := w.Send(ctx, payload); err != nil {
			// Hand-off failure loses the chunk permanently. There is no
			// timeout or retry layer; the pending count stays up and the
			// request never completes. Known gap, surfaced in the logs.
			c.logger.Error("failed to send chunk", "request", id, "worker", w.ID(), "error", err)
		}
	}
}

// handleDrain moves the lifecycle to Draining and stops immediately if
// no work is outstanding.
func (c *Coordinator) handleDrain() (stopped bool) {
	c.lifecycle.Drain()
	c.logger.Info("draining, no further requests will be accepted")
	return c.maybeStop()
}

// handleResult appends the chunk's items to the shared result log,
// decrements the owning request's pending count, and on completion
// emits a snapshot of the full accumulated history to the sink. While
// draining, every completion re-checks the shutdown gate.
func (c *Coordinator) handleResult(res cluster.ChunkResult) (stopped bool) {
	c.results = append(c.results, res.Items...)

	remaining, err := c.tracker.CompleteOne(res.RequestID)
	if err != nil {
		// Duplicate or unknown completion: a protocol anomaly, absorbed
		// locally. Other in-flight requests are unaffected.
		c.logger.Warn("ignoring chunk result", "request", res.RequestID, "worker", res.WorkerID, "error", err)
		return false
	}

	c.logger.Debug("chunk completed", "request", res.RequestID, "worker", res.WorkerID,
		"items", len(res.Items), "remaining", remaining)

	if remaining == 0 {
		snapshot := make([]string, len(c.results))
		copy(snapshot, c.results)
		c.sink.Deliver(cluster.ResultBatch{Items: snapshot})
		c.logger.Info("request completed", "request", res.RequestID, "accumulated", len(snapshot))
	}
	return c.maybeStop()
}

// handleFault classifies a worker fault. Recognized categories terminate
// the worker; anything else escalates and takes the coordinator down.
func (c *Coordinator) handleFault(report cluster.FaultReport) (stopped bool, err error) {
	action, known := c.faultTable[report.Category]
	if !known {
		action = ActionEscalate
	}

	switch action {
	case ActionTerminateWorker:
		c.logger.Error("worker fault, terminating worker",
			"worker", report.WorkerID, "category", report.Category, "message", report.Message)
		c.pool.Remove(report.WorkerID)
		return false, nil
	default:
		c.logger.Error("unrecognized fault, escalating",
			"worker", report.WorkerID, "category", report.Category, "message", report.Message)
		return false, fmt.Errorf("%w: category %q from worker %s", ErrEscalated, report.Category, report.WorkerID)
	}
}

// maybeStop performs the Draining → Stopped transition when the shutdown
// gate opens: no outstanding work while draining. On stop the sink is
// signalled and Done is closed.
func (c *Coordinator) maybeStop() bool {
	if c.lifecycle.State() != StateDraining || c.tracker.HasOutstanding() {
		return false
	}
	c.lifecycle.Stop()
	c.sink.Stop()
	close(c.done)
	c.logger.Info("all work complete, stopping")
	return true
}
