package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dreamware/rangefan/internal/cluster"
)

// WorkerHealth tracks the reachability of a single remote worker.
// Protected by DeathWatch's mutex when accessed.
type WorkerHealth struct {
	LastCheck        time.Time // Timestamp of the last check attempt
	LastReachable    time.Time // Timestamp of the last successful check
	WorkerID         string    // Unique identifier of the worker
	Status           string    // "reachable", "unreachable", "unknown"
	ConsecutiveFails int       // Consecutive failed checks
}

// Reachability states reported by the death-watch.
const (
	statusUnknown     = "unknown"
	statusReachable   = "reachable"
	statusUnreachable = "unreachable"
)

// DeathWatch periodically polls the /health endpoint of every registered
// remote worker and reports workers that have become unreachable. It is
// the mechanism by which the coordinator learns that a worker died
// without saying goodbye: the onUnreachable callback feeds a WorkerDied
// event into the coordinator's queue, which shrinks the pool.
//
// A worker is declared unreachable after maxFailures consecutive failed
// checks. Local in-process workers never appear here; only workers with
// a network address are watched.
//
// Thread-safe: all methods may be called concurrently.
type DeathWatch struct {
	workers       map[string]*WorkerHealth // Current health per worker
	checkFunc     func(addr string) error  // Pluggable check, for tests
	onUnreachable func(workerID string)    // Callback on state change
	ctx           context.Context
	cancel        context.CancelFunc
	interval      time.Duration // How often to poll
	timeout       time.Duration // Per-check HTTP timeout
	httpClient    *http.Client
	mu            sync.RWMutex
	wg            sync.WaitGroup
	maxFailures   int
	logger        *slog.Logger
}

// NewDeathWatch creates a death-watch polling at the given interval.
// Workers are declared unreachable after 3 consecutive failures.
func NewDeathWatch(interval time.Duration, logger *slog.Logger) *DeathWatch {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &DeathWatch{
		interval:    interval,
		timeout:     2 * time.Second,
		maxFailures: 3,
		workers:     make(map[string]*WorkerHealth),
		httpClient:  &http.Client{Timeout: 2 * time.Second},
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// SetOnUnreachable sets the callback invoked when a worker transitions
// to unreachable. Typically wired to Coordinator.WorkerDied.
func (d *DeathWatch) SetOnUnreachable(callback func(workerID string)) {
	d.onUnreachable = callback
}

// SetCheckFunction overrides the default HTTP health check. Used by
// tests to simulate worker death without real sockets.
func (d *DeathWatch) SetCheckFunction(checkFunc func(addr string) error) {
	d.checkFunc = checkFunc
}

// Start runs the polling loop in the calling goroutine until the context
// is cancelled. provider supplies the current set of watched workers on
// every tick, so membership changes are picked up automatically.
func (d *DeathWatch) Start(ctx context.Context, provider func() []cluster.WorkerInfo) {
	d.wg.Add(1)
	defer d.wg.Done()

	if ctx == nil {
		ctx = d.ctx
	}
	if d.checkFunc == nil {
		d.checkFunc = d.defaultCheck
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.Info("death-watch started", "interval", d.interval)

	// First sweep immediately rather than waiting a full interval.
	d.checkAll(provider())

	for {
		select {
		case <-ticker.C:
			d.checkAll(provider())
		case <-ctx.Done():
			d.logger.Info("death-watch stopping")
			return
		case <-d.ctx.Done():
			d.logger.Info("death-watch stopping")
			return
		}
	}
}

// Stop cancels the polling loop and waits for it to exit.
func (d *DeathWatch) Stop() {
	d.cancel()
	d.wg.Wait()
}

// checkAll polls every provided worker and drops tracking state for
// workers that have left the cluster.
func (d *DeathWatch) checkAll(workers []cluster.WorkerInfo) {
	current := make(map[string]bool)
	for _, w := range workers {
		current[w.ID] = true
		d.check(w)
	}

	d.mu.Lock()
	for id := range d.workers {
		if !current[id] {
			delete(d.workers, id)
			d.logger.Debug("worker left death-watch", "worker", id)
		}
	}
	d.mu.Unlock()
}

// check polls one worker and updates its health record, firing the
// unreachable callback on the reachable→unreachable transition.
func (d *DeathWatch) check(w cluster.WorkerInfo) {
	d.mu.Lock()
	health, exists := d.workers[w.ID]
	if !exists {
		health = &WorkerHealth{
			WorkerID:      w.ID,
			Status:        statusUnknown,
			LastCheck:     time.Now(),
			LastReachable: time.Now(),
		}
		d.workers[w.ID] = health
	}
	d.mu.Unlock()

	err := d.checkFunc(w.Addr)

	d.mu.Lock()
	defer d.mu.Unlock()

	health.LastCheck = time.Now()

	if err != nil {
		health.ConsecutiveFails++
		d.logger.Debug("health check failed",
			"worker", w.ID, "attempt", health.ConsecutiveFails, "max", d.maxFailures, "error", err)

		if health.ConsecutiveFails >= d.maxFailures {
			previous := health.Status
			health.Status = statusUnreachable

			if previous != statusUnreachable && d.onUnreachable != nil {
				d.logger.Warn("worker unreachable",
					"worker", w.ID, "failures", health.ConsecutiveFails)
				// Fire without holding the lock.
				go d.onUnreachable(w.ID)
			}
		}
		return
	}

	if health.Status == statusUnreachable {
		d.logger.Info("worker reachable again", "worker", w.ID)
	}
	health.Status = statusReachable
	health.ConsecutiveFails = 0
	health.LastReachable = time.Now()
}

// defaultCheck performs an HTTP GET against the worker's /health
// endpoint, accepting both full URLs and host:port addresses.
func (d *DeathWatch) defaultCheck(addr string) error {
	url := addr
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		url = fmt.Sprintf("http://%s", addr)
	}
	if !strings.HasSuffix(url, "/health") {
		url = strings.TrimRight(url, "/") + "/health"
	}

	resp, err := d.httpClient.Get(url)
	if err != nil {
		return fmt.Errorf("health check request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

// Health returns a copy of the current health record for a worker, or
// nil if the worker is not being watched.
func (d *DeathWatch) Health(workerID string) *WorkerHealth {
	d.mu.RLock()
	defer d.mu.RUnlock()

	health, exists := d.workers[workerID]
	if !exists {
		return nil
	}
	copied := *health
	return &copied
}

// IsReachable reports whether a worker is currently reachable. Unknown
// workers are not reachable.
func (d *DeathWatch) IsReachable(workerID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	health, exists := d.workers[workerID]
	return exists && health.Status == statusReachable
}
