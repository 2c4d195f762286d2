package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/exp/slices"

	"github.com/dreamware/rangefan/internal/cluster"
	"github.com/dreamware/rangefan/internal/coordinator"
	"github.com/dreamware/rangefan/internal/history"
)

// server holds the coordinator's HTTP surface. The worker roster lives
// here, guarded by mu, separate from the event loop's pool: the roster
// answers /workers and feeds the death-watch without crossing into the
// loop's single-goroutine state.
type server struct {
	logger *slog.Logger
	coord  *coordinator.Coordinator
	watch  *coordinator.DeathWatch
	hist   history.Log

	mu      sync.RWMutex
	workers []cluster.WorkerInfo
}

func newServer(coord *coordinator.Coordinator, watch *coordinator.DeathWatch, hist history.Log, logger *slog.Logger) *server {
	if logger == nil {
		logger = slog.Default()
	}
	return &server{
		logger: logger,
		coord:  coord,
		watch:  watch,
		hist:   hist,
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/register", s.handleRegister)
	mux.HandleFunc("/workers", s.handleListWorkers)
	mux.HandleFunc("/ranges", s.handleSubmitRange)
	mux.HandleFunc("/results", s.handleResults)
	mux.HandleFunc("/faults", s.handleFaults)
	mux.HandleFunc("/drain", s.handleDrain)
	mux.HandleFunc("/batches", s.handleListBatches)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// roster snapshots the registered remote workers for the death-watch.
func (s *server) roster() []cluster.WorkerInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]cluster.WorkerInfo(nil), s.workers...)
}

// forget drops a worker from the roster after the death-watch declares
// it dead.
func (s *server) forget(workerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := slices.IndexFunc(s.workers, func(w cluster.WorkerInfo) bool { return w.ID == workerID })
	if idx >= 0 {
		s.workers = append(s.workers[:idx], s.workers[idx+1:]...)
	}
}

func (s *server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req cluster.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Worker.ID == "" || req.Worker.Addr == "" {
		http.Error(w, "missing id/addr", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	idx := slices.IndexFunc(s.workers, func(wk cluster.WorkerInfo) bool { return wk.ID == req.Worker.ID })
	known := idx >= 0
	moved := known && s.workers[idx].Addr != req.Worker.Addr
	if known {
		s.workers[idx] = req.Worker
	} else {
		s.workers = append(s.workers, req.Worker)
	}
	s.mu.Unlock()

	switch {
	case !known:
		s.coord.AttachRemote(req.Worker)
		s.logger.Info("Worker registered", "id", req.Worker.ID, "addr", req.Worker.Addr)
	case moved:
		// The pool's handle still points at the old address. Retire it
		// so no further chunks are routed there, then attach a fresh
		// handle for the new address.
		s.coord.WorkerDied(req.Worker.ID)
		s.coord.AttachRemote(req.Worker)
		s.logger.Info("Worker re-registered at new address", "id", req.Worker.ID, "addr", req.Worker.Addr)
	}
	// A re-registration at the same address refreshes the roster entry
	// only; the pool handle is still valid.
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleListWorkers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	statuses := make([]cluster.WorkerStatus, 0, len(s.workers))
	for _, wk := range s.workers {
		status := "unknown"
		if s.watch != nil {
			if h := s.watch.Health(wk.ID); h != nil {
				status = h.Status
			}
		}
		statuses = append(statuses, cluster.WorkerStatus{WorkerInfo: wk, Status: status})
	}
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Workers []cluster.WorkerStatus `json:"workers"`
		Count   int                    `json:"count"`
	}{Workers: statuses, Count: len(statuses)})
}

func (s *server) handleSubmitRange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req cluster.RangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Start > req.End {
		http.Error(w, "start must be <= end", http.StatusBadRequest)
		return
	}
	if s.coord.State() != coordinator.StateAccepting {
		http.Error(w, "coordinator is draining", http.StatusConflict)
		return
	}

	// Accepted, not completed: the event loop processes the request
	// asynchronously and may still reject it if the pool is empty.
	s.coord.SubmitRange(req)
	w.WriteHeader(http.StatusAccepted)
}

func (s *server) handleResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var res cluster.ChunkResult
	if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	s.coord.DeliverResult(res)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleFaults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var report cluster.FaultReport
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if report.WorkerID == "" {
		http.Error(w, "missing worker_id", http.StatusBadRequest)
		return
	}
	s.coord.ReportFault(report)
	w.WriteHeader(http.StatusNoContent)
}

// handleListBatches returns the retained result batches in completion
// order.
func (s *server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var batches []history.Entry
	if s.hist != nil {
		batches = s.hist.List()
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Batches []history.Entry `json:"batches"`
		Count   int             `json:"count"`
	}{Batches: batches, Count: len(batches)})
}

func (s *server) handleDrain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.coord.Drain()
	w.WriteHeader(http.StatusAccepted)
}
