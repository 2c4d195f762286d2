// Package main implements the rangefan worker service. A worker
// registers with the coordinator, receives number chunks on /compute,
// filters them for primes, and posts the results (or a fault report)
// back to the coordinator.
//
// Architecture:
//
//	┌─────────────────────────────────────────┐
//	│                Worker                    │
//	├─────────────────────────────────────────┤
//	│  HTTP API:                              │
//	│    /compute  - Accept a number chunk    │
//	│    /health   - Health check             │
//	├─────────────────────────────────────────┤
//	│  Outbound:                              │
//	│    POST {coordinator}/results           │
//	│    POST {coordinator}/faults            │
//	│    POST {coordinator}/register (boot)   │
//	└─────────────────────────────────────────┘
//
// Chunks are accepted immediately and computed asynchronously; the
// coordinator never waits on a worker's HTTP response for results.
//
// Example usage:
//
//	worker --id worker-1 \
//	  --listen :9081 \
//	  --addr http://localhost:9081 \
//	  --coordinator http://localhost:9080
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dreamware/rangefan/internal/cluster"
	"github.com/dreamware/rangefan/internal/config"
	"github.com/dreamware/rangefan/internal/prime"
	"github.com/dreamware/rangefan/internal/util"
)

func main() {
	ctx := util.SetupSignalHandler()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("worker failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile     string
		workerID    string
		listen      string
		public      string
		coordinator string
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:           "worker",
		Short:         "rangefan worker - computes primes in dispatched chunks",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logLevel := slog.LevelInfo
			if verbose {
				logLevel = slog.LevelDebug
			}
			handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
			slog.SetDefault(slog.New(handler))

			mgr := config.NewManager(cfgFile)
			cfg, err := mgr.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.Worker.ListenAddr = listen
			}
			if cmd.Flags().Changed("coordinator") {
				cfg.Worker.CoordinatorURL = coordinator
			}
			if workerID == "" {
				return errors.New("--id is required")
			}
			if public == "" {
				public = "http://127.0.0.1" + cfg.Worker.ListenAddr
			}

			return run(cmd.Context(), workerID, public, cfg)
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.rangefan.yaml)")
	cmd.Flags().StringVar(&workerID, "id", "", "unique worker identifier (required)")
	cmd.Flags().StringVar(&listen, "listen", ":9081", "address the HTTP server binds to")
	cmd.Flags().StringVar(&public, "addr", "", "public address advertised to the coordinator")
	cmd.Flags().StringVar(&coordinator, "coordinator", "http://localhost:9080", "coordinator base URL")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output with debug logging")

	return cmd
}

func run(ctx context.Context, workerID, public string, cfg *config.Config) error {
	logger := slog.Default().With("worker", workerID)

	wk := newWorker(workerID, cfg.Worker.CoordinatorURL, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/compute", wk.handleCompute)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	httpSrv := &http.Server{
		Addr:              cfg.Worker.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Worker listening", "listen", cfg.Worker.ListenAddr, "public", public)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	if err := register(ctx, cfg.Worker.CoordinatorURL, workerID, public, logger); err != nil {
		return err
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
	logger.Info("Worker stopped")
	return nil
}

// register attempts to register the worker with the coordinator,
// retrying to ride out coordinator startup delays.
//
// Retry strategy:
//   - 10 attempts maximum
//   - 400ms delay between attempts
//   - Persistent failure is an error: a worker cannot operate without
//     being in the coordinator's pool
func register(ctx context.Context, coordinator, id, addr string, logger *slog.Logger) error {
	body := cluster.RegisterRequest{Worker: cluster.WorkerInfo{ID: id, Addr: addr}}
	var lastErr error

	for i := 0; i < 10; i++ {
		lastErr = cluster.PostJSON(ctx, coordinator+"/register", body, nil)
		if lastErr == nil {
			logger.Info("Registered with coordinator", "coordinator", coordinator)
			return nil
		}
		logger.Warn("Register retry", "attempt", i+1, "error", lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(400 * time.Millisecond):
		}
	}
	return fmt.Errorf("failed to register with coordinator: %w", lastErr)
}

// worker holds the runtime state needed to compute chunks and report
// back to the coordinator.
type worker struct {
	id          string
	coordinator string
	logger      *slog.Logger

	// compute is the chunk computation, pluggable for tests.
	compute func(numbers []int64) ([]string, error)
}

func newWorker(id, coordinator string, logger *slog.Logger) *worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &worker{
		id:          id,
		coordinator: coordinator,
		logger:      logger,
		compute:     prime.Primes,
	}
}

// handleCompute accepts a chunk and schedules it for asynchronous
// processing. The 202 response only acknowledges receipt; the outcome
// travels back on the coordinator's /results or /faults endpoint.
func (wk *worker) handleCompute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var chunk cluster.ComputeChunk
	if err := json.NewDecoder(r.Body).Decode(&chunk); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	go wk.process(chunk)
	w.WriteHeader(http.StatusAccepted)
}

// process computes the chunk and reports the outcome. Delivery failures
// are logged and dropped: the coordinator's death-watch handles a
// coordinator that has gone away, and a lost result surfaces there as a
// request that never completes.
func (wk *worker) process(chunk cluster.ComputeChunk) {
	wk.logger.Debug("Processing chunk", "request", chunk.RequestID, "numbers", len(chunk.Numbers))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	items, err := wk.compute(chunk.Numbers)
	if err != nil {
		report := cluster.FaultReport{
			WorkerID: wk.id,
			Category: cluster.FaultCompute,
			Message:  err.Error(),
		}
		if perr := cluster.PostJSON(ctx, wk.coordinator+"/faults", report, nil); perr != nil {
			wk.logger.Error("Failed to report fault", "error", perr)
		}
		return
	}

	res := cluster.ChunkResult{
		RequestID: chunk.RequestID,
		WorkerID:  wk.id,
		Items:     items,
	}
	if err := cluster.PostJSON(ctx, wk.coordinator+"/results", res, nil); err != nil {
		wk.logger.Error("Failed to deliver result", "request", chunk.RequestID, "error", err)
	}
}
