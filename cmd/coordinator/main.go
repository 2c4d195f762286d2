// Package main implements the rangefan coordinator service, which accepts
// numeric range requests, fans them out to a pool of workers, and renders
// each request's accumulated results when it completes.
//
// Architecture:
//
//	┌─────────────────────────────────────────┐
//	│             Coordinator                  │
//	├─────────────────────────────────────────┤
//	│  HTTP API:                              │
//	│    /register  - Worker registration     │
//	│    /workers   - Worker roster + health  │
//	│    /ranges    - Submit a range request  │
//	│    /results   - Chunk results (workers) │
//	│    /faults    - Fault reports (workers) │
//	│    /drain     - Begin graceful shutdown │
//	│    /health    - Health check            │
//	├─────────────────────────────────────────┤
//	│  Components:                            │
//	│    Coordinator  - Event loop            │
//	│    DeathWatch   - Worker liveness       │
//	│    Console sink - Result rendering      │
//	└─────────────────────────────────────────┘
//
// Configuration comes from ~/.rangefan.yaml, RANGEFAN_* environment
// variables, and command-line flags, in increasing precedence.
//
// Example usage:
//
//	# Start coordinator with two in-process workers
//	coordinator --listen :9080 --local-workers 2
//
//	# Submit a range
//	curl -X POST localhost:9080/ranges -d '{"start":1,"end":10000}'
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dreamware/rangefan/internal/cluster"
	"github.com/dreamware/rangefan/internal/config"
	"github.com/dreamware/rangefan/internal/coordinator"
	"github.com/dreamware/rangefan/internal/history"
	"github.com/dreamware/rangefan/internal/output"
	"github.com/dreamware/rangefan/internal/sink"
	"github.com/dreamware/rangefan/internal/util"
)

func main() {
	ctx := util.SetupSignalHandler()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("coordinator failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile        string
		listen         string
		localWorkers   int
		healthInterval time.Duration
		format         string
		noColor        bool
		verbose        bool
	)

	cmd := &cobra.Command{
		Use:           "coordinator",
		Short:         "rangefan coordinator - fans numeric ranges out to workers",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(verbose)

			mgr := config.NewManager(cfgFile)
			cfg, err := mgr.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.Coordinator.ListenAddr = listen
			}
			if cmd.Flags().Changed("local-workers") {
				cfg.Coordinator.LocalWorkers = localWorkers
			}
			if cmd.Flags().Changed("health-interval") {
				cfg.Coordinator.HealthInterval = healthInterval
			}
			if cmd.Flags().Changed("output") {
				cfg.Defaults.OutputFormat = format
			}
			if cmd.Flags().Changed("no-color") {
				cfg.Defaults.NoColor = noColor
			}

			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.rangefan.yaml)")
	cmd.Flags().StringVar(&listen, "listen", ":9080", "address the HTTP server binds to")
	cmd.Flags().IntVar(&localWorkers, "local-workers", 1, "number of in-process workers started at boot")
	cmd.Flags().DurationVar(&healthInterval, "health-interval", 10*time.Second, "how often workers are probed for liveness")
	cmd.Flags().StringVarP(&format, "output", "o", "table", "result output format (table, json, yaml)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output with debug logging")

	return cmd
}

// setupLogging configures structured logging with slog
func setupLogging(verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}

// run wires the coordinator, death-watch, sink, and HTTP server together
// and blocks until the coordinator stops.
//
// Shutdown sequence:
//  1. Signal cancels ctx, which triggers Drain.
//  2. The coordinator keeps consuming results until nothing is
//     outstanding, then stops itself and its sink.
//  3. The HTTP server shuts down and run returns.
//
// A fault escalation makes the coordinator's Run return an error, which
// propagates to a non-zero exit.
func run(ctx context.Context, cfg *config.Config) error {
	logger := slog.Default()

	formatter := output.NewFormatter(
		output.Format(cfg.Defaults.OutputFormat),
		output.WithNoColor(cfg.Defaults.NoColor),
	)
	console := sink.NewConsole(os.Stdout, formatter, logger)
	defer console.Stop()

	hist := history.NewMemoryLog()
	snk := recordingSink{log: hist, next: console}

	coord := coordinator.New(coordinator.RemoteFactory, snk, logger)

	// The event loop gets its own context: a shutdown signal must not
	// cancel in-flight dispatches while the drain completes.
	loopCtx, cancelLoop := context.WithCancel(context.Background())
	defer cancelLoop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- coord.Run(loopCtx)
	}()

	for i := 0; i < cfg.Coordinator.LocalWorkers; i++ {
		id := fmt.Sprintf("local-%d", i+1)
		coord.AttachLocal(coordinator.NewLocalWorker(id, coord.DeliverResult, coord.ReportFault))
		logger.Info("Started local worker", "id", id)
	}

	watch := coordinator.NewDeathWatch(cfg.Coordinator.HealthInterval, logger)
	srv := newServer(coord, watch, hist, logger)
	watch.SetOnUnreachable(func(workerID string) {
		logger.Warn("Worker declared dead", "id", workerID)
		srv.forget(workerID)
		coord.WorkerDied(workerID)
	})
	go watch.Start(loopCtx, srv.roster)
	defer watch.Stop()

	httpSrv := &http.Server{
		Addr:              cfg.Coordinator.ListenAddr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Coordinator listening", "addr", cfg.Coordinator.ListenAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		coord.Drain()
		runErr = <-errCh
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}

	logger.Info("Coordinator stopped")
	return runErr
}

// recordingSink snapshots each completed batch into the history log
// before handing it to the console sink.
type recordingSink struct {
	log  history.Log
	next coordinator.Sink
}

func (s recordingSink) Deliver(batch cluster.ResultBatch) {
	s.log.Append(batch.Items)
	s.next.Deliver(batch)
}

func (s recordingSink) Stop() {
	s.next.Stop()
}
