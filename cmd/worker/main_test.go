package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dreamware/rangefan/internal/cluster"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeCoordinator records results and faults posted by the worker.
type fakeCoordinator struct {
	mu      sync.Mutex
	results []cluster.ChunkResult
	faults  []cluster.FaultReport
	srv     *httptest.Server
}

func newFakeCoordinator(t *testing.T) *fakeCoordinator {
	t.Helper()
	fc := &fakeCoordinator{}
	mux := http.NewServeMux()
	mux.HandleFunc("/results", func(w http.ResponseWriter, r *http.Request) {
		var res cluster.ChunkResult
		if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		fc.mu.Lock()
		fc.results = append(fc.results, res)
		fc.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/faults", func(w http.ResponseWriter, r *http.Request) {
		var report cluster.FaultReport
		if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		fc.mu.Lock()
		fc.faults = append(fc.faults, report)
		fc.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	fc.srv = httptest.NewServer(mux)
	t.Cleanup(fc.srv.Close)
	return fc
}

func (fc *fakeCoordinator) resultCount() int {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return len(fc.results)
}

func (fc *fakeCoordinator) faultCount() int {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return len(fc.faults)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestHandleComputeDeliversResult(t *testing.T) {
	fc := newFakeCoordinator(t)
	wk := newWorker("w1", fc.srv.URL, quietLogger())

	chunk := cluster.ComputeChunk{RequestID: 3, Numbers: []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}}
	raw, _ := json.Marshal(chunk)
	req := httptest.NewRequest(http.MethodPost, "/compute", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	wk.handleCompute(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("got %d, want 202", rec.Code)
	}

	waitFor(t, "result delivery", func() bool { return fc.resultCount() == 1 })

	fc.mu.Lock()
	res := fc.results[0]
	fc.mu.Unlock()
	if res.RequestID != 3 || res.WorkerID != "w1" {
		t.Errorf("unexpected result envelope: %+v", res)
	}
	want := []string{"2", "3", "5", "7"}
	if len(res.Items) != len(want) {
		t.Fatalf("items: got %v, want %v", res.Items, want)
	}
	for i, item := range want {
		if res.Items[i] != item {
			t.Errorf("item %d: got %s, want %s", i, res.Items[i], item)
		}
	}
}

func TestHandleComputeReportsFault(t *testing.T) {
	fc := newFakeCoordinator(t)
	wk := newWorker("w1", fc.srv.URL, quietLogger())

	// A negative number makes the computation fail.
	chunk := cluster.ComputeChunk{RequestID: 5, Numbers: []int64{2, -3, 5}}
	raw, _ := json.Marshal(chunk)
	req := httptest.NewRequest(http.MethodPost, "/compute", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	wk.handleCompute(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("got %d, want 202", rec.Code)
	}

	waitFor(t, "fault report", func() bool { return fc.faultCount() == 1 })

	fc.mu.Lock()
	report := fc.faults[0]
	fc.mu.Unlock()
	if report.WorkerID != "w1" || report.Category != cluster.FaultCompute {
		t.Errorf("unexpected fault report: %+v", report)
	}
	if fc.resultCount() != 0 {
		t.Error("fault must not also deliver a result")
	}
}

func TestHandleComputeRejectsBadRequests(t *testing.T) {
	wk := newWorker("w1", "http://unused", quietLogger())

	req := httptest.NewRequest(http.MethodPost, "/compute", bytes.NewBufferString("{broken"))
	rec := httptest.NewRecorder()
	wk.handleCompute(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad json: got %d, want 400", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/compute", nil)
	rec = httptest.NewRecorder()
	wk.handleCompute(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET: got %d, want 405", rec.Code)
	}
}

func TestProcessUsesPluggableCompute(t *testing.T) {
	fc := newFakeCoordinator(t)
	wk := newWorker("w1", fc.srv.URL, quietLogger())
	wk.compute = func(numbers []int64) ([]string, error) {
		return nil, errors.New("synthetic failure")
	}

	wk.process(cluster.ComputeChunk{RequestID: 1, Numbers: []int64{2}})

	waitFor(t, "fault report", func() bool { return fc.faultCount() == 1 })
	fc.mu.Lock()
	msg := fc.faults[0].Message
	fc.mu.Unlock()
	if msg != "synthetic failure" {
		t.Errorf("message: got %q", msg)
	}
}

func TestRegisterSucceedsAfterRetries(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		// Fail the first two attempts to exercise the retry loop.
		if n < 3 {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := register(context.Background(), srv.URL, "w1", "http://localhost:9081", quietLogger())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if attempts != 3 {
		t.Errorf("attempts: got %d, want 3", attempts)
	}
}

func TestRegisterHonorsCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "never ready", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := register(ctx, srv.URL, "w1", "http://localhost:9081", quietLogger())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
