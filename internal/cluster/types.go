package cluster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WorkerInfo identifies a worker process in the cluster.
type WorkerInfo struct {
	ID   string `json:"id"`
	Addr string `json:"addr"`
}

// WorkerStatus describes a registered worker together with its current
// reachability as seen by the coordinator's death-watch.
type WorkerStatus struct {
	WorkerInfo
	Status string `json:"status"`
}

// RegisterRequest is sent by a worker to attach itself to the coordinator.
type RegisterRequest struct {
	Worker WorkerInfo `json:"worker"`
}

// RangeRequest asks the coordinator to process the inclusive range
// [Start, End]. Start must be <= End.
type RangeRequest struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// ComputeChunk carries one chunk of a request's numbers to a worker.
type ComputeChunk struct {
	RequestID int     `json:"request_id"`
	Numbers   []int64 `json:"numbers"`
}

// ChunkResult is posted by a worker when it has finished a chunk.
// Items holds the worker's result values in the order they were found.
type ChunkResult struct {
	RequestID int      `json:"request_id"`
	WorkerID  string   `json:"worker_id"`
	Items     []string `json:"items"`
}

// Fault categories recognized by the coordinator's classification
// table. FaultCompute marks an ordinary processing failure: the worker
// is terminated and its chunk is lost. Any other category escalates and
// terminates the coordinator subsystem.
const (
	FaultCompute = "compute"
)

// FaultReport is posted by a worker whose chunk processing failed.
// Category selects the coordinator's fault handling: recognized
// categories terminate the worker, anything else escalates.
type FaultReport struct {
	WorkerID string `json:"worker_id"`
	Category string `json:"category"`
	Message  string `json:"message"`
}

// ResultBatch is delivered to the result sink each time a request
// completes. It carries the coordinator's full accumulated result log.
type ResultBatch struct {
	Items []string `json:"items"`
}

var httpClient = &http.Client{Timeout: 5 * time.Second}

func PostJSON(ctx context.Context, url string, body any, out any) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("http %s: %d", url, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func GetJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("http %s: %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
