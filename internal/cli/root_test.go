package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dreamware/rangefan/internal/cluster"
	"github.com/dreamware/rangefan/internal/history"
)

func TestRootCommand(t *testing.T) {
	cmd := newRootCmd()

	if cmd == nil {
		t.Fatal("expected root command, got nil")
	}

	if cmd.Use != "rangefan" {
		t.Errorf("expected use 'rangefan', got %q", cmd.Use)
	}

	// Verify subcommands are registered
	expectedCommands := []string{
		"version",
		"submit",
		"workers",
		"batches",
		"drain",
	}

	for _, cmdName := range expectedCommands {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == cmdName {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected subcommand %q to be registered", cmdName)
		}
	}
}

func TestRootCommandHelp(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--help"})

	output := &bytes.Buffer{}
	cmd.SetOut(output)
	cmd.SetErr(output)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	help := output.String()
	for _, want := range []string{"rangefan", "submit", "workers", "drain", "version"} {
		if !strings.Contains(help, want) {
			t.Errorf("expected help to contain %q", want)
		}
	}
}

// execute runs the CLI with args against an empty config file so the
// test is independent of the host's ~/.rangefan.yaml.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(""), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cmd := newRootCmd()
	cmd.SetArgs(append(args, "--config", cfgPath))

	output := &bytes.Buffer{}
	cmd.SetOut(output)
	cmd.SetErr(output)

	err := cmd.Execute()
	return output.String(), err
}

func TestSubmitCommand(t *testing.T) {
	var (
		mu  sync.Mutex
		got cluster.RangeRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ranges" {
			http.NotFound(w, r)
			return
		}
		mu.Lock()
		json.NewDecoder(r.Body).Decode(&got)
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	out, err := execute(t, "submit", "1", "10000", "--coordinator", srv.URL)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !strings.Contains(out, "Submitted range [1, 10000]") {
		t.Errorf("unexpected output: %s", out)
	}

	mu.Lock()
	defer mu.Unlock()
	if got.Start != 1 || got.End != 10000 {
		t.Errorf("coordinator saw %+v", got)
	}
}

func TestSubmitCommandValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"inverted range", []string{"submit", "10", "1"}},
		{"non-numeric start", []string{"submit", "abc", "10"}},
		{"non-numeric end", []string{"submit", "1", "xyz"}},
		{"missing args", []string{"submit", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestWorkersCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/workers" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(struct {
			Workers []cluster.WorkerStatus `json:"workers"`
			Count   int                    `json:"count"`
		}{
			Workers: []cluster.WorkerStatus{
				{WorkerInfo: cluster.WorkerInfo{ID: "w1", Addr: "http://localhost:9081"}, Status: "reachable"},
			},
			Count: 1,
		})
	}))
	defer srv.Close()

	out, err := execute(t, "workers", "--coordinator", srv.URL, "--no-color")
	if err != nil {
		t.Fatalf("workers failed: %v", err)
	}
	for _, want := range []string{"w1", "http://localhost:9081", "reachable"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q:\n%s", want, out)
		}
	}
}

func TestBatchesCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/batches" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(struct {
			Batches []history.Entry `json:"batches"`
			Count   int             `json:"count"`
		}{
			Batches: []history.Entry{
				{Seq: 1, CompletedAt: time.Now(), Items: []string{"2", "3", "5"}},
			},
			Count: 1,
		})
	}))
	defer srv.Close()

	out, err := execute(t, "batches", "--coordinator", srv.URL)
	if err != nil {
		t.Fatalf("batches failed: %v", err)
	}
	for _, want := range []string{"SEQ", "2 3 5"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q:\n%s", want, out)
		}
	}
}

func TestBatchesCommandEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(struct {
			Batches []history.Entry `json:"batches"`
			Count   int             `json:"count"`
		}{})
	}))
	defer srv.Close()

	out, err := execute(t, "batches", "--coordinator", srv.URL)
	if err != nil {
		t.Fatalf("batches failed: %v", err)
	}
	if !strings.Contains(out, "No completed batches") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestDrainCommand(t *testing.T) {
	var drained bool
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/drain" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		mu.Lock()
		drained = true
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	out, err := execute(t, "drain", "--coordinator", srv.URL)
	if err != nil {
		t.Fatalf("drain failed: %v", err)
	}
	if !strings.Contains(out, "draining") {
		t.Errorf("unexpected output: %s", out)
	}

	mu.Lock()
	defer mu.Unlock()
	if !drained {
		t.Error("coordinator never received the drain request")
	}
}

func TestDrainCommandCoordinatorDown(t *testing.T) {
	if _, err := execute(t, "drain", "--coordinator", "http://127.0.0.1:1"); err == nil {
		t.Error("expected error when coordinator is unreachable")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "rangefan") || !strings.Contains(out, "Version") {
		t.Errorf("unexpected version output: %s", out)
	}
}
