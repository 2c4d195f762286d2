package history

import (
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned when a sequence number doesn't exist in the log
var ErrNotFound = errors.New("batch not found")

// Entry is one completed request's accumulated result snapshot,
// retained for later inspection over the coordinator's HTTP API.
type Entry struct {
	Seq         int       `json:"seq"`
	CompletedAt time.Time `json:"completed_at"`
	Items       []string  `json:"items"`
}

// Log defines the interface for completed-batch retention
// All implementations must be thread-safe for concurrent access
type Log interface {
	// Append records a completed batch and returns its entry
	Append(items []string) Entry

	// Get retrieves a batch by sequence number
	// Returns ErrNotFound if the sequence doesn't exist
	Get(seq int) (Entry, error)

	// List returns all entries in completion order
	List() []Entry

	// Stats returns retention statistics
	Stats() LogStats
}

// LogStats contains statistics about the log
type LogStats struct {
	Batches int // Number of retained batches
	Items   int // Total items across all batches
}

// MemoryLog implements Log with in-memory retention
// Uses sync.RWMutex for thread-safe concurrent access
type MemoryLog struct {
	mu      sync.RWMutex
	entries []Entry
	nextSeq int
}

// NewMemoryLog creates a new in-memory log
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{nextSeq: 1}
}

// Append records a completed batch
// Makes a copy of the items to prevent external modification
func (l *MemoryLog) Append(items []string) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := Entry{
		Seq:         l.nextSeq,
		CompletedAt: time.Now(),
		Items:       append([]string(nil), items...),
	}
	l.nextSeq++
	l.entries = append(l.entries, entry)
	return entry
}

// Get retrieves a batch by sequence number
// Returns a copy of the items to prevent external modification
func (l *MemoryLog) Get(seq int) (Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	// Sequence numbers are dense and start at 1, so the entry index is
	// derivable without a search.
	idx := seq - 1
	if idx < 0 || idx >= len(l.entries) {
		return Entry{}, ErrNotFound
	}
	entry := l.entries[idx]
	entry.Items = append([]string(nil), entry.Items...)
	return entry, nil
}

// List returns all entries in completion order
// Item slices are copied to prevent external modification
func (l *MemoryLog) List() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.entries))
	for i, entry := range l.entries {
		entry.Items = append([]string(nil), entry.Items...)
		out[i] = entry
	}
	return out
}

// Stats returns retention statistics
func (l *MemoryLog) Stats() LogStats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	items := 0
	for _, entry := range l.entries {
		items += len(entry.Items)
	}
	return LogStats{
		Batches: len(l.entries),
		Items:   items,
	}
}
