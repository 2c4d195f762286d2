package coordinator

import "testing"

// TestSplitProducesExactlyN verifies the chunk count is always n
func TestSplitProducesExactlyN(t *testing.T) {
	tests := []struct {
		name string
		r    Range
		n    int
	}{
		{name: "even split", r: Range{Start: 1, End: 12}, n: 3},
		{name: "remainder", r: Range{Start: 1, End: 10}, n: 3},
		{name: "single worker", r: Range{Start: 5, End: 5}, n: 1},
		{name: "more workers than numbers", r: Range{Start: 1, End: 3}, n: 7},
		{name: "negative start", r: Range{Start: -10, End: 10}, n: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Split(tt.r, tt.n)
			if len(chunks) != tt.n {
				t.Fatalf("Expected %d chunks, got %d", tt.n, len(chunks))
			}
		})
	}
}

// TestSplitCoverage verifies the chunks are disjoint and cover the range
func TestSplitCoverage(t *testing.T) {
	tests := []struct {
		name string
		r    Range
		n    int
	}{
		{name: "1..100 over 7", r: Range{Start: 1, End: 100}, n: 7},
		{name: "0..9 over 10", r: Range{Start: 0, End: 9}, n: 10},
		{name: "1..10 over 3", r: Range{Start: 1, End: 10}, n: 3},
		{name: "-5..5 over 2", r: Range{Start: -5, End: 5}, n: 2},
		{name: "tiny range many workers", r: Range{Start: 1, End: 2}, n: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Split(tt.r, tt.n)

			seen := make(map[int64]int)
			for _, c := range chunks {
				for v := c.Start; v <= c.End; v++ {
					seen[v]++
				}
			}

			// Every number covered exactly once
			for v := tt.r.Start; v <= tt.r.End; v++ {
				if seen[v] != 1 {
					t.Errorf("Number %d covered %d times, want 1", v, seen[v])
				}
			}
			if int64(len(seen)) != tt.r.Len() {
				t.Errorf("Covered %d numbers, want %d", len(seen), tt.r.Len())
			}

			// Last chunk ends exactly at the range end
			if chunks[len(chunks)-1].End != tt.r.End {
				t.Errorf("Last chunk ends at %d, want %d", chunks[len(chunks)-1].End, tt.r.End)
			}
		})
	}
}

// TestSplitRemainderRule pins the documented [1,10] x 3 scenario:
// segment length 3, remainder absorbed by the final chunk.
func TestSplitRemainderRule(t *testing.T) {
	chunks := Split(Range{Start: 1, End: 10}, 3)

	want := []Range{
		{Start: 1, End: 3},
		{Start: 4, End: 6},
		{Start: 7, End: 10},
	}
	for i, c := range chunks {
		if c != want[i] {
			t.Errorf("Chunk %d = [%d,%d], want [%d,%d]", i, c.Start, c.End, want[i].Start, want[i].End)
		}
	}
}

// TestSplitMoreWorkersThanNumbers verifies empty middle chunks are
// produced, not rejected, when n exceeds the range size.
func TestSplitMoreWorkersThanNumbers(t *testing.T) {
	chunks := Split(Range{Start: 1, End: 2}, 4)

	if len(chunks) != 4 {
		t.Fatalf("Expected 4 chunks, got %d", len(chunks))
	}

	// Segment length is 0: all but the last chunk are inverted/empty.
	for i := 0; i < 3; i++ {
		if chunks[i].Len() > 0 {
			t.Errorf("Chunk %d = [%d,%d], expected empty", i, chunks[i].Start, chunks[i].End)
		}
		if len(chunks[i].Numbers()) != 0 {
			t.Errorf("Chunk %d materialized %d numbers, want 0", i, len(chunks[i].Numbers()))
		}
	}

	last := chunks[3]
	if last.End != 2 {
		t.Errorf("Last chunk ends at %d, want 2", last.End)
	}
	if got := last.Numbers(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Last chunk numbers = %v, want [1 2]", got)
	}
}

// TestRangeNumbers tests materialization of a range
func TestRangeNumbers(t *testing.T) {
	r := Range{Start: 3, End: 6}
	got := r.Numbers()
	want := []int64{3, 4, 5, 6}
	if len(got) != len(want) {
		t.Fatalf("Expected %d numbers, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Numbers()[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	if n := (Range{Start: 4, End: 3}).Numbers(); len(n) != 0 {
		t.Errorf("Inverted range materialized %d numbers, want 0", len(n))
	}
}
