// Package coordinator implements the dispatch core of rangefan's range
// computation system. See doc.go for complete package documentation.
package coordinator

// Range is an inclusive numeric interval [Start, End].
//
// Callers submitting work must guarantee Start <= End; an inverted range
// is a caller error, not a runtime fault. Sub-ranges produced by Split
// may legitimately be empty or inverted when a request is divided among
// more workers than it has numbers (see Split).
type Range struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Len returns the number of integers in the range. It is negative for
// an inverted range.
func (r Range) Len() int64 {
	return r.End - r.Start + 1
}

// Numbers materializes every integer in the range, in ascending order.
// An empty or inverted range yields an empty slice.
func (r Range) Numbers() []int64 {
	if r.Start > r.End {
		return nil
	}
	out := make([]int64, 0, r.Len())
	for n := r.Start; n <= r.End; n++ {
		out = append(out, n)
	}
	return out
}

// Split partitions r into exactly n contiguous, non-overlapping
// sub-ranges. n must be >= 1 and r.Start <= r.End.
//
// The segment length is total/n rounded down. Every sub-range except the
// last covers exactly one segment; the last sub-range runs to r.End and
// absorbs the remainder (total mod n extra numbers).
//
// When n exceeds the size of the range the segment length is zero: all
// sub-ranges but the last come out empty (inverted), and the last one
// carries the whole range. Downstream accounting
// assumes one chunk per worker regardless of chunk size, so Split always
// produces exactly n chunks and never redistributes the remainder.
//
// Split is pure and deterministic; it performs no allocation beyond the
// returned slice.
func Split(r Range, n int) []Range {
	total := r.End - r.Start + 1
	segment := total / int64(n)

	chunks := make([]Range, n)
	for i := 0; i < n; i++ {
		start := r.Start + int64(i)*segment
		end := start + segment - 1
		if i == n-1 {
			// Last chunk absorbs the remainder.
			end = r.End
		}
		chunks[i] = Range{Start: start, End: end}
	}
	return chunks
}
