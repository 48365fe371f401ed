// Package partition splits index ranges into contiguous batches for
// fork-join computation.
package partition

import "runtime"

// Range is a half-open index interval [Low, High).
type Range struct {
	Low  int
	High int
}

// Size returns the number of indices covered by the range.
func (r Range) Size() int { return r.High - r.Low }

// Workers normalizes a requested worker count for a range of the given
// size. A request of 0 selects a default based on runtime.GOMAXPROCS(0).
// The result is always clamped to size, and never less than 1 for a
// non-empty range.
func Workers(size, requested int) int {
	if size <= 0 {
		return 1
	}

	workers := requested
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > size {
		workers = size
	}
	if workers < 1 {
		workers = 1
	}

	return workers
}

// Split divides the half-open interval [0, size) into n contiguous
// ranges. The first size%n ranges receive one extra index, so range
// sizes differ by at most one. n is clamped to [1, size] for a
// non-empty interval; an empty interval yields no ranges.
func Split(size, n int) []Range {
	if size <= 0 {
		return nil
	}
	if n < 1 {
		n = 1
	}
	if n > size {
		n = size
	}

	ranges := make([]Range, 0, n)
	base := size / n
	extra := size % n

	low := 0
	for i := 0; i < n; i++ {
		high := low + base
		if i < extra {
			high++
		}
		ranges = append(ranges, Range{Low: low, High: high})
		low = high
	}

	return ranges
}
