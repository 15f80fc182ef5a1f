// Package chunk splits a byte length into contiguous ranges, one per worker.
package chunk

import "fmt"

// Range is the half-open byte range [Start, End).
type Range struct {
	Start int64
	End   int64
}

func (r Range) Len() int64 {
	return r.End - r.Start
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

// Plan divides total bytes into workers contiguous ranges of equal size. The
// last range absorbs the remainder. The ranges ignore line boundaries.
//
// Plan panics if workers < 1.
func Plan(workers int, total int64) []Range {
	if workers < 1 {
		panic(fmt.Sprintf("chunk: invalid worker count %d", workers))
	}

	size := total / int64(workers)
	ranges := make([]Range, workers)
	for i := range ranges {
		start := int64(i) * size
		end := start + size
		if i == workers-1 {
			end = total
		}
		ranges[i] = Range{Start: start, End: end}
	}
	return ranges
}
