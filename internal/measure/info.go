// Package measure holds the per-key aggregates and the record parsing used to
// build them.
package measure

import (
	"fmt"
	"math"
)

// Info aggregates the values observed for one key. The mean is derived at
// output time and never stored.
type Info struct {
	Min   float64
	Max   float64
	Sum   float64
	Count int64
}

// NewInfo returns an empty aggregate whose bounds are set by the first
// observation.
func NewInfo() Info {
	return Info{
		Min: math.Inf(1),
		Max: math.Inf(-1),
	}
}

func (info *Info) Update(value float64) {
	info.Sum += value
	info.Count++
	if info.Min > value {
		info.Min = value
	}
	if info.Max < value {
		info.Max = value
	}
}

func (info *Info) Merge(other Info) {
	if info.Min > other.Min {
		info.Min = other.Min
	}
	if info.Max < other.Max {
		info.Max = other.Max
	}
	info.Sum += other.Sum
	info.Count += other.Count
}

func (info Info) Mean() float64 {
	return info.Sum / float64(info.Count)
}

func (info Info) String() string {
	return fmt.Sprintf("%.1f/%.1f/%.1f", info.Min, info.Mean(), info.Max)
}
