//
// Package intervalset tracks which integer spans (typically unix-second time windows) have already
// been covered. Stored intervals are closed, sorted, disjoint and never adjacent, so the set is
// always in its minimal form.
//
package intervalset

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

//
// Interval is a closed range [Start, End].
//
type Interval struct {
	Start int64
	End   int64
}

func (o Interval) String() string {
	return fmt.Sprintf("(%d, %d)", o.Start, o.End)
}

//
// Set is a minimal set of closed intervals. The zero Set is empty and ready to use. It is not safe
// for concurrent use.
//
type Set struct {
	intervals []Interval
}

func New() *Set {
	return &Set{}
}

//
// Add inserts [start, end] into the set, merging it with every stored interval it overlaps or
// touches (an interval ending at start-1 or beginning at end+1). Ranges with start > end are
// ignored.
//
func (o *Set) Add(start int64, end int64) {
	if start > end {
		return
	}

	merged := make([]Interval, 0, len(o.intervals)+1)
	inserted := false

	for _, iv := range o.intervals {
		switch {
		case start > math.MinInt64 && iv.End < start-1:
			//
			// Entirely to the left with a gap in between.
			//
			merged = append(merged, iv)

		case end < math.MaxInt64 && iv.Start > end+1:
			//
			// Entirely to the right with a gap in between.
			//
			if !inserted {
				merged = append(merged, Interval{Start: start, End: end})
				inserted = true
			}

			merged = append(merged, iv)

		default:
			//
			// Overlapping or adjacent, so absorb it into the range being inserted.
			//
			if iv.Start < start {
				start = iv.Start
			}

			if iv.End > end {
				end = iv.End
			}
		}
	}

	if !inserted {
		merged = append(merged, Interval{Start: start, End: end})
	}

	o.intervals = merged
}

//
// IncludesRange reports whether a single stored interval contains all of [start, end]. A range that
// spans a gap is not included even if both of its ends are.
//
func (o *Set) IncludesRange(start int64, end int64) bool {
	if start > end {
		return false
	}

	i := o.search(start)

	return i < len(o.intervals) && o.intervals[i].Start <= start && end <= o.intervals[i].End
}

//
// Includes reports whether point lies within a stored interval.
//
func (o *Set) Includes(point int64) bool {
	return o.IncludesRange(point, point)
}

//
// Intervals returns a copy of the stored intervals in ascending order.
//
func (o *Set) Intervals() []Interval {
	return append([]Interval(nil), o.intervals...)
}

func (o *Set) Len() int {
	return len(o.intervals)
}

func (o *Set) String() string {
	parts := make([]string, len(o.intervals))

	for i, iv := range o.intervals {
		parts[i] = iv.String()
	}

	return "{" + strings.Join(parts, ", ") + "}"
}

//
// search returns the index of the first interval whose end is at or after point.
//
func (o *Set) search(point int64) int {
	return sort.Search(len(o.intervals), func(i int) bool {
		return o.intervals[i].End >= point
	})
}
