// Package segment maintains sorted, disjoint, fully-coalesced half-open
// interval lists under insertion.
package segment

import "golang.org/x/exp/slices"

// Interval is a half-open range [Start, End).
type Interval struct {
	Start uint64
	End   uint64
}

// Segments is a sorted, pairwise-disjoint, fully-coalesced list of
// intervals. The zero value is an empty list ready to use.
type Segments struct {
	list []Interval
}

// List returns the current intervals, sorted by Start. The returned slice
// must not be mutated by the caller.
func (s *Segments) List() []Interval {
	return s.list
}

// Len reports the number of disjoint intervals currently held.
func (s *Segments) Len() int {
	return len(s.list)
}

// Add inserts iv into the list, merging with any overlapping or adjacent
// neighbours so the list stays sorted, disjoint and fully coalesced.
// Degenerate intervals (Start >= End) are rejected as a no-op.
func (s *Segments) Add(iv Interval) {
	if iv.Start >= iv.End {
		return
	}

	// Locate the insertion point by binary search on Start.
	idx, _ := slices.BinarySearchFunc(s.list, iv, func(a, b Interval) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		default:
			return 0
		}
	})

	s.list = slices.Insert(s.list, idx, iv)

	// Walk forward from the left neighbour of the insertion point (it may
	// overlap iv even though its Start sorts before iv.Start), merging any
	// interval whose Start is <= the running maximum End.
	start := idx
	if start > 0 {
		start--
	}

	write := start
	cur := s.list[start]
	for i := start + 1; i < len(s.list); i++ {
		next := s.list[i]
		if next.Start <= cur.End {
			if next.End > cur.End {
				cur.End = next.End
			}
			continue
		}
		s.list[write] = cur
		write++
		cur = next
	}
	s.list[write] = cur
	write++

	s.list = s.list[:write]
}

// NumFiles returns the total count of duration-sized slots covered by the
// list, i.e. sum((end-start)/duration) in integer division across every
// interval. duration must be > 0.
func (s *Segments) NumFiles(duration uint64) int {
	if duration == 0 {
		return 0
	}
	var n uint64
	for _, iv := range s.list {
		n += (iv.End - iv.Start) / duration
	}
	return int(n)
}
