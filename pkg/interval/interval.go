package interval

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Interval is a closed interval [Lower, Upper]. It is empty when Lower > Upper.
type Interval struct {
	Lower float64
	Upper float64
}

// Closed returns the closed interval [lo, hi].
func Closed(lo, hi float64) Interval {
	return Interval{Lower: lo, Upper: hi}
}

// IsEmpty reports whether the interval contains no points.
func (i Interval) IsEmpty() bool {
	return i.Lower > i.Upper || math.IsNaN(i.Lower) || math.IsNaN(i.Upper)
}

// IsDegenerate reports whether the interval is a single point.
func (i Interval) IsDegenerate() bool {
	return i.Lower == i.Upper
}

// Length returns Upper - Lower, or 0 for an empty interval.
func (i Interval) Length() float64 {
	if i.IsEmpty() {
		return 0
	}
	return i.Upper - i.Lower
}

// Contains reports whether x lies in the closed interval.
func (i Interval) Contains(x float64) bool {
	return i.Lower <= x && x <= i.Upper
}

// Intersection returns the overlap of i and o, which may be empty.
func (i Interval) Intersection(o Interval) Interval {
	return Interval{Lower: math.Max(i.Lower, o.Lower), Upper: math.Min(i.Upper, o.Upper)}
}

func (i Interval) String() string {
	return fmt.Sprintf("[%g, %g]", i.Lower, i.Upper)
}

// Set is a union of closed intervals kept sorted and pairwise disjoint.
// The zero value is the empty set.
type Set struct {
	simple []Interval
}

// NewSet builds a normalized set from arbitrary intervals. Empty intervals
// are dropped; overlapping or touching intervals are merged.
func NewSet(intervals ...Interval) Set {
	kept := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		if !iv.IsEmpty() {
			kept = append(kept, iv)
		}
	}
	if len(kept) == 0 {
		return Set{}
	}
	sort.Slice(kept, func(a, b int) bool {
		if kept[a].Lower != kept[b].Lower {
			return kept[a].Lower < kept[b].Lower
		}
		return kept[a].Upper < kept[b].Upper
	})

	merged := []Interval{kept[0]}
	for _, iv := range kept[1:] {
		last := &merged[len(merged)-1]
		if iv.Lower <= last.Upper {
			last.Upper = math.Max(last.Upper, iv.Upper)
			continue
		}
		merged = append(merged, iv)
	}
	return Set{simple: merged}
}

// Simple returns the disjoint intervals of the set in ascending order.
func (s Set) Simple() []Interval {
	out := make([]Interval, len(s.simple))
	copy(out, s.simple)
	return out
}

// Len returns the number of disjoint intervals.
func (s Set) Len() int { return len(s.simple) }

// IsEmpty reports whether the set contains no points.
func (s Set) IsEmpty() bool { return len(s.simple) == 0 }

// Contains reports whether x lies in any member interval.
func (s Set) Contains(x float64) bool {
	idx := sort.Search(len(s.simple), func(i int) bool { return s.simple[i].Upper >= x })
	return idx < len(s.simple) && s.simple[idx].Contains(x)
}

// Intersection returns the points common to s and o.
func (s Set) Intersection(o Set) Set {
	var out []Interval
	i, j := 0, 0
	for i < len(s.simple) && j < len(o.simple) {
		iv := s.simple[i].Intersection(o.simple[j])
		if !iv.IsEmpty() {
			out = append(out, iv)
		}
		if s.simple[i].Upper < o.simple[j].Upper {
			i++
		} else {
			j++
		}
	}
	return Set{simple: out}
}

// Union returns the points in s or o.
func (s Set) Union(o Set) Set {
	all := make([]Interval, 0, len(s.simple)+len(o.simple))
	all = append(all, s.simple...)
	all = append(all, o.simple...)
	return NewSet(all...)
}

// Length returns the total measure of the set.
func (s Set) Length() float64 {
	var total float64
	for _, iv := range s.simple {
		total += iv.Length()
	}
	return total
}

// Equal reports whether both sets hold the same intervals.
func (s Set) Equal(o Set) bool {
	if len(s.simple) != len(o.simple) {
		return false
	}
	for i := range s.simple {
		if s.simple[i] != o.simple[i] {
			return false
		}
	}
	return true
}

func (s Set) String() string {
	if s.IsEmpty() {
		return "∅"
	}
	parts := make([]string, len(s.simple))
	for i, iv := range s.simple {
		parts[i] = iv.String()
	}
	return strings.Join(parts, " ∪ ")
}
