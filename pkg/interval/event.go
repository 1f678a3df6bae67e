package interval

import (
	"fmt"
	"sort"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// Axis names one of the three spatial variables.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Axes lists the spatial variables in order.
var Axes = []Axis{AxisX, AxisY, AxisZ}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// component picks the coordinate of v on axis a.
func component(v v3.Vec, a Axis) float64 {
	switch a {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	default:
		return v.Z
	}
}

// ---------------------------------------------------------------------------
// SimpleEvent
// ---------------------------------------------------------------------------

// SimpleEvent is the Cartesian product of one interval set per axis.
// When every set holds a single interval it describes exactly one box.
type SimpleEvent struct {
	sets [3]Set
}

// NewSimpleEvent builds the product x × y × z.
func NewSimpleEvent(x, y, z Set) SimpleEvent {
	return SimpleEvent{sets: [3]Set{x, y, z}}
}

// FromIntervals builds the product of three single intervals.
func FromIntervals(x, y, z Interval) SimpleEvent {
	return NewSimpleEvent(NewSet(x), NewSet(y), NewSet(z))
}

// Get returns the set for one axis.
func (e SimpleEvent) Get(a Axis) Set { return e.sets[a] }

// With returns a copy of e with the set for axis a replaced.
func (e SimpleEvent) With(a Axis, s Set) SimpleEvent {
	e.sets[a] = s
	return e
}

// IsEmpty reports whether any axis is empty.
func (e SimpleEvent) IsEmpty() bool {
	return e.sets[AxisX].IsEmpty() || e.sets[AxisY].IsEmpty() || e.sets[AxisZ].IsEmpty()
}

// Contains reports whether p lies in the product.
func (e SimpleEvent) Contains(p v3.Vec) bool {
	for _, a := range Axes {
		if !e.sets[a].Contains(component(p, a)) {
			return false
		}
	}
	return true
}

// Intersection intersects the per-axis sets.
func (e SimpleEvent) Intersection(o SimpleEvent) SimpleEvent {
	return NewSimpleEvent(
		e.sets[AxisX].Intersection(o.sets[AxisX]),
		e.sets[AxisY].Intersection(o.sets[AxisY]),
		e.sets[AxisZ].Intersection(o.sets[AxisZ]),
	)
}

// Volume returns the product of the per-axis lengths.
func (e SimpleEvent) Volume() float64 {
	return e.sets[AxisX].Length() * e.sets[AxisY].Length() * e.sets[AxisZ].Length()
}

// Equal reports whether both products hold the same sets.
func (e SimpleEvent) Equal(o SimpleEvent) bool {
	return e.sets[AxisX].Equal(o.sets[AxisX]) && e.sets[AxisY].Equal(o.sets[AxisY]) && e.sets[AxisZ].Equal(o.sets[AxisZ])
}

func (e SimpleEvent) String() string {
	return fmt.Sprintf("{x: %s, y: %s, z: %s}", e.sets[AxisX], e.sets[AxisY], e.sets[AxisZ])
}

// ---------------------------------------------------------------------------
// Event
// ---------------------------------------------------------------------------

// Event is a union of simple events. Members may overlap unless the event
// was produced by Disjoint.
type Event struct {
	simple []SimpleEvent
}

// NewEvent builds a union, dropping empty members.
func NewEvent(simple ...SimpleEvent) Event {
	return Event{simple: lo.Filter(simple, func(se SimpleEvent, _ int) bool { return !se.IsEmpty() })}
}

// Simples returns the member simple events.
func (e Event) Simples() []SimpleEvent {
	out := make([]SimpleEvent, len(e.simple))
	copy(out, e.simple)
	return out
}

// Len returns the number of member simple events.
func (e Event) Len() int { return len(e.simple) }

// IsEmpty reports whether the event has no members.
func (e Event) IsEmpty() bool { return len(e.simple) == 0 }

// Contains reports whether any member contains p.
func (e Event) Contains(p v3.Vec) bool {
	return lo.ContainsBy(e.simple, func(se SimpleEvent) bool { return se.Contains(p) })
}

// Intersection intersects every member of e with every member of o.
func (e Event) Intersection(o Event) Event {
	var out []SimpleEvent
	for _, a := range e.simple {
		for _, b := range o.simple {
			out = append(out, a.Intersection(b))
		}
	}
	return NewEvent(out...)
}

// Union concatenates the members of both events.
func (e Event) Union(o Event) Event {
	return NewEvent(append(e.Simples(), o.simple...)...)
}

// Disjoint rewrites the event as non-overlapping boxes covering the same
// volume; neighbouring boxes may share a face. All bounds are collected per
// axis and the grid cells that lie inside some member are kept, with runs of
// cells merged along X.
// Members of zero thickness have no volume and are dropped.
func (e Event) Disjoint() Event {
	if e.IsEmpty() {
		return Event{}
	}
	var breaks [3][]float64
	for _, a := range Axes {
		var bounds []float64
		for _, se := range e.simple {
			for _, iv := range se.sets[a].simple {
				bounds = append(bounds, iv.Lower, iv.Upper)
			}
		}
		sort.Float64s(bounds)
		breaks[a] = lo.Uniq(bounds)
	}

	var out []SimpleEvent
	for k := 0; k+1 < len(breaks[AxisZ]); k++ {
		zLo, zHi := breaks[AxisZ][k], breaks[AxisZ][k+1]
		for j := 0; j+1 < len(breaks[AxisY]); j++ {
			yLo, yHi := breaks[AxisY][j], breaks[AxisY][j+1]
			runStart := -1
			flush := func(end int) {
				if runStart < 0 {
					return
				}
				out = append(out, FromIntervals(
					Closed(breaks[AxisX][runStart], breaks[AxisX][end]),
					Closed(yLo, yHi),
					Closed(zLo, zHi),
				))
				runStart = -1
			}
			for i := 0; i+1 < len(breaks[AxisX]); i++ {
				xLo, xHi := breaks[AxisX][i], breaks[AxisX][i+1]
				mid := v3.Vec{X: (xLo + xHi) / 2, Y: (yLo + yHi) / 2, Z: (zLo + zHi) / 2}
				if e.Contains(mid) {
					if runStart < 0 {
						runStart = i
					}
					continue
				}
				flush(i)
			}
			flush(len(breaks[AxisX]) - 1)
		}
	}
	return NewEvent(out...)
}

// Volume returns the measure of the union, counting overlaps once.
func (e Event) Volume() float64 {
	return lo.SumBy(e.Disjoint().simple, func(se SimpleEvent) float64 { return se.Volume() })
}

// Marginal keeps the given axes and replaces every other axis by [0, 1],
// returning a disjoint event whose volume is the area (or length) of the
// projection onto the kept axes.
func (e Event) Marginal(keep ...Axis) Event {
	unit := NewSet(Closed(0, 1))
	projected := lo.Map(e.simple, func(se SimpleEvent, _ int) SimpleEvent {
		for _, a := range Axes {
			if !lo.Contains(keep, a) {
				se = se.With(a, unit)
			}
		}
		return se
	})
	return NewEvent(projected...).Disjoint()
}

func (e Event) String() string {
	parts := lo.Map(e.simple, func(se SimpleEvent, _ int) string { return se.String() })
	return strings.Join(parts, " ∪ ")
}
