package interval

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestNewSetNormalizes(t *testing.T) {
	tests := []struct {
		name  string
		input []Interval
		want  []Interval
	}{
		{"empty", nil, nil},
		{"drops empty intervals", []Interval{Closed(2, 1)}, nil},
		{"single", []Interval{Closed(0, 1)}, []Interval{Closed(0, 1)}},
		{"sorts", []Interval{Closed(2, 3), Closed(0, 1)}, []Interval{Closed(0, 1), Closed(2, 3)}},
		{"merges overlap", []Interval{Closed(0, 2), Closed(1, 3)}, []Interval{Closed(0, 3)}},
		{"merges touching", []Interval{Closed(0, 1), Closed(1, 2)}, []Interval{Closed(0, 2)}},
		{"keeps points", []Interval{Closed(1, 1)}, []Interval{Closed(1, 1)}},
		{"absorbs contained", []Interval{Closed(0, 5), Closed(1, 2)}, []Interval{Closed(0, 5)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewSet(tt.input...).Simple()
			if len(got) != len(tt.want) {
				t.Fatalf("NewSet(%v) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("NewSet(%v)[%d] = %v, want %v", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSetOperations(t *testing.T) {
	a := NewSet(Closed(0, 2), Closed(4, 6))
	b := NewSet(Closed(1, 5))

	inter := a.Intersection(b)
	want := NewSet(Closed(1, 2), Closed(4, 5))
	if !inter.Equal(want) {
		t.Errorf("Intersection = %s, want %s", inter, want)
	}

	union := a.Union(b)
	if !union.Equal(NewSet(Closed(0, 6))) {
		t.Errorf("Union = %s, want [0, 6]", union)
	}

	if got := a.Length(); got != 4 {
		t.Errorf("Length = %g, want 4", got)
	}

	disjoint := NewSet(Closed(0, 1)).Intersection(NewSet(Closed(2, 3)))
	if !disjoint.IsEmpty() {
		t.Errorf("Intersection of disjoint sets = %s, want empty", disjoint)
	}

	touching := NewSet(Closed(0, 1)).Intersection(NewSet(Closed(1, 2)))
	if touching.Len() != 1 || !touching.Simple()[0].IsDegenerate() {
		t.Errorf("Intersection of touching sets = %s, want the point [1, 1]", touching)
	}
}

func TestSetContains(t *testing.T) {
	s := NewSet(Closed(0, 1), Closed(2, 3))
	for _, x := range []float64{0, 0.5, 1, 2, 3} {
		if !s.Contains(x) {
			t.Errorf("Contains(%g) = false, want true", x)
		}
	}
	for _, x := range []float64{-0.1, 1.5, 3.0001} {
		if s.Contains(x) {
			t.Errorf("Contains(%g) = true, want false", x)
		}
	}
}

func TestSimpleEvent(t *testing.T) {
	box := FromIntervals(Closed(0, 2), Closed(0, 2), Closed(0, 2))
	other := FromIntervals(Closed(1, 3), Closed(1, 3), Closed(1, 3))

	inter := box.Intersection(other)
	if !inter.Equal(FromIntervals(Closed(1, 2), Closed(1, 2), Closed(1, 2))) {
		t.Errorf("Intersection = %s", inter)
	}
	if inter.Volume() != 1 {
		t.Errorf("Volume = %g, want 1", inter.Volume())
	}

	far := FromIntervals(Closed(5, 6), Closed(0, 1), Closed(0, 1))
	if !box.Intersection(far).IsEmpty() {
		t.Error("intersection with a box disjoint on x is not empty")
	}

	if !box.Contains(v3.Vec{X: 2, Y: 0, Z: 1}) {
		t.Error("Contains on boundary = false, want true")
	}
	if box.Contains(v3.Vec{X: 2.0001, Y: 0, Z: 1}) {
		t.Error("Contains beyond max x = true, want false")
	}
}

func TestEventDisjointVolume(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want float64
	}{
		{
			name: "single box",
			ev:   NewEvent(FromIntervals(Closed(0, 1), Closed(0, 2), Closed(0, 3))),
			want: 6,
		},
		{
			name: "overlap counted once",
			ev: NewEvent(
				FromIntervals(Closed(0, 2), Closed(0, 2), Closed(0, 2)),
				FromIntervals(Closed(1, 3), Closed(1, 3), Closed(1, 3)),
			),
			want: 8 + 8 - 1,
		},
		{
			name: "nested",
			ev: NewEvent(
				FromIntervals(Closed(0, 4), Closed(0, 1), Closed(0, 1)),
				FromIntervals(Closed(1, 2), Closed(0, 1), Closed(0, 1)),
			),
			want: 4,
		},
		{
			name: "surface has no volume",
			ev:   NewEvent(FromIntervals(Closed(0, 1), Closed(0, 1), Closed(0, 0))),
			want: 0,
		},
		{
			name: "empty",
			ev:   NewEvent(),
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ev.Volume(); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Volume() = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestEventDisjointMembersDoNotOverlap(t *testing.T) {
	ev := NewEvent(
		FromIntervals(Closed(0, 2), Closed(0, 2), Closed(0, 1)),
		FromIntervals(Closed(1, 3), Closed(1, 3), Closed(0, 1)),
	)
	d := ev.Disjoint().Simples()
	for i := range d {
		for j := i + 1; j < len(d); j++ {
			if v := d[i].Intersection(d[j]).Volume(); v > 0 {
				t.Errorf("members %d and %d overlap with volume %g", i, j, v)
			}
		}
	}
	// The merged run along x means the lower y band is a single box.
	if len(d) != 3 {
		t.Errorf("Disjoint() produced %d boxes, want 3", len(d))
	}
}

func TestEventIntersectionAndUnion(t *testing.T) {
	a := NewEvent(FromIntervals(Closed(0, 2), Closed(0, 2), Closed(0, 2)))
	b := NewEvent(
		FromIntervals(Closed(1, 3), Closed(1, 3), Closed(1, 3)),
		FromIntervals(Closed(10, 11), Closed(0, 1), Closed(0, 1)),
	)
	inter := a.Intersection(b)
	if inter.Len() != 1 {
		t.Fatalf("Intersection has %d members, want 1 (empty pairs dropped)", inter.Len())
	}
	if inter.Volume() != 1 {
		t.Errorf("Intersection volume = %g, want 1", inter.Volume())
	}

	u := a.Union(b)
	if u.Len() != 3 {
		t.Errorf("Union has %d members, want 3", u.Len())
	}
	if !u.Contains(v3.Vec{X: 10.5, Y: 0.5, Z: 0.5}) {
		t.Error("Union does not contain a point of the far box")
	}
}

func TestEventMarginal(t *testing.T) {
	// Two stacked boxes with the same footprint project onto one square.
	ev := NewEvent(
		FromIntervals(Closed(0, 1), Closed(0, 2), Closed(0, 1)),
		FromIntervals(Closed(0, 1), Closed(0, 2), Closed(5, 6)),
	)
	xy := ev.Marginal(AxisX, AxisY)
	if got := xy.Volume(); math.Abs(got-2) > 1e-12 {
		t.Errorf("XY marginal area = %g, want 2", got)
	}
	for _, se := range xy.Simples() {
		if !se.Get(AxisZ).Equal(NewSet(Closed(0, 1))) {
			t.Errorf("marginal z set = %s, want [0, 1]", se.Get(AxisZ))
		}
	}
}
