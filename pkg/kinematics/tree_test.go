package kinematics

import (
	"math"
	"testing"

	"github.com/pkg/errors"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

const tol = 1e-9

func vecNear(a, b v3.Vec) bool {
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol && math.Abs(a.Z-b.Z) < tol
}

// newKitchen builds world -> table -> top, world -> shelf (rotated 90° about Z).
func newKitchen(t *testing.T) *Tree {
	t.Helper()
	tree := NewTree("world")
	table, err := tree.AddFrame("table", tree.Root(), Translation(1, 2, 0))
	if err != nil {
		t.Fatalf("AddFrame(table): %v", err)
	}
	if _, err := tree.AddFrame("top", table, Translation(0, 0, 0.75)); err != nil {
		t.Fatalf("AddFrame(top): %v", err)
	}
	if _, err := tree.AddFrame("shelf", tree.Root(), Pose(v3.Vec{X: 5}, v3.Vec{Z: math.Pi / 2})); err != nil {
		t.Fatalf("AddFrame(shelf): %v", err)
	}
	return tree
}

func TestAddFrameErrors(t *testing.T) {
	tree := newKitchen(t)
	other := NewTree("elsewhere")

	tests := []struct {
		name   string
		frame  string
		parent *Frame
		want   error
	}{
		{"duplicate", "table", tree.Root(), ErrDuplicateFrame},
		{"nil parent", "floating", nil, ErrFrameNotFound},
		{"foreign parent", "foreign", other.Root(), ErrFrameNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tree.AddFrame(tt.frame, tt.parent, Translation(0, 0, 0))
			if !errors.Is(err, tt.want) {
				t.Errorf("AddFrame(%q) error = %v, want %v", tt.frame, err, tt.want)
			}
		})
	}

	if _, err := tree.AddFrame("", tree.Root(), Translation(0, 0, 0)); err == nil {
		t.Error("AddFrame with empty name succeeded, want error")
	}
}

func TestTransformChain(t *testing.T) {
	tree := newKitchen(t)
	top := tree.MustFrame("top")

	// A point at the origin of "top" is at (1, 2, 0.75) in world.
	p, err := tree.TransformPoint(v3.Vec{}, top, tree.Root())
	if err != nil {
		t.Fatalf("TransformPoint: %v", err)
	}
	if !vecNear(p, v3.Vec{X: 1, Y: 2, Z: 0.75}) {
		t.Errorf("world position of top = %v, want (1, 2, 0.75)", p)
	}

	// And the inverse direction.
	back, err := tree.TransformPoint(v3.Vec{X: 1, Y: 2, Z: 0.75}, tree.Root(), top)
	if err != nil {
		t.Fatalf("TransformPoint: %v", err)
	}
	if !vecNear(back, v3.Vec{}) {
		t.Errorf("top position of (1,2,0.75) = %v, want origin", back)
	}
}

func TestTransformAcrossBranches(t *testing.T) {
	tree := newKitchen(t)
	shelf := tree.MustFrame("shelf")
	top := tree.MustFrame("top")

	// shelf x axis is world y; a point 1 along shelf x sits at world (5, 1, 0).
	p, err := tree.TransformPoint(v3.Vec{X: 1}, shelf, tree.Root())
	if err != nil {
		t.Fatalf("TransformPoint: %v", err)
	}
	if !vecNear(p, v3.Vec{X: 5, Y: 1}) {
		t.Errorf("got %v, want (5, 1, 0)", p)
	}

	m, err := tree.Transform(top, shelf)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if IsTranslation(m) {
		t.Error("top_T_shelf reported as translation-only, want rotation")
	}
	got := m.MulPosition(v3.Vec{X: 1})
	if !vecNear(got, v3.Vec{X: 4, Y: -1, Z: -0.75}) {
		t.Errorf("top_T_shelf * (1,0,0) = %v, want (4, -1, -0.75)", got)
	}
}

func TestTransformIdentityAndMissing(t *testing.T) {
	tree := newKitchen(t)
	table := tree.MustFrame("table")

	m, err := tree.Transform(table, table)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if !IsTranslation(m) || !vecNear(Origin(m), v3.Vec{}) {
		t.Error("Transform(f, f) is not the identity")
	}

	other := NewTree("other")
	if _, err := tree.Transform(table, other.Root()); !errors.Is(err, ErrFrameNotFound) {
		t.Errorf("foreign source error = %v, want ErrFrameNotFound", err)
	}
	if _, err := tree.Transform(nil, table); !errors.Is(err, ErrFrameNotFound) {
		t.Errorf("nil target error = %v, want ErrFrameNotFound", err)
	}
}

func TestFramesSorted(t *testing.T) {
	tree := newKitchen(t)
	frames := tree.Frames()
	want := []string{"shelf", "table", "top", "world"}
	if len(frames) != len(want) {
		t.Fatalf("Frames() returned %d frames, want %d", len(frames), len(want))
	}
	for i, f := range frames {
		if f.Name() != want[i] {
			t.Errorf("Frames()[%d] = %s, want %s", i, f.Name(), want[i])
		}
	}
	if tree.Len() != 4 {
		t.Errorf("Len() = %d, want 4", tree.Len())
	}
}

func TestValidate(t *testing.T) {
	tree := newKitchen(t)
	if errs := tree.Validate(); len(errs) != 0 {
		t.Fatalf("Validate() on a healthy tree = %v", errs)
	}

	// Corrupt the tree by hand: make table its own grandparent.
	table := tree.MustFrame("table")
	top := tree.MustFrame("top")
	table.parent = top

	errs := tree.Validate()
	if len(errs) == 0 {
		t.Fatal("Validate() found no problems in a cyclic tree")
	}
}
