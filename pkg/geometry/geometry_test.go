package geometry

import (
	"math"
	"testing"

	"github.com/chazu/strata/pkg/kinematics"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

type testFrames struct {
	tree    *kinematics.Tree
	world   *kinematics.Frame
	shifted *kinematics.Frame // world translated by (1, 2, 3)
	turned  *kinematics.Frame // world rotated 90 degrees about Z
	tilted  *kinematics.Frame // world rotated 45 degrees about Z, at (5, 0, 0)
}

func newTestFrames(t *testing.T) testFrames {
	t.Helper()
	tree := kinematics.NewTree("world")
	f := testFrames{tree: tree, world: tree.Root()}
	var err error
	if f.shifted, err = tree.AddFrame("shifted", f.world, kinematics.Translation(1, 2, 3)); err != nil {
		t.Fatal(err)
	}
	if f.turned, err = tree.AddFrame("turned", f.world, kinematics.Pose(v3.Vec{}, v3.Vec{Z: math.Pi / 2})); err != nil {
		t.Fatal(err)
	}
	if f.tilted, err = tree.AddFrame("tilted", f.world, kinematics.Pose(v3.Vec{X: 5}, v3.Vec{Z: math.Pi / 4})); err != nil {
		t.Fatal(err)
	}
	return f
}

func mustBox(t *testing.T, minX, minY, minZ, maxX, maxY, maxZ float64, frame *kinematics.Frame) BoundingBox {
	t.Helper()
	b, err := NewBoundingBox(minX, minY, minZ, maxX, maxY, maxZ, frame)
	if err != nil {
		t.Fatalf("NewBoundingBox() error = %v", err)
	}
	return b
}

func localBox(t *testing.T, s Shape) BoundingBox {
	t.Helper()
	b, err := s.LocalBoundingBox()
	if err != nil {
		t.Fatalf("LocalBoundingBox() error = %v", err)
	}
	return b
}

func checkKey(t *testing.T, got BoundingBox, want [6]float64) {
	t.Helper()
	if diff := cmp.Diff(want, got.Key(), approx); diff != "" {
		t.Errorf("box bounds mismatch (-want +got):\n%s", diff)
	}
}
