package tessellate_test

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/strata/pkg/geometry"
	"github.com/chazu/strata/pkg/kinematics"
	"github.com/chazu/strata/pkg/tessellate"
)

// newScene returns a tree with a body frame lifted 1m above the root.
func newScene(t *testing.T) (*kinematics.Tree, *kinematics.Frame) {
	t.Helper()
	tree := kinematics.NewTree("world")
	body, err := tree.AddFrame("cabinet", tree.Root(), kinematics.Translation(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}
	return tree, body
}

func TestSingleBox(t *testing.T) {
	_, body := newScene(t)
	shelf := geometry.NewBox(geometry.Scale{X: 0.6, Y: 0.3, Z: 0.018}, geometry.Identity(body))

	meshes, err := tessellate.Tessellate([]geometry.Shape{shelf}, body)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}

	m := meshes[0]
	if m.IsEmpty() {
		t.Fatal("mesh should not be empty")
	}
	if m.PartName != "box#0" {
		t.Errorf("expected PartName %q, got %q", "box#0", m.PartName)
	}
	if m.TriangleCount() != 12 {
		t.Errorf("expected 12 triangles, got %d", m.TriangleCount())
	}
}

func TestPartWithOrigin(t *testing.T) {
	_, body := newScene(t)
	shelf := geometry.NewBox(geometry.Scale{X: 0.1, Y: 0.05, Z: 0.01}, geometry.FromXYZRPY(0.2, 0.1, 0.05, 0, 0, 0, body))

	meshes, err := tessellate.Tessellate([]geometry.Shape{shelf}, body)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	b := meshes[0].Bounds()
	want := [6]float64{0.15, 0.075, 0.045, 0.25, 0.125, 0.055}
	got := [6]float64{b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("bounds[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestShapeInOtherFrame(t *testing.T) {
	tree, body := newScene(t)
	// A box defined in the root frame at z=1.5 sits 0.5 above the body origin.
	lid := geometry.NewBox(geometry.Scale{X: 1, Y: 1, Z: 0.1}, geometry.FromXYZRPY(0, 0, 1.5, 0, 0, 0, tree.Root()))

	m, err := tessellate.Combined([]geometry.Shape{lid}, body)
	if err != nil {
		t.Fatalf("Combined failed: %v", err)
	}
	b := m.Bounds()
	if math.Abs(b.Min.Z-0.45) > 1e-9 || math.Abs(b.Max.Z-0.55) > 1e-9 {
		t.Errorf("lid z range = [%v, %v], want [0.45, 0.55]", b.Min.Z, b.Max.Z)
	}
}

func TestAssembly(t *testing.T) {
	_, body := newScene(t)
	shapes := []geometry.Shape{
		geometry.NewBox(geometry.Scale{X: 0.018, Y: 0.3, Z: 0.4}, geometry.FromXYZRPY(0, 0, 0.2, 0, 0, 0, body)),
		geometry.NewBox(geometry.Scale{X: 0.018, Y: 0.3, Z: 0.4}, geometry.FromXYZRPY(0.582, 0, 0.2, 0, 0, 0, body)),
		geometry.NewBox(geometry.Scale{X: 0.6, Y: 0.3, Z: 0.018}, geometry.FromXYZRPY(0.291, 0, 0.409, 0, 0, 0, body)),
	}

	meshes, err := tessellate.Tessellate(shapes, body)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 3 {
		t.Fatalf("expected 3 meshes, got %d", len(meshes))
	}

	names := map[string]bool{}
	for _, m := range meshes {
		names[m.PartName] = true
	}
	for _, want := range []string{"box#0", "box#1", "box#2"} {
		if !names[want] {
			t.Errorf("missing mesh for %q", want)
		}
	}

	combined, err := tessellate.Combined(shapes, body)
	if err != nil {
		t.Fatalf("Combined failed: %v", err)
	}
	if combined.TriangleCount() != 36 {
		t.Errorf("combined triangles = %d, want 36", combined.TriangleCount())
	}
	if n := len(combined.Split()); n != 3 {
		t.Errorf("combined components = %d, want 3", n)
	}
}

func TestEmptyShapes(t *testing.T) {
	_, body := newScene(t)
	meshes, err := tessellate.Tessellate(nil, body)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 0 {
		t.Fatalf("expected 0 meshes, got %d", len(meshes))
	}
	m, err := tessellate.Combined(nil, body)
	if err != nil || !m.IsEmpty() {
		t.Fatalf("Combined(nil) = %v, %v", m, err)
	}
}

func TestErrors(t *testing.T) {
	_, body := newScene(t)
	other := kinematics.NewTree("elsewhere")

	if _, err := tessellate.Tessellate(nil, nil); !errors.Is(err, geometry.ErrPrecondition) {
		t.Errorf("nil frame error = %v", err)
	}

	foreign := geometry.NewBox(geometry.UnitScale(), geometry.Identity(other.Root()))
	if _, err := tessellate.Tessellate([]geometry.Shape{foreign}, body); !errors.Is(err, kinematics.ErrFrameNotFound) {
		t.Errorf("foreign frame error = %v", err)
	}

	broken := geometry.NewSphere(-1, geometry.Identity(body))
	if _, err := tessellate.Combined([]geometry.Shape{broken}, body); !errors.Is(err, geometry.ErrPrecondition) {
		t.Errorf("bad sphere error = %v", err)
	}

	orphan := geometry.NewBox(geometry.UnitScale(), geometry.Identity(nil))
	if _, err := tessellate.Tessellate([]geometry.Shape{orphan}, body); !errors.Is(err, geometry.ErrPrecondition) {
		t.Errorf("frameless shape error = %v", err)
	}
}
