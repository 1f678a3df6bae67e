package world

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/chazu/strata/pkg/geometry"
	"github.com/chazu/strata/pkg/kinematics"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// newTableWorld builds a table: a top 0.75m above its frame and four legs.
func newTableWorld(t *testing.T, opts ...Option) (*World, *Body) {
	t.Helper()
	w := New("kitchen", opts...)
	shapes := []geometry.Shape{
		geometry.NewBox(geometry.Scale{X: 1.2, Y: 0.8, Z: 0.04}, geometry.FromXYZRPY(0, 0, 0.73, 0, 0, 0, nil)),
	}
	for _, xy := range [][2]float64{{-0.55, -0.35}, {0.55, -0.35}, {-0.55, 0.35}, {0.55, 0.35}} {
		shapes = append(shapes,
			geometry.NewBox(geometry.Scale{X: 0.05, Y: 0.05, Z: 0.71}, geometry.FromXYZRPY(xy[0], xy[1], 0.355, 0, 0, 0, nil)))
	}
	table, err := w.AddBody("table", w.Root(), kinematics.Translation(2, 0, 0), shapes...)
	if err != nil {
		t.Fatal(err)
	}
	return w, table
}

func TestAddBody(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	w, table := newTableWorld(t, WithLogger(zap.New(core)))

	if w.Body("table") != table {
		t.Error("Body() lookup failed")
	}
	if w.Body("chair") != nil {
		t.Error("Body() of an unknown name should be nil")
	}
	if table.ID == uuid.Nil {
		t.Error("body has no ID")
	}
	if table.Frame().Parent() != w.Root() {
		t.Error("body frame is not under the root")
	}
	for i, s := range table.Collision() {
		if s.Origin().Frame != table.Frame() {
			t.Errorf("shape %d not anchored to the body frame", i)
		}
	}
	if logs.FilterMessage("body added").Len() != 1 {
		t.Error("body registration was not logged")
	}

	if _, err := w.AddBody("table", w.Root(), kinematics.Translation(0, 0, 0)); err == nil {
		t.Error("duplicate body should fail")
	}
	if _, err := w.AddBody("ghost", nil, kinematics.Translation(0, 0, 0)); err == nil {
		t.Error("body without parent should fail")
	}

	cup, err := w.AddBody("cup", table.Frame(), kinematics.Translation(0, 0, 0.75),
		geometry.NewCylinder(0.08, 0.1, geometry.Identity(nil)))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"cup", "table"}, w.BodyNames()); diff != "" {
		t.Errorf("BodyNames() mismatch (-want +got):\n%s", diff)
	}
	if got := w.Bodies(); len(got) != 2 || got[1] != cup {
		t.Errorf("Bodies() = %v", got)
	}
}

func TestCombinedMesh(t *testing.T) {
	_, table := newTableWorld(t)
	m, err := table.CombinedMesh()
	if err != nil {
		t.Fatalf("CombinedMesh() error = %v", err)
	}
	if m.TriangleCount() != 5*12 {
		t.Errorf("TriangleCount() = %d, want 60", m.TriangleCount())
	}
	if m.PartName != "table" {
		t.Errorf("PartName = %q", m.PartName)
	}
	again, _ := table.CombinedMesh()
	if again != m {
		t.Error("CombinedMesh() is not memoized")
	}
	b := m.Bounds()
	if math.Abs(b.Max.Z-0.75) > 1e-9 || math.Abs(b.Min.Z) > 1e-9 {
		t.Errorf("table z range = [%v, %v], want [0, 0.75]", b.Min.Z, b.Max.Z)
	}
}

func TestBoundingBoxCollection(t *testing.T) {
	w, table := newTableWorld(t)
	c, err := table.BoundingBoxCollection()
	if err != nil {
		t.Fatalf("BoundingBoxCollection() error = %v", err)
	}
	if c.Len() != 5 || c.Frame() != table.Frame() {
		t.Fatalf("collection = %d boxes in %v", c.Len(), c.Frame())
	}
	top := c.Boxes()[0]
	want := [6]float64{-0.6, -0.4, 0.71, 0.6, 0.4, 0.75}
	if diff := cmp.Diff(want, top.Key(), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("top box mismatch (-want +got):\n%s", diff)
	}

	inWorld, err := c.TransformToFrame(w.Root())
	if err != nil {
		t.Fatal(err)
	}
	if got := inWorld.Boxes()[0].MinX; math.Abs(got-1.4) > 1e-9 {
		t.Errorf("top MinX in world = %v, want 1.4", got)
	}

	empty, err := w.AddBody("marker", w.Root(), kinematics.Translation(0, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	ec, err := empty.BoundingBoxCollection()
	if err != nil || ec.Len() != 0 {
		t.Errorf("empty body collection = %v, %v", ec, err)
	}
	if _, err := empty.CombinedMesh(); err != nil {
		t.Errorf("empty body CombinedMesh() error = %v", err)
	}
}

func TestForeignShapeFrame(t *testing.T) {
	w := New("lab")
	other := kinematics.NewTree("elsewhere")
	b, err := w.AddBody("crate", w.Root(), kinematics.Translation(0, 0, 0),
		geometry.NewBox(geometry.UnitScale(), geometry.Identity(other.Root())))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.BoundingBoxCollection(); !errors.Is(err, kinematics.ErrFrameNotFound) {
		t.Errorf("BoundingBoxCollection() error = %v, want ErrFrameNotFound", err)
	}
	if _, err := b.CombinedMesh(); err == nil {
		t.Error("CombinedMesh() with a foreign frame should fail")
	}
}

func TestBoundingBoxCollectionMeshFailure(t *testing.T) {
	w := New("lab")
	missing := geometry.NewFileMesh(filepath.Join(t.TempDir(), "vase.stl"), geometry.UnitScale(), geometry.Identity(nil))
	b, err := w.AddBody("vase", w.Root(), kinematics.Translation(1, 0, 0), missing)
	if err != nil {
		t.Fatal(err)
	}
	if c, err := b.BoundingBoxCollection(); err == nil {
		t.Errorf("BoundingBoxCollection() = %v, want an error", c.Boxes())
	}
}
