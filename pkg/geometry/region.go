package geometry

import (
	"fmt"
	"sync"

	"github.com/chazu/strata/pkg/kernel"
	"github.com/chazu/strata/pkg/kinematics"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// Region is a named area in a frame, reconstructed from a point set. A
// support surface is a Region built from the vertices of the faces that
// passed extraction.
type Region struct {
	name   string
	frame  *kinematics.Frame
	points []v3.Vec
	source *kernel.Mesh

	once sync.Once
	mesh *kernel.Mesh
}

// NewRegion returns a region over points in frame. source, when given, is
// the mesh the points came from and becomes the region surface.
func NewRegion(name string, frame *kinematics.Frame, points []v3.Vec, source *kernel.Mesh) (*Region, error) {
	if frame == nil {
		return nil, precondition("region %q has no frame", name)
	}
	if len(points) == 0 {
		return nil, precondition("region %q has no points", name)
	}
	return &Region{name: name, frame: frame, points: append([]v3.Vec(nil), points...), source: source}, nil
}

// RegionFromPoints builds a region from points that must all be in frame.
func RegionFromPoints(name string, points []Point, frame *kinematics.Frame) (*Region, error) {
	for i, p := range points {
		if p.Frame != frame {
			return nil, precondition("point %d of region %q is in %s, not %s", i, name, p.Frame.Name(), frame.Name())
		}
	}
	return NewRegion(name, frame, lo.Map(points, func(p Point, _ int) v3.Vec { return p.Vec }), nil)
}

func (r *Region) Name() string             { return r.name }
func (r *Region) Frame() *kinematics.Frame { return r.frame }
func (r *Region) String() string           { return fmt.Sprintf("%s@%s", r.name, r.frame.Name()) }

// Points returns a copy of the points in the region frame.
func (r *Region) Points() []v3.Vec {
	return append([]v3.Vec(nil), r.points...)
}

// Mesh returns the region surface: the source mesh when there is one,
// otherwise a fan over the XY convex hull of the points at their mean
// height. It is built once.
func (r *Region) Mesh() *kernel.Mesh {
	r.once.Do(func() {
		if r.source != nil {
			r.mesh = r.source
			return
		}
		r.mesh = hullFan(r.points)
	})
	return r.mesh
}

// Area returns the area of the region surface.
func (r *Region) Area() float64 {
	return r.Mesh().Area()
}

// BoundingBox returns the bounds of the points.
func (r *Region) BoundingBox() BoundingBox {
	lower, upper := r.points[0], r.points[0]
	for _, p := range r.points[1:] {
		lower = lower.Min(p)
		upper = upper.Max(p)
	}
	return boxFromVecs(lower, upper, r.frame)
}

// hullFan triangulates the XY convex hull of points at their mean height.
// Fewer than three hull corners give an empty mesh.
func hullFan(points []v3.Vec) *kernel.Mesh {
	z := lo.SumBy(points, func(p v3.Vec) float64 { return p.Z }) / float64(len(points))
	ring := convexHullXY(points)
	m := &kernel.Mesh{}
	if len(ring) < 3 {
		return m
	}
	for _, c := range ring {
		m.Vertices = append(m.Vertices, v3.Vec{X: c.X(), Y: c.Y(), Z: z})
	}
	for i := 1; i+1 < len(ring); i++ {
		m.Faces = append(m.Faces, [3]int{0, i, i + 1})
	}
	return m
}

// convexHullXY returns the open hull ring of the XY projection, counter
// clockwise so that the fan faces +Z. Collinear input has no ring.
func convexHullXY(points []v3.Vec) []geom.Coord {
	flat := make([]float64, 0, 2*len(points))
	for _, p := range points {
		flat = append(flat, p.X, p.Y)
	}
	poly, ok := xy.ConvexHull(geom.NewMultiPointFlat(geom.XY, flat)).(*geom.Polygon)
	if !ok || poly.NumLinearRings() == 0 {
		return nil
	}
	ring := poly.LinearRing(0).Coords()
	if n := len(ring); n > 1 && ring[0].Equal(geom.XY, ring[n-1]) {
		ring = ring[:n-1]
	}
	if signedArea(ring) < 0 {
		ring = lo.Reverse(ring)
	}
	return ring
}

// signedArea is positive for counter-clockwise rings.
func signedArea(ring []geom.Coord) float64 {
	var a float64
	for i, c := range ring {
		n := ring[(i+1)%len(ring)]
		a += c.X()*n.Y() - n.X()*c.Y()
	}
	return a / 2
}
