package kernel

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/dhconnelly/rtreego"
	"github.com/pkg/errors"
)

const (
	// rectEpsilon gives flat faces a non-zero extent in the R-tree.
	rectEpsilon = 1e-9
	// hitEpsilon discards hits at (or numerically behind) the ray origin.
	hitEpsilon = 1e-12
	// barycentricSlack accepts hits that land exactly on a shared edge.
	barycentricSlack = 1e-12
)

// Hit is the nearest intersection of one ray with the mesh.
type Hit struct {
	Point    v3.Vec
	Face     int     // index of the face that was hit
	Ray      int     // index of the ray in the Cast input
	Distance float64 // distance from the ray origin to Point
}

// faceEntry indexes one face in the R-tree.
type faceEntry struct {
	face int
	rect rtreego.Rect
}

// Bounds implements the rtreego.Spatial interface.
func (f *faceEntry) Bounds() rtreego.Rect {
	return f.rect
}

// RayCaster answers nearest-hit ray queries against a fixed mesh. It is safe
// for concurrent use once built.
type RayCaster struct {
	mesh   *Mesh
	tree   *rtreego.Rtree
	bounds sdf.Box3
}

// NewRayCaster indexes the faces of m.
func NewRayCaster(m *Mesh) *RayCaster {
	rc := &RayCaster{mesh: m, tree: rtreego.NewTree(3, 4, 16), bounds: m.Bounds()}
	for i := range m.Faces {
		tri := m.Triangle(i)
		lo := tri[0].Min(tri[1]).Min(tri[2])
		hi := tri[0].Max(tri[1]).Max(tri[2])
		rect, err := boxRect(lo, hi)
		if err != nil {
			continue
		}
		rc.tree.Insert(&faceEntry{face: i, rect: rect})
	}
	return rc
}

// boxRect converts min/max corners into an R-tree rectangle.
func boxRect(lo, hi v3.Vec) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{lo.X, lo.Y, lo.Z},
		[]float64{
			math.Max(hi.X-lo.X, rectEpsilon),
			math.Max(hi.Y-lo.Y, rectEpsilon),
			math.Max(hi.Z-lo.Z, rectEpsilon),
		},
	)
}

// Cast intersects every ray with the mesh and returns the nearest hit per
// ray. Rays that hit nothing are absent from the result. Hits are ordered by
// ray index.
func (rc *RayCaster) Cast(origins, directions []v3.Vec) ([]Hit, error) {
	if len(origins) != len(directions) {
		return nil, errors.Errorf("kernel: %d ray origins but %d directions", len(origins), len(directions))
	}
	var hits []Hit
	for i := range origins {
		if directions[i].Length() == 0 {
			return nil, errors.Errorf("kernel: ray %d has a zero direction", i)
		}
		if h, ok := rc.CastOne(origins[i], directions[i]); ok {
			h.Ray = i
			hits = append(hits, h)
		}
	}
	return hits, nil
}

// CastOne returns the nearest hit of a single ray, if any.
func (rc *RayCaster) CastOne(origin, direction v3.Vec) (Hit, bool) {
	if rc.mesh.IsEmpty() {
		return Hit{}, false
	}
	dir := direction.Normalize()
	tMin, tMax, ok := slab(origin, dir, rc.bounds)
	if !ok {
		return Hit{}, false
	}
	a := origin.Add(dir.MulScalar(tMin))
	b := origin.Add(dir.MulScalar(tMax))
	query, err := boxRect(a.Min(b).SubScalar(rectEpsilon), a.Max(b).AddScalar(rectEpsilon))
	if err != nil {
		return Hit{}, false
	}

	best := Hit{Distance: math.Inf(1), Face: -1}
	for _, s := range rc.tree.SearchIntersect(query) {
		fe := s.(*faceEntry)
		t, ok := intersectTriangle(origin, dir, rc.mesh.Triangle(fe.face))
		if !ok {
			continue
		}
		if t < best.Distance || (t == best.Distance && fe.face < best.Face) {
			best = Hit{Point: origin.Add(dir.MulScalar(t)), Face: fe.face, Distance: t}
		}
	}
	if best.Face < 0 {
		return Hit{}, false
	}
	return best, true
}

// slab clips the ray origin + t*dir (t >= 0) against box, returning the
// parameter range inside it.
func slab(origin, dir v3.Vec, box sdf.Box3) (float64, float64, bool) {
	tMin, tMax := 0.0, math.Inf(1)
	o := [3]float64{origin.X, origin.Y, origin.Z}
	d := [3]float64{dir.X, dir.Y, dir.Z}
	lo := [3]float64{box.Min.X, box.Min.Y, box.Min.Z}
	hi := [3]float64{box.Max.X, box.Max.Y, box.Max.Z}
	for k := 0; k < 3; k++ {
		if d[k] == 0 {
			if o[k] < lo[k] || o[k] > hi[k] {
				return 0, 0, false
			}
			continue
		}
		t1 := (lo[k] - o[k]) / d[k]
		t2 := (hi[k] - o[k]) / d[k]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, 0, false
		}
	}
	return tMin, tMax, true
}

// intersectTriangle is the Möller–Trumbore test. Both sides of the triangle
// count as hits. dir must be a unit vector so t is a distance.
func intersectTriangle(origin, dir v3.Vec, tri sdf.Triangle3) (float64, bool) {
	e1 := tri[1].Sub(tri[0])
	e2 := tri[2].Sub(tri[0])
	p := dir.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < 1e-15 {
		return 0, false
	}
	inv := 1 / det
	s := origin.Sub(tri[0])
	u := s.Dot(p) * inv
	if u < -barycentricSlack || u > 1+barycentricSlack {
		return 0, false
	}
	q := s.Cross(e1)
	v := dir.Dot(q) * inv
	if v < -barycentricSlack || u+v > 1+barycentricSlack {
		return 0, false
	}
	t := e2.Dot(q) * inv
	if t <= hitEpsilon {
		return 0, false
	}
	return t, true
}
