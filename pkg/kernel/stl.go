package kernel

import (
	"io"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/hschendel/stl"
	"github.com/pkg/errors"
)

// LoadSTL reads a binary or ASCII STL file.
func LoadSTL(path string) (*Mesh, error) {
	solid, err := stl.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "kernel: read %s", path)
	}
	return fromSolid(solid), nil
}

// ReadSTL decodes an STL stream. Coincident vertices are welded so that the
// result supports face adjacency queries. Stored normals are ignored; the
// winding defines the face orientation.
func ReadSTL(r io.Reader) (*Mesh, error) {
	solid, err := stl.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "kernel: read stl")
	}
	return fromSolid(solid), nil
}

func fromSolid(solid *stl.Solid) *Mesh {
	tris := make([]*sdf.Triangle3, len(solid.Triangles))
	for i, t := range solid.Triangles {
		var tri sdf.Triangle3
		for j, p := range t.Vertices {
			tri[j] = v3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
		}
		tris[i] = &tri
	}
	return FromTriangles(tris)
}

func stlVec(v v3.Vec) stl.Vec3 {
	return stl.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

// WriteSTL encodes m as binary STL.
func WriteSTL(w io.Writer, m *Mesh) error {
	solid := &stl.Solid{
		Name:      "strata " + m.PartName,
		Triangles: make([]stl.Triangle, len(m.Faces)),
	}
	for i := range m.Faces {
		tri := m.Triangle(i)
		solid.Triangles[i] = stl.Triangle{
			Normal:   stlVec(m.FaceNormal(i)),
			Vertices: [3]stl.Vec3{stlVec(tri[0]), stlVec(tri[1]), stlVec(tri[2])},
		}
	}
	if err := solid.WriteAll(w); err != nil {
		return errors.Wrap(err, "kernel: write stl")
	}
	return nil
}
