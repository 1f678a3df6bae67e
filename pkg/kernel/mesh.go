package kernel

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// weldQuantum is the grid used to merge coincident vertices of triangle soup.
const weldQuantum = 1e-9

// Mesh is an indexed triangle mesh. Faces hold three vertex indices in
// counter-clockwise order when seen from outside, so the right-hand normal
// points outward.
type Mesh struct {
	Vertices []v3.Vec
	Faces    [][3]int
	PartName string // which body or shape this came from
}

// NewMesh validates the face indices and returns the mesh.
func NewMesh(vertices []v3.Vec, faces [][3]int) (*Mesh, error) {
	for i, f := range faces {
		for _, idx := range f {
			if idx < 0 || idx >= len(vertices) {
				return nil, errors.Errorf("kernel: face %d references vertex %d of %d", i, idx, len(vertices))
			}
		}
	}
	return &Mesh{Vertices: vertices, Faces: faces}, nil
}

type weldKey [3]int64

func quantize(v v3.Vec) weldKey {
	return weldKey{
		int64(math.Round(v.X / weldQuantum)),
		int64(math.Round(v.Y / weldQuantum)),
		int64(math.Round(v.Z / weldQuantum)),
	}
}

// FromTriangles builds an indexed mesh from triangle soup, merging vertices
// that coincide so that neighbouring faces share edges.
func FromTriangles(triangles []*sdf.Triangle3) *Mesh {
	m := &Mesh{
		Vertices: make([]v3.Vec, 0, len(triangles)),
		Faces:    make([][3]int, 0, len(triangles)),
	}
	index := make(map[weldKey]int)
	for _, tri := range triangles {
		var f [3]int
		for j := 0; j < 3; j++ {
			v := tri[j]
			k := quantize(v)
			idx, ok := index[k]
			if !ok {
				idx = len(m.Vertices)
				index[k] = idx
				m.Vertices = append(m.Vertices, v)
			}
			f[j] = idx
		}
		m.Faces = append(m.Faces, f)
	}
	return m
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// IsEmpty returns true if the mesh has no faces.
func (m *Mesh) IsEmpty() bool {
	return m == nil || len(m.Faces) == 0
}

// Triangle returns the corner positions of face i.
func (m *Mesh) Triangle(i int) sdf.Triangle3 {
	f := m.Faces[i]
	return sdf.Triangle3{m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]}
}

// faceCross returns (b-a) × (c-a) for face i; its length is twice the area.
func (m *Mesh) faceCross(i int) v3.Vec {
	f := m.Faces[i]
	a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
	return b.Sub(a).Cross(c.Sub(a))
}

// FaceNormal returns the unit normal of face i, or the zero vector for a
// degenerate face.
func (m *Mesh) FaceNormal(i int) v3.Vec {
	n := m.faceCross(i)
	l := n.Length()
	if l == 0 {
		return v3.Vec{}
	}
	return n.DivScalar(l)
}

// FaceNormals returns the unit normal of every face.
func (m *Mesh) FaceNormals() []v3.Vec {
	out := make([]v3.Vec, len(m.Faces))
	for i := range m.Faces {
		out[i] = m.FaceNormal(i)
	}
	return out
}

// FaceArea returns the area of face i.
func (m *Mesh) FaceArea(i int) float64 {
	return m.faceCross(i).Length() / 2
}

// Area returns the total surface area.
func (m *Mesh) Area() float64 {
	var total float64
	for i := range m.Faces {
		total += m.FaceArea(i)
	}
	return total
}

// FaceCentroid returns the centroid of face i.
func (m *Mesh) FaceCentroid(i int) v3.Vec {
	f := m.Faces[i]
	return m.Vertices[f[0]].Add(m.Vertices[f[1]]).Add(m.Vertices[f[2]]).DivScalar(3)
}

// Bounds returns the axis-aligned bounds of the referenced vertices.
// An empty mesh has zero bounds.
func (m *Mesh) Bounds() sdf.Box3 {
	if m.IsEmpty() {
		return sdf.Box3{}
	}
	lo := m.Vertices[m.Faces[0][0]]
	hi := lo
	for _, f := range m.Faces {
		for _, idx := range f {
			lo = lo.Min(m.Vertices[idx])
			hi = hi.Max(m.Vertices[idx])
		}
	}
	return sdf.Box3{Min: lo, Max: hi}
}

// Submesh returns a new mesh made of the given faces, in the given order.
// Only the vertices those faces reference are kept.
func (m *Mesh) Submesh(faces []int) *Mesh {
	out := &Mesh{PartName: m.PartName, Faces: make([][3]int, 0, len(faces))}
	remap := make(map[int]int)
	for _, fi := range faces {
		var f [3]int
		for j, idx := range m.Faces[fi] {
			n, ok := remap[idx]
			if !ok {
				n = len(out.Vertices)
				remap[idx] = n
				out.Vertices = append(out.Vertices, m.Vertices[idx])
			}
			f[j] = n
		}
		out.Faces = append(out.Faces, f)
	}
	return out
}

// Transform returns a copy of the mesh with every vertex mapped through t.
func (m *Mesh) Transform(t sdf.M44) *Mesh {
	out := &Mesh{PartName: m.PartName, Vertices: make([]v3.Vec, len(m.Vertices)), Faces: copyFaces(m.Faces)}
	for i, v := range m.Vertices {
		out.Vertices[i] = t.MulPosition(v)
	}
	return out
}

// Scale returns a copy of the mesh scaled per axis about the origin.
func (m *Mesh) Scale(s v3.Vec) *Mesh {
	out := &Mesh{PartName: m.PartName, Vertices: make([]v3.Vec, len(m.Vertices)), Faces: copyFaces(m.Faces)}
	for i, v := range m.Vertices {
		out.Vertices[i] = v3.Vec{X: v.X * s.X, Y: v.Y * s.Y, Z: v.Z * s.Z}
	}
	// A mirroring scale flips the winding; restore outward normals.
	if s.X*s.Y*s.Z < 0 {
		for i, f := range out.Faces {
			out.Faces[i] = [3]int{f[0], f[2], f[1]}
		}
	}
	return out
}

// Concatenate joins meshes into one without merging vertices.
func Concatenate(meshes ...*Mesh) *Mesh {
	out := &Mesh{}
	for _, m := range meshes {
		if m == nil {
			continue
		}
		offset := len(out.Vertices)
		out.Vertices = append(out.Vertices, m.Vertices...)
		for _, f := range m.Faces {
			out.Faces = append(out.Faces, [3]int{f[0] + offset, f[1] + offset, f[2] + offset})
		}
	}
	return out
}

func copyFaces(faces [][3]int) [][3]int {
	out := make([][3]int, len(faces))
	copy(out, faces)
	return out
}

// boxFaces lists the twelve outward-wound triangles of a box whose corner i
// has x from bit 0, y from bit 1 and z from bit 2.
var boxFaces = [][3]int{
	{0, 2, 3}, {0, 3, 1}, // -z
	{4, 5, 7}, {4, 7, 6}, // +z
	{0, 1, 5}, {0, 5, 4}, // -y
	{2, 6, 7}, {2, 7, 3}, // +y
	{0, 4, 6}, {0, 6, 2}, // -x
	{1, 3, 7}, {1, 7, 5}, // +x
}

// BoxMesh returns the exact twelve-triangle surface of a box with the given
// edge lengths centered on the origin.
func BoxMesh(size v3.Vec) *Mesh {
	h := size.MulScalar(0.5)
	m := &Mesh{Vertices: make([]v3.Vec, 8), Faces: copyFaces(boxFaces)}
	for i := range m.Vertices {
		v := h.MulScalar(-1)
		if i&1 != 0 {
			v.X = h.X
		}
		if i&2 != 0 {
			v.Y = h.Y
		}
		if i&4 != 0 {
			v.Z = h.Z
		}
		m.Vertices[i] = v
	}
	return m
}
