// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"

	"github.com/chazu/strata/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// defaultMeshCells controls marching cubes tessellation resolution along the
// longest side of a solid. Collision primitives only need a coarse surface.
const defaultMeshCells = 64

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid. Boxes remember
// their size so they can be meshed exactly.
type sdfxSolid struct {
	s   sdf.SDF3
	box *v3.Vec
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// Option configures an SdfxKernel.
type Option func(*SdfxKernel)

// WithMeshCells sets the marching cubes resolution.
func WithMeshCells(n int) Option {
	return func(k *SdfxKernel) {
		if n > 0 {
			k.cells = n
		}
	}
}

// New returns a new SdfxKernel.
func New(opts ...Option) *SdfxKernel {
	k := &SdfxKernel{cells: defaultMeshCells}
	for _, o := range opts {
		o(k)
	}
	return k
}

// MeshCells reports the marching cubes resolution.
func (k *SdfxKernel) MeshCells() int {
	return k.cells
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Box creates a box with the given dimensions centered on the origin.
func (k *SdfxKernel) Box(x, y, z float64) kernel.Solid {
	size := v3.Vec{X: x, Y: y, Z: z}
	s, err := sdf.Box3D(size, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Box3D: %v", err))
	}
	return &sdfxSolid{s: s, box: &size}
}

// Sphere creates a sphere centered on the origin.
func (k *SdfxKernel) Sphere(radius float64) kernel.Solid {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Sphere3D: %v", err))
	}
	return wrap(s)
}

// Cylinder creates a cylinder with the given height and radius, centered on
// the origin with its axis along Z. The segments parameter is ignored since
// SDF represents smooth surfaces.
func (k *SdfxKernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Cylinder3D: %v", err))
	}
	return wrap(s)
}

// ToMesh converts a solid to an indexed triangle mesh. Boxes are emitted
// exactly; everything else goes through marching cubes, which rounds sharp
// edges and can miss walls thinner than one cell.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	ss, ok := s.(*sdfxSolid)
	if !ok {
		return nil, errors.Errorf("sdfx: solid %T was not built by this kernel", s)
	}
	if ss.box != nil {
		return kernel.BoxMesh(*ss.box), nil
	}

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(ss.s, renderer)
	if len(triangles) == 0 {
		return nil, errors.New("sdfx: tessellation produced no triangles")
	}
	return kernel.FromTriangles(triangles), nil
}
