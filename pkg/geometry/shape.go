package geometry

import (
	"sync"

	"github.com/chazu/strata/pkg/kernel"
	"github.com/chazu/strata/pkg/kernel/sdfx"
	"github.com/chazu/strata/pkg/kinematics"
	"github.com/pkg/errors"
)

// DefaultKernel tessellates primitives that were not given a kernel.
var DefaultKernel kernel.Kernel = sdfx.New()

// Shape is a piece of geometry placed in a frame. The surface mesh is built
// on first use and shared by every later caller.
type Shape interface {
	// Origin places the shape's own coordinates into the origin frame.
	Origin() Transform
	Color() Color
	// LocalBoundingBox is the box around the placed shape, expressed in
	// Origin().Frame. Mesh-backed shapes fail when their mesh does.
	LocalBoundingBox() (BoundingBox, error)
	// Mesh is the shape surface in the shape's own coordinates, centered
	// on the origin for primitives.
	Mesh() (*kernel.Mesh, error)
}

// ShapeOption configures a shape at construction.
type ShapeOption func(*shapeBase)

// WithColor sets the shape color.
func WithColor(c Color) ShapeOption {
	return func(s *shapeBase) { s.color = c }
}

// WithKernel sets the kernel used to tessellate a primitive.
func WithKernel(k kernel.Kernel) ShapeOption {
	return func(s *shapeBase) { s.kernel = k }
}

// shapeBase carries the fields every shape shares and the memoized mesh.
type shapeBase struct {
	origin Transform
	color  Color
	kernel kernel.Kernel

	once sync.Once
	mesh *kernel.Mesh
	err  error
}

func (s *shapeBase) init(origin Transform, opts []ShapeOption) {
	s.origin, s.color, s.kernel = origin, White(), DefaultKernel
	for _, o := range opts {
		o(s)
	}
}

func (s *shapeBase) Origin() Transform { return s.origin }
func (s *shapeBase) Color() Color      { return s.color }

// cachedMesh runs build once per shape.
func (s *shapeBase) cachedMesh(build func() (*kernel.Mesh, error)) (*kernel.Mesh, error) {
	s.once.Do(func() {
		s.mesh, s.err = build()
	})
	return s.mesh, s.err
}

// placedBox maps a box given in shape coordinates through the origin.
func (s *shapeBase) placedBox(local BoundingBox) BoundingBox {
	return local.transformed(s.origin.Matrix, s.origin.Frame)
}

// Box is a cuboid centered on its origin.
type Box struct {
	shapeBase
	Scale Scale // edge lengths
}

// NewBox returns a box with the given edge lengths.
func NewBox(size Scale, origin Transform, opts ...ShapeOption) *Box {
	b := &Box{Scale: size}
	b.init(origin, opts)
	return b
}

func (b *Box) LocalBoundingBox() (BoundingBox, error) {
	h := b.Scale.Vec().MulScalar(0.5)
	return b.placedBox(boxFromVecs(h.MulScalar(-1), h, nil)), nil
}

func (b *Box) Mesh() (*kernel.Mesh, error) {
	return b.cachedMesh(func() (*kernel.Mesh, error) {
		if b.Scale.X < 0 || b.Scale.Y < 0 || b.Scale.Z < 0 {
			return nil, precondition("box size %v must not be negative", b.Scale)
		}
		if b.Scale.X == 0 || b.Scale.Y == 0 || b.Scale.Z == 0 {
			// Planar boxes keep their degenerate faces.
			return kernel.BoxMesh(b.Scale.Vec()), nil
		}
		return b.kernel.ToMesh(b.kernel.Box(b.Scale.X, b.Scale.Y, b.Scale.Z))
	})
}

// Sphere is centered on its origin.
type Sphere struct {
	shapeBase
	Radius float64
}

// NewSphere returns a sphere with the given radius.
func NewSphere(radius float64, origin Transform, opts ...ShapeOption) *Sphere {
	s := &Sphere{Radius: radius}
	s.init(origin, opts)
	return s
}

func (s *Sphere) LocalBoundingBox() (BoundingBox, error) {
	r := s.Radius
	return s.placedBox(BoundingBox{MinX: -r, MinY: -r, MinZ: -r, MaxX: r, MaxY: r, MaxZ: r}), nil
}

func (s *Sphere) Mesh() (*kernel.Mesh, error) {
	return s.cachedMesh(func() (*kernel.Mesh, error) {
		if s.Radius <= 0 {
			return nil, precondition("sphere radius %g must be positive", s.Radius)
		}
		return s.kernel.ToMesh(s.kernel.Sphere(s.Radius))
	})
}

// Cylinder is centered on its origin with its axis along Z. Width is the
// diameter.
type Cylinder struct {
	shapeBase
	Width, Height float64
}

// cylinderSegments is passed to kernels that facet the cylinder wall.
const cylinderSegments = 16

// NewCylinder returns a cylinder with the given diameter and height.
func NewCylinder(width, height float64, origin Transform, opts ...ShapeOption) *Cylinder {
	c := &Cylinder{Width: width, Height: height}
	c.init(origin, opts)
	return c
}

func (c *Cylinder) LocalBoundingBox() (BoundingBox, error) {
	w, h := c.Width/2, c.Height/2
	return c.placedBox(BoundingBox{MinX: -w, MinY: -w, MinZ: -h, MaxX: w, MaxY: w, MaxZ: h}), nil
}

func (c *Cylinder) Mesh() (*kernel.Mesh, error) {
	return c.cachedMesh(func() (*kernel.Mesh, error) {
		if c.Width <= 0 || c.Height <= 0 {
			return nil, precondition("cylinder %gx%g must be positive", c.Width, c.Height)
		}
		return c.kernel.ToMesh(c.kernel.Cylinder(c.Height, c.Width/2, cylinderSegments))
	})
}

// FileMesh is a mesh loaded from an STL file on first use.
type FileMesh struct {
	shapeBase
	Filename string
	Scale    Scale
}

// NewFileMesh returns a shape backed by an STL file.
func NewFileMesh(filename string, scale Scale, origin Transform, opts ...ShapeOption) *FileMesh {
	f := &FileMesh{Filename: filename, Scale: scale}
	f.init(origin, opts)
	return f
}

func (f *FileMesh) Mesh() (*kernel.Mesh, error) {
	return f.cachedMesh(func() (*kernel.Mesh, error) {
		m, err := kernel.LoadSTL(f.Filename)
		if err != nil {
			return nil, err
		}
		return m.Scale(f.Scale.Vec()), nil
	})
}

// LocalBoundingBox loads the mesh if needed.
func (f *FileMesh) LocalBoundingBox() (BoundingBox, error) {
	return meshBoundingBox(f, &f.shapeBase)
}

// TriangleMesh wraps an in-memory mesh.
type TriangleMesh struct {
	shapeBase
	Data  *kernel.Mesh
	Scale Scale
}

// NewTriangleMesh returns a shape backed by data.
func NewTriangleMesh(data *kernel.Mesh, scale Scale, origin Transform, opts ...ShapeOption) *TriangleMesh {
	t := &TriangleMesh{Data: data, Scale: scale}
	t.init(origin, opts)
	return t
}

func (t *TriangleMesh) Mesh() (*kernel.Mesh, error) {
	return t.cachedMesh(func() (*kernel.Mesh, error) {
		if t.Data.IsEmpty() {
			return nil, precondition("triangle mesh has no faces")
		}
		return t.Data.Scale(t.Scale.Vec()), nil
	})
}

func (t *TriangleMesh) LocalBoundingBox() (BoundingBox, error) {
	return meshBoundingBox(t, &t.shapeBase)
}

func meshBoundingBox(s Shape, base *shapeBase) (BoundingBox, error) {
	m, err := s.Mesh()
	if err != nil {
		return BoundingBox{}, errors.Wrapf(err, "geometry: bounding %T", s)
	}
	if m.IsEmpty() {
		return BoundingBox{}, precondition("%T has an empty mesh", s)
	}
	bb := m.Bounds()
	return base.placedBox(boxFromVecs(bb.Min, bb.Max, nil)), nil
}

// PlacedMesh returns the shape mesh mapped through its origin, so that it is
// expressed in Origin().Frame.
func PlacedMesh(s Shape) (*kernel.Mesh, error) {
	m, err := s.Mesh()
	if err != nil {
		return nil, errors.Wrapf(err, "geometry: mesh of %T", s)
	}
	return m.Transform(s.Origin().Matrix), nil
}

// Compile-time interface checks.
var (
	_ Shape = (*Box)(nil)
	_ Shape = (*Sphere)(nil)
	_ Shape = (*Cylinder)(nil)
	_ Shape = (*FileMesh)(nil)
	_ Shape = (*TriangleMesh)(nil)
)

// anchorable is implemented by every shape in this package.
type anchorable interface {
	anchor(frame *kinematics.Frame)
}

func (s *shapeBase) anchor(frame *kinematics.Frame) {
	if s.origin.Frame == nil {
		s.origin.Frame = frame
	}
}

// Anchor places a shape built without an origin frame into frame. Shapes
// that already have a frame are left alone. Call it before the shape is
// shared.
func Anchor(s Shape, frame *kinematics.Frame) Shape {
	if a, ok := s.(anchorable); ok {
		a.anchor(frame)
	}
	return s
}
