// Package kernel defines the triangle mesh that the geometry layers analyse
// and the abstract tessellation kernel that produces meshes for primitive
// shapes. Implementations (sdfx) provide solid modeling behind the Kernel
// interface, so backends can be swapped without changing the rest of the
// system.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract tessellation kernel. All primitives are centered on
// the origin; the cylinder axis is Z.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Sphere(radius float64) Solid
	Cylinder(height, radius float64, segments int) Solid

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
