package geometry

import (
	"fmt"

	"github.com/chazu/strata/pkg/kinematics"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Color is an RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// White is the default shape color.
func White() Color {
	return Color{R: 1, G: 1, B: 1, A: 1}
}

// Scale is a per-axis size or scale factor.
type Scale struct {
	X, Y, Z float64
}

// UnitScale returns the identity scale.
func UnitScale() Scale {
	return Scale{X: 1, Y: 1, Z: 1}
}

// Vec returns the scale as a vector.
func (s Scale) Vec() v3.Vec {
	return v3.Vec{X: s.X, Y: s.Y, Z: s.Z}
}

// Transform is a rigid transform together with the frame it is expressed in.
// For a shape origin, Matrix places the shape's own coordinates into Frame.
type Transform struct {
	Matrix sdf.M44
	Frame  *kinematics.Frame
}

// Identity returns the identity transform in frame.
func Identity(frame *kinematics.Frame) Transform {
	return Transform{Matrix: sdf.Identity3d(), Frame: frame}
}

// FromXYZRPY builds a transform from a translation and roll/pitch/yaw angles
// in radians.
func FromXYZRPY(x, y, z, roll, pitch, yaw float64, frame *kinematics.Frame) Transform {
	return Transform{
		Matrix: kinematics.Pose(v3.Vec{X: x, Y: y, Z: z}, v3.Vec{X: roll, Y: pitch, Z: yaw}),
		Frame:  frame,
	}
}

// Apply maps p through the transform matrix.
func (t Transform) Apply(p v3.Vec) v3.Vec {
	return t.Matrix.MulPosition(p)
}

// Point is a position expressed in a frame.
type Point struct {
	v3.Vec
	Frame *kinematics.Frame
}

// NewPoint returns a point in frame.
func NewPoint(x, y, z float64, frame *kinematics.Frame) Point {
	return Point{Vec: v3.Vec{X: x, Y: y, Z: z}, Frame: frame}
}

// In returns p expressed in target.
func (p Point) In(target *kinematics.Frame) (Point, error) {
	if p.Frame == nil || target == nil {
		return Point{}, precondition("point has no frame")
	}
	v, err := p.Frame.Tree().TransformPoint(p.Vec, p.Frame, target)
	if err != nil {
		return Point{}, err
	}
	return Point{Vec: v, Frame: target}, nil
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g, %g)@%s", p.X, p.Y, p.Z, p.Frame.Name())
}
