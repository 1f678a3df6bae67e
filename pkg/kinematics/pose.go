package kinematics

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// poseTolerance bounds the numeric noise accepted when classifying a transform.
const poseTolerance = 1e-9

// Pose builds a rigid transform from a translation and roll/pitch/yaw angles
// in radians. Rotation is applied as Z·Y·X, then the translation.
func Pose(xyz, rpy v3.Vec) sdf.M44 {
	rot := sdf.RotateZ(rpy.Z).Mul(sdf.RotateY(rpy.Y)).Mul(sdf.RotateX(rpy.X))
	return sdf.Translate3d(xyz).Mul(rot)
}

// Translation builds a translation-only transform.
func Translation(x, y, z float64) sdf.M44 {
	return sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
}

// Origin returns the translation part of m.
func Origin(m sdf.M44) v3.Vec {
	return m.MulPosition(v3.Vec{})
}

// IsTranslation reports whether m has an identity rotation part.
func IsTranslation(m sdf.M44) bool {
	o := Origin(m)
	axes := []v3.Vec{{X: 1}, {Y: 1}, {Z: 1}}
	for _, a := range axes {
		d := m.MulPosition(a).Sub(o).Sub(a)
		if math.Abs(d.X) > poseTolerance || math.Abs(d.Y) > poseTolerance || math.Abs(d.Z) > poseTolerance {
			return false
		}
	}
	return true
}

// TransformPoint maps p from source coordinates into target coordinates.
func (t *Tree) TransformPoint(p v3.Vec, source, target *Frame) (v3.Vec, error) {
	m, err := t.Transform(target, source)
	if err != nil {
		return v3.Vec{}, err
	}
	return m.MulPosition(p), nil
}
