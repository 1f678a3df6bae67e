// Package tessellate walks a body's collision shapes and produces triangle
// meshes expressed in the body frame. One mesh is produced per shape; Combined
// joins them into the single mesh that surface extraction analyses.
package tessellate

import (
	"fmt"

	"github.com/chazu/strata/pkg/geometry"
	"github.com/chazu/strata/pkg/kernel"
	"github.com/chazu/strata/pkg/kinematics"
	"github.com/deadsy/sdfx/sdf"
	"github.com/pkg/errors"
)

// frameCache memoizes target_T_frame lookups during one walk, since most
// shapes of a body share a frame.
type frameCache struct {
	target *kinematics.Frame
	known  map[*kinematics.Frame]sdf.M44
}

func newFrameCache(target *kinematics.Frame) *frameCache {
	return &frameCache{target: target, known: make(map[*kinematics.Frame]sdf.M44)}
}

// toTarget returns the transform from f into the walk's target frame.
func (fc *frameCache) toTarget(f *kinematics.Frame) (sdf.M44, error) {
	if m, ok := fc.known[f]; ok {
		return m, nil
	}
	if f == nil {
		return sdf.M44{}, errors.Wrap(geometry.ErrPrecondition, "shape origin has no frame")
	}
	m, err := f.Tree().Transform(fc.target, f)
	if err != nil {
		return sdf.M44{}, err
	}
	fc.known[f] = m
	return m, nil
}

// Tessellate produces one mesh per shape, placed by the shape origin and
// mapped into frame. The walk is read-only; shape meshes are shared through
// each shape's own cache and never mutated.
func Tessellate(shapes []geometry.Shape, frame *kinematics.Frame) ([]*kernel.Mesh, error) {
	if frame == nil {
		return nil, errors.Wrap(geometry.ErrPrecondition, "tessellate: no target frame")
	}
	fc := newFrameCache(frame)
	meshes := make([]*kernel.Mesh, 0, len(shapes))
	for i, s := range shapes {
		m, err := handleShape(fc, s)
		if err != nil {
			return nil, fmt.Errorf("tessellate: shape %d: %w", i, err)
		}
		m.PartName = fmt.Sprintf("%s#%d", partKind(s), i)
		meshes = append(meshes, m)
	}
	return meshes, nil
}

// Combined concatenates the per-shape meshes into one mesh in frame.
// Vertices of different shapes are not merged, so touching shapes stay
// separate components.
func Combined(shapes []geometry.Shape, frame *kinematics.Frame) (*kernel.Mesh, error) {
	parts, err := Tessellate(shapes, frame)
	if err != nil {
		return nil, err
	}
	return kernel.Concatenate(parts...), nil
}

// handleShape meshes one shape in the target frame.
func handleShape(fc *frameCache, s geometry.Shape) (*kernel.Mesh, error) {
	m, err := s.Mesh()
	if err != nil {
		return nil, err
	}
	origin := s.Origin()
	toTarget, err := fc.toTarget(origin.Frame)
	if err != nil {
		return nil, err
	}
	// Origin first, then the frame change.
	return m.Transform(toTarget.Mul(origin.Matrix)), nil
}

func partKind(s geometry.Shape) string {
	switch s.(type) {
	case *geometry.Box:
		return "box"
	case *geometry.Sphere:
		return "sphere"
	case *geometry.Cylinder:
		return "cylinder"
	case *geometry.FileMesh:
		return "file"
	case *geometry.TriangleMesh:
		return "mesh"
	default:
		return fmt.Sprintf("%T", s)
	}
}
