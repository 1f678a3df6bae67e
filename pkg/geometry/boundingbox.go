package geometry

import (
	"fmt"
	"math"

	"github.com/chazu/strata/pkg/interval"
	"github.com/chazu/strata/pkg/kernel"
	"github.com/chazu/strata/pkg/kinematics"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// BoundingBox is an axis-aligned box in Frame. Each axis satisfies min <= max;
// zero thickness is legal and describes a planar region.
//
// Two boxes are Equal when their six bounds match, whatever their frames.
// The frame qualifies where the box is, not which box it is, so boxes used as
// map keys through Key collapse across frames. Compare frames explicitly
// when that matters.
type BoundingBox struct {
	MinX, MinY, MinZ float64
	MaxX, MaxY, MaxZ float64
	Frame            *kinematics.Frame
}

// NewBoundingBox validates the bounds and returns the box.
func NewBoundingBox(minX, minY, minZ, maxX, maxY, maxZ float64, frame *kinematics.Frame) (BoundingBox, error) {
	b := BoundingBox{MinX: minX, MinY: minY, MinZ: minZ, MaxX: maxX, MaxY: maxY, MaxZ: maxZ, Frame: frame}
	if err := b.validate(); err != nil {
		return BoundingBox{}, err
	}
	return b, nil
}

// boxFromVecs builds a box from corners already known to be ordered.
func boxFromVecs(lo, hi v3.Vec, frame *kinematics.Frame) BoundingBox {
	return BoundingBox{MinX: lo.X, MinY: lo.Y, MinZ: lo.Z, MaxX: hi.X, MaxY: hi.Y, MaxZ: hi.Z, Frame: frame}
}

func (b BoundingBox) validate() error {
	for _, a := range interval.Axes {
		iv := b.Interval(a)
		if math.IsNaN(iv.Lower) || math.IsNaN(iv.Upper) || iv.Lower > iv.Upper {
			return precondition("bounding box %s axis %s is inverted", b, a)
		}
	}
	return nil
}

// FromMinMax builds a box from two corner points in the same frame.
func FromMinMax(min, max Point) (BoundingBox, error) {
	if min.Frame == nil {
		return BoundingBox{}, precondition("min point has no frame")
	}
	if min.Frame != max.Frame {
		return BoundingBox{}, precondition("min point in %s but max point in %s", min.Frame.Name(), max.Frame.Name())
	}
	return NewBoundingBox(min.X, min.Y, min.Z, max.X, max.Y, max.Z, min.Frame)
}

// FromMesh returns the bounds of m in frame.
func FromMesh(m *kernel.Mesh, frame *kinematics.Frame) (BoundingBox, error) {
	if m.IsEmpty() {
		return BoundingBox{}, precondition("mesh is empty")
	}
	bb := m.Bounds()
	return boxFromVecs(bb.Min, bb.Max, frame), nil
}

// FromSimpleEvent returns one box per combination of the simple intervals
// on each axis, in x, y, z nesting order.
func FromSimpleEvent(se interval.SimpleEvent, frame *kinematics.Frame) []BoundingBox {
	var out []BoundingBox
	for _, x := range se.Get(interval.AxisX).Simple() {
		for _, y := range se.Get(interval.AxisY).Simple() {
			for _, z := range se.Get(interval.AxisZ).Simple() {
				out = append(out, BoundingBox{
					MinX: x.Lower, MinY: y.Lower, MinZ: z.Lower,
					MaxX: x.Upper, MaxY: y.Upper, MaxZ: z.Upper,
					Frame: frame,
				})
			}
		}
	}
	return out
}

// Min returns the minimum corner.
func (b BoundingBox) Min() v3.Vec { return v3.Vec{X: b.MinX, Y: b.MinY, Z: b.MinZ} }

// Max returns the maximum corner.
func (b BoundingBox) Max() v3.Vec { return v3.Vec{X: b.MaxX, Y: b.MaxY, Z: b.MaxZ} }

// Box3 returns the bounds as an sdf.Box3.
func (b BoundingBox) Box3() sdf.Box3 { return sdf.Box3{Min: b.Min(), Max: b.Max()} }

func (b BoundingBox) XInterval() interval.Interval { return interval.Closed(b.MinX, b.MaxX) }
func (b BoundingBox) YInterval() interval.Interval { return interval.Closed(b.MinY, b.MaxY) }
func (b BoundingBox) ZInterval() interval.Interval { return interval.Closed(b.MinZ, b.MaxZ) }

// Interval returns the closed interval of axis a.
func (b BoundingBox) Interval(a interval.Axis) interval.Interval {
	switch a {
	case interval.AxisX:
		return b.XInterval()
	case interval.AxisY:
		return b.YInterval()
	default:
		return b.ZInterval()
	}
}

// Depth is the extent along X.
func (b BoundingBox) Depth() float64 { return b.MaxX - b.MinX }

// Width is the extent along Y.
func (b BoundingBox) Width() float64 { return b.MaxY - b.MinY }

// Height is the extent along Z.
func (b BoundingBox) Height() float64 { return b.MaxZ - b.MinZ }

// Scale returns depth, width and height.
func (b BoundingBox) Scale() Scale { return Scale{X: b.Depth(), Y: b.Width(), Z: b.Height()} }

// Volume returns depth * width * height.
func (b BoundingBox) Volume() float64 { return b.Depth() * b.Width() * b.Height() }

// IsSurface reports whether any axis has zero thickness.
func (b BoundingBox) IsSurface() bool {
	return b.Depth() == 0 || b.Width() == 0 || b.Height() == 0
}

// Center returns the box center in the box frame.
func (b BoundingBox) Center() Point {
	return Point{Vec: b.Min().Add(b.Max()).MulScalar(0.5), Frame: b.Frame}
}

// SimpleEvent returns the box as the product of its three closed intervals.
func (b BoundingBox) SimpleEvent() interval.SimpleEvent {
	return interval.FromIntervals(b.XInterval(), b.YInterval(), b.ZInterval())
}

// Bloat returns a copy grown by dx, dy and dz on both sides of each axis.
// Negative amounts shrink the box as long as it stays valid.
func (b BoundingBox) Bloat(dx, dy, dz float64) (BoundingBox, error) {
	out := b
	if err := out.Enlarge(dx, dy, dz, dx, dy, dz); err != nil {
		return BoundingBox{}, err
	}
	return out, nil
}

// Enlarge moves each minimum down and each maximum up by the given amounts,
// in place. The box is left untouched if the result would be inverted.
func (b *BoundingBox) Enlarge(minX, minY, minZ, maxX, maxY, maxZ float64) error {
	next := *b
	next.MinX -= minX
	next.MinY -= minY
	next.MinZ -= minZ
	next.MaxX += maxX
	next.MaxY += maxY
	next.MaxZ += maxZ
	if err := next.validate(); err != nil {
		return err
	}
	*b = next
	return nil
}

// EnlargeAll enlarges every bound by amount, in place.
func (b *BoundingBox) EnlargeAll(amount float64) error {
	return b.Enlarge(amount, amount, amount, amount, amount, amount)
}

// Contains reports whether p, given in the box frame, lies inside the closed
// box.
func (b BoundingBox) Contains(p v3.Vec) bool {
	return b.XInterval().Contains(p.X) && b.YInterval().Contains(p.Y) && b.ZInterval().Contains(p.Z)
}

// ContainsPoint is Contains for a point carrying its frame, which must be
// the box frame.
func (b BoundingBox) ContainsPoint(p Point) (bool, error) {
	if p.Frame != b.Frame {
		return false, precondition("point in %s tested against box in %s", p.Frame.Name(), b.Frame.Name())
	}
	return b.Contains(p.Vec), nil
}

// IntersectionWith returns the overlap of two boxes in the same frame. The
// boolean is false when they do not meet; touching boxes meet in a box of
// zero thickness.
func (b BoundingBox) IntersectionWith(o BoundingBox) (BoundingBox, bool, error) {
	if b.Frame != o.Frame {
		return BoundingBox{}, false, precondition("intersecting box in %s with box in %s", b.Frame.Name(), o.Frame.Name())
	}
	se := b.SimpleEvent().Intersection(o.SimpleEvent())
	if se.IsEmpty() {
		return BoundingBox{}, false, nil
	}
	return FromSimpleEvent(se, b.Frame)[0], true, nil
}

// Corners returns the eight corners with x varying slowest.
func (b BoundingBox) Corners() [8]v3.Vec {
	var out [8]v3.Vec
	i := 0
	for _, x := range [2]float64{b.MinX, b.MaxX} {
		for _, y := range [2]float64{b.MinY, b.MaxY} {
			for _, z := range [2]float64{b.MinZ, b.MaxZ} {
				out[i] = v3.Vec{X: x, Y: y, Z: z}
				i++
			}
		}
	}
	return out
}

// transformed returns the axis-aligned bounds of the corners mapped by m.
func (b BoundingBox) transformed(m sdf.M44, frame *kinematics.Frame) BoundingBox {
	corners := b.Corners()
	lo := m.MulPosition(corners[0])
	hi := lo
	for _, c := range corners[1:] {
		p := m.MulPosition(c)
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return boxFromVecs(lo, hi, frame)
}

// TransformToFrame re-expresses the box in target as the axis-aligned bounds
// of its eight transformed corners. Under a rotation the result is larger
// than the rotated box, and a round trip only returns the original box when
// the frames differ by a pure translation.
func (b BoundingBox) TransformToFrame(target *kinematics.Frame) (BoundingBox, error) {
	if b.Frame == nil || target == nil {
		return BoundingBox{}, precondition("transform needs both frames")
	}
	if target == b.Frame {
		return b, nil
	}
	m, err := b.Frame.Tree().Transform(target, b.Frame)
	if err != nil {
		return BoundingBox{}, err
	}
	return b.transformed(m, target), nil
}

// AsShape returns a box primitive centered on this box with matching extents.
func (b BoundingBox) AsShape() *Box {
	c := b.Center()
	return NewBox(b.Scale(), FromXYZRPY(c.X, c.Y, c.Z, 0, 0, 0, b.Frame))
}

// AsCollection wraps the box in a single-member collection.
func (b BoundingBox) AsCollection() *BoundingBoxCollection {
	return &BoundingBoxCollection{frame: b.Frame, boxes: []BoundingBox{b}}
}

// Key returns the six bounds. It ignores the frame, matching Equal.
func (b BoundingBox) Key() [6]float64 {
	return [6]float64{b.MinX, b.MinY, b.MinZ, b.MaxX, b.MaxY, b.MaxZ}
}

// Equal compares the six bounds and ignores the frame.
func (b BoundingBox) Equal(o BoundingBox) bool {
	return b.Key() == o.Key()
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("[%g %g %g]-[%g %g %g]@%s", b.MinX, b.MinY, b.MinZ, b.MaxX, b.MaxY, b.MaxZ, b.Frame.Name())
}
