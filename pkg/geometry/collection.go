package geometry

import (
	"math"

	"github.com/chazu/strata/pkg/interval"
	"github.com/chazu/strata/pkg/kinematics"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// BoundingBoxCollection is a union of boxes sharing one frame. Members may
// overlap; nothing deduplicates or merges them.
type BoundingBoxCollection struct {
	frame *kinematics.Frame
	boxes []BoundingBox
}

// NewBoundingBoxCollection checks that every box is in frame.
func NewBoundingBoxCollection(frame *kinematics.Frame, boxes []BoundingBox) (*BoundingBoxCollection, error) {
	if frame == nil {
		return nil, precondition("collection has no frame")
	}
	for i, b := range boxes {
		if b.Frame != frame {
			return nil, precondition("box %d is in %s, collection is in %s", i, b.Frame.Name(), frame.Name())
		}
	}
	return &BoundingBoxCollection{frame: frame, boxes: append([]BoundingBox(nil), boxes...)}, nil
}

// CollectionFromShapes expresses the local box of every shape in the frame
// of the first shape.
func CollectionFromShapes(shapes []Shape) (*BoundingBoxCollection, error) {
	if len(shapes) == 0 {
		return nil, precondition("no shapes to bound")
	}
	frame := shapes[0].Origin().Frame
	boxes := make([]BoundingBox, 0, len(shapes))
	for i, s := range shapes {
		local, err := s.LocalBoundingBox()
		if err != nil {
			return nil, errors.Wrapf(err, "shape %d", i)
		}
		b, err := local.TransformToFrame(frame)
		if err != nil {
			return nil, err
		}
		boxes = append(boxes, b)
	}
	return &BoundingBoxCollection{frame: frame, boxes: boxes}, nil
}

// CollectionFromSimpleEvent materializes every combination of the simple
// intervals per axis as a box. Boxes of zero thickness are dropped unless
// keepSurface is set.
func CollectionFromSimpleEvent(frame *kinematics.Frame, se interval.SimpleEvent, keepSurface bool) *BoundingBoxCollection {
	boxes := FromSimpleEvent(se, frame)
	if !keepSurface {
		boxes = lo.Filter(boxes, func(b BoundingBox, _ int) bool { return !b.IsSurface() })
	}
	return &BoundingBoxCollection{frame: frame, boxes: boxes}
}

// CollectionFromEvent materializes every member of ev and concatenates the
// results. Surfaces are dropped.
func CollectionFromEvent(frame *kinematics.Frame, ev interval.Event) *BoundingBoxCollection {
	out := &BoundingBoxCollection{frame: frame}
	for _, se := range ev.Simples() {
		out.boxes = append(out.boxes, CollectionFromSimpleEvent(frame, se, false).boxes...)
	}
	return out
}

// Frame returns the shared frame.
func (c *BoundingBoxCollection) Frame() *kinematics.Frame { return c.frame }

// Boxes returns a copy of the members.
func (c *BoundingBoxCollection) Boxes() []BoundingBox {
	return append([]BoundingBox(nil), c.boxes...)
}

// Len returns the number of members.
func (c *BoundingBoxCollection) Len() int { return len(c.boxes) }

// Merge concatenates two collections in the same frame.
func (c *BoundingBoxCollection) Merge(o *BoundingBoxCollection) (*BoundingBoxCollection, error) {
	if c.frame != o.frame {
		return nil, precondition("merging collection in %s with collection in %s", c.frame.Name(), o.frame.Name())
	}
	boxes := make([]BoundingBox, 0, len(c.boxes)+len(o.boxes))
	boxes = append(append(boxes, c.boxes...), o.boxes...)
	return &BoundingBoxCollection{frame: c.frame, boxes: boxes}, nil
}

// Bloat bloats every member.
func (c *BoundingBoxCollection) Bloat(dx, dy, dz float64) (*BoundingBoxCollection, error) {
	out := &BoundingBoxCollection{frame: c.frame, boxes: make([]BoundingBox, len(c.boxes))}
	for i, b := range c.boxes {
		bb, err := b.Bloat(dx, dy, dz)
		if err != nil {
			return nil, err
		}
		out.boxes[i] = bb
	}
	return out, nil
}

// AsShapes returns one box primitive per member.
func (c *BoundingBoxCollection) AsShapes() []*Box {
	return lo.Map(c.boxes, func(b BoundingBox, _ int) *Box { return b.AsShape() })
}

// Event returns the union of the members' simple events.
func (c *BoundingBoxCollection) Event() interval.Event {
	return interval.NewEvent(lo.Map(c.boxes, func(b BoundingBox, _ int) interval.SimpleEvent {
		return b.SimpleEvent()
	})...)
}

// TransformToFrame transforms every member into target.
func (c *BoundingBoxCollection) TransformToFrame(target *kinematics.Frame) (*BoundingBoxCollection, error) {
	out := &BoundingBoxCollection{frame: target, boxes: make([]BoundingBox, len(c.boxes))}
	for i, b := range c.boxes {
		tb, err := b.TransformToFrame(target)
		if err != nil {
			return nil, err
		}
		out.boxes[i] = tb
	}
	return out, nil
}

// Intersection returns the region covered by both collections as
// non-overlapping boxes. Overlaps of zero thickness are dropped.
func (c *BoundingBoxCollection) Intersection(o *BoundingBoxCollection) (*BoundingBoxCollection, error) {
	if c.frame != o.frame {
		return nil, precondition("intersecting collection in %s with collection in %s", c.frame.Name(), o.frame.Name())
	}
	return CollectionFromEvent(c.frame, c.Event().Intersection(o.Event()).Disjoint()), nil
}

// Volume returns the volume of the union, counting overlaps once.
func (c *BoundingBoxCollection) Volume() float64 {
	return c.Event().Volume()
}

// Bounds returns the box around every member. The boolean is false for an
// empty collection.
func (c *BoundingBoxCollection) Bounds() (BoundingBox, bool) {
	if len(c.boxes) == 0 {
		return BoundingBox{}, false
	}
	lower, upper := c.boxes[0].Min(), c.boxes[0].Max()
	for _, b := range c.boxes[1:] {
		lower = lower.Min(b.Min())
		upper = upper.Max(b.Max())
	}
	return boxFromVecs(lower, upper, c.frame), true
}

// MaxZ returns the highest top of any member, or -Inf when empty.
func (c *BoundingBoxCollection) MaxZ() float64 {
	z := math.Inf(-1)
	for _, b := range c.boxes {
		z = math.Max(z, b.MaxZ)
	}
	return z
}
