// Package reasoning answers spatial questions about world bodies using
// their bounding box collections.
package reasoning

import (
	"github.com/chazu/strata/pkg/geometry"
	"github.com/chazu/strata/pkg/world"
	"github.com/pkg/errors"
)

// rootBoxes returns the body's boxes expressed in the world root frame.
func rootBoxes(b *world.Body) (*geometry.BoundingBoxCollection, error) {
	if b == nil {
		return nil, errors.Wrap(geometry.ErrPrecondition, "reasoning: nil body")
	}
	local, err := b.BoundingBoxCollection()
	if err != nil {
		return nil, err
	}
	return local.TransformToFrame(b.Frame().Tree().Root())
}

// ContainmentRatio returns the fraction of body's box volume that lies
// inside other's boxes, measured in the root frame. A body without volume
// has ratio 0.
func ContainmentRatio(body, other *world.Body) (float64, error) {
	mine, err := rootBoxes(body)
	if err != nil {
		return 0, err
	}
	theirs, err := rootBoxes(other)
	if err != nil {
		return 0, err
	}
	if mine.Frame() != theirs.Frame() {
		return 0, errors.Wrapf(geometry.ErrPrecondition, "reasoning: %s and %s belong to different worlds", body.Name, other.Name)
	}
	total := mine.Volume()
	if total <= 0 {
		return 0, nil
	}
	shared, err := mine.Intersection(theirs)
	if err != nil {
		return 0, err
	}
	return shared.Volume() / total, nil
}

// InsideOf reports how much of body is inside other, as a degree in
// [0, 1], and whether any of it is.
func InsideOf(body, other *world.Body) (float64, bool, error) {
	ratio, err := ContainmentRatio(body, other)
	if err != nil {
		return 0, false, err
	}
	return ratio, ratio > 0, nil
}
