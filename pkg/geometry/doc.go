// Package geometry holds the frame-aware value types of the scene: shapes
// with a local bounding box and a lazily built surface mesh, axis-aligned
// bounding boxes anchored to a kinematic frame, collections of such boxes
// and the interval algebra conversions between them, and regions
// reconstructed from point sets.
//
// Every coordinate is meaningless without its frame. Boxes never transform
// implicitly: operations that combine two boxes require them to share a frame
// and report ErrPrecondition otherwise.
package geometry
