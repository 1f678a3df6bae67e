// Package surface finds where objects can be placed on a body. Given the
// body's combined collision mesh it keeps the faces that point up, groups
// them into connected patches, drops patches that are too small, and then
// drops faces that have an obstruction close above them. What is left
// becomes a geometry.Region.
//
// Every way of finding nothing is reported as an *ExtractionError, so
// callers must decide what an object without a support surface means.
package surface
