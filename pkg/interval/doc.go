// Package interval implements the product algebra used to describe
// axis-aligned regions: closed intervals, normalized unions of intervals per
// axis (Set), their Cartesian product over x, y and z (SimpleEvent), and
// unions of such products (Event).
//
// Boxes and box collections convert to and from these descriptions so that
// set operations such as intersection can be computed per axis.
package interval
