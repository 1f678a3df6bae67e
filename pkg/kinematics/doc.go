// Package kinematics defines the frame tree that every coordinate in strata
// is expressed against. A Tree is an append-only hierarchy of named frames,
// each carrying a fixed pose relative to its parent, and answers
// "given frame A and frame B, what is the rigid transform from B into A".
package kinematics
