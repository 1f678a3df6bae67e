// Package views gives semantic meaning to world bodies. A view wraps one or
// more bodies (a table, a drawer made of a container and a handle) and
// derives higher level facts from their geometry, such as the surface
// objects can be placed on.
package views
