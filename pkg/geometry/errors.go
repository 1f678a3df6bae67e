package geometry

import "github.com/pkg/errors"

// ErrPrecondition marks a programmer error: mismatched or missing frames,
// empty inputs, or inverted bounds. It is never recovered from locally.
var ErrPrecondition = errors.New("precondition violation")

func precondition(format string, args ...interface{}) error {
	return errors.Wrapf(ErrPrecondition, format, args...)
}
