package surface

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNoQualifyingGeometry is wrapped by every ExtractionError.
var ErrNoQualifyingGeometry = errors.New("no qualifying geometry")

// Reason says which extraction stage came up empty.
type Reason int

const (
	// NoUpwardFaces: no face normal is close enough to vertical.
	NoUpwardFaces Reason = iota + 1
	// NoLargeSurface: every connected upward patch is below the minimum area.
	NoLargeSurface
	// NoClearance: every remaining face is obstructed from above.
	NoClearance
)

func (r Reason) String() string {
	switch r {
	case NoUpwardFaces:
		return "no upward-facing faces"
	case NoLargeSurface:
		return "no upward-facing surface is large enough"
	case NoClearance:
		return "no upward-facing surface has enough clearance"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// ExtractionError reports that a body has no support surface.
type ExtractionError struct {
	Owner  string
	Reason Reason
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("surface: %s: %s", e.Owner, e.Reason)
}

// Unwrap lets errors.Is match ErrNoQualifyingGeometry.
func (e *ExtractionError) Unwrap() error { return ErrNoQualifyingGeometry }

// ReasonOf returns the reason of an ExtractionError anywhere in err's chain.
func ReasonOf(err error) (Reason, bool) {
	var ee *ExtractionError
	if errors.As(err, &ee) {
		return ee.Reason, true
	}
	return 0, false
}
