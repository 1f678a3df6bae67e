package surface

import (
	"io"
	"math"
	"os"

	"github.com/chazu/strata/pkg/geometry"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Thresholds tune support surface extraction. Lengths are in meters.
type Thresholds struct {
	// UpwardCosine is the minimum Z component of a unit face normal. The
	// default keeps faces within about 18 degrees of straight up.
	UpwardCosine float64 `yaml:"upward_cosine"`
	// MinSurfaceArea is the smallest connected patch kept, in square meters.
	MinSurfaceArea float64 `yaml:"min_surface_area"`
	// Clearance is the free height needed above a face.
	Clearance float64 `yaml:"clearance"`
	// RayOffset lifts clearance rays off the face they start on.
	RayOffset float64 `yaml:"ray_offset"`
}

// DefaultThresholds returns the thresholds used for furniture: a 15cm square
// of nearly level surface with half a meter of space above it.
func DefaultThresholds() Thresholds {
	return Thresholds{
		UpwardCosine:   0.95,
		MinSurfaceArea: 0.0225,
		Clearance:      0.5,
		RayOffset:      0.01,
	}
}

// Validate checks that every threshold is usable.
func (t Thresholds) Validate() error {
	switch {
	case math.IsNaN(t.UpwardCosine) || t.UpwardCosine < -1 || t.UpwardCosine >= 1:
		return errors.Wrapf(geometry.ErrPrecondition, "surface: upward cosine %g outside [-1, 1)", t.UpwardCosine)
	case math.IsNaN(t.MinSurfaceArea) || t.MinSurfaceArea < 0:
		return errors.Wrapf(geometry.ErrPrecondition, "surface: negative minimum area %g", t.MinSurfaceArea)
	case math.IsNaN(t.Clearance) || t.Clearance < 0:
		return errors.Wrapf(geometry.ErrPrecondition, "surface: negative clearance %g", t.Clearance)
	case math.IsNaN(t.RayOffset) || t.RayOffset <= 0:
		return errors.Wrapf(geometry.ErrPrecondition, "surface: ray offset %g must be positive", t.RayOffset)
	}
	return nil
}

// LoadThresholds decodes YAML over the defaults. Unknown keys are rejected
// and an empty document yields the defaults.
func LoadThresholds(r io.Reader) (Thresholds, error) {
	t := DefaultThresholds()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil && err != io.EOF {
		return Thresholds{}, errors.Wrap(err, "surface: decode thresholds")
	}
	if err := t.Validate(); err != nil {
		return Thresholds{}, err
	}
	return t, nil
}

// LoadThresholdsFile reads thresholds from a YAML file.
func LoadThresholdsFile(path string) (Thresholds, error) {
	f, err := os.Open(path)
	if err != nil {
		return Thresholds{}, errors.Wrapf(err, "surface: open %s", path)
	}
	defer f.Close()
	return LoadThresholds(f)
}
