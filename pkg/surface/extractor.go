package surface

import (
	"math"

	"github.com/chazu/strata/pkg/geometry"
	"github.com/chazu/strata/pkg/kernel"
	"github.com/chazu/strata/pkg/kinematics"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// RegionSuffix is appended to the owner name to name a support surface.
const RegionSuffix = "_surface_region"

// up is the vertical direction of every mesh frame.
var up = v3.Vec{Z: 1}

// Extractor finds support surfaces. It holds no per-call state and is safe
// for concurrent use.
type Extractor struct {
	thresholds Thresholds
	logger     *zap.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithThresholds replaces the default thresholds.
func WithThresholds(t Thresholds) Option {
	return func(e *Extractor) { e.thresholds = t }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExtractor returns an extractor with default thresholds.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{thresholds: DefaultThresholds(), logger: zap.NewNop()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Thresholds returns the thresholds in use.
func (e *Extractor) Thresholds() Thresholds { return e.thresholds }

// ExtractSupportSurface runs one extraction with the given thresholds.
func ExtractSupportSurface(owner string, mesh *kernel.Mesh, frame *kinematics.Frame, t Thresholds) (*geometry.Region, error) {
	return NewExtractor(WithThresholds(t)).Extract(owner, mesh, frame)
}

// Extract returns the support surface of mesh, whose vertices are expressed
// in frame. The region is named after owner and anchored to frame.
func (e *Extractor) Extract(owner string, mesh *kernel.Mesh, frame *kinematics.Frame) (*geometry.Region, error) {
	if mesh == nil {
		return nil, errors.Wrapf(geometry.ErrPrecondition, "surface: %s has no mesh", owner)
	}
	if frame == nil {
		return nil, errors.Wrapf(geometry.ErrPrecondition, "surface: %s mesh has no frame", owner)
	}
	if err := e.thresholds.Validate(); err != nil {
		return nil, err
	}
	t := e.thresholds
	log := e.logger.With(zap.String("owner", owner), zap.String("frame", frame.Name()))

	upward := lo.Filter(lo.Range(mesh.TriangleCount()), func(i int, _ int) bool {
		return mesh.FaceNormal(i).Z > t.UpwardCosine
	})
	log.Debug("upward faces", zap.Int("faces", mesh.TriangleCount()), zap.Int("upward", len(upward)))
	if len(upward) == 0 {
		return nil, e.fail(log, owner, NoUpwardFaces)
	}

	groups := mesh.Submesh(upward).Split()
	large := lo.Filter(groups, func(g *kernel.Mesh, _ int) bool { return g.Area() >= t.MinSurfaceArea })
	log.Debug("connected surfaces", zap.Int("groups", len(groups)), zap.Int("large", len(large)))
	if len(large) == 0 {
		return nil, e.fail(log, owner, NoLargeSurface)
	}
	candidates := kernel.Concatenate(large...)

	open, err := clearFaces(mesh, candidates, t)
	if err != nil {
		return nil, err
	}
	log.Debug("clearance", zap.Int("candidates", candidates.TriangleCount()), zap.Int("clear", len(open)))
	if len(open) == 0 {
		return nil, e.fail(log, owner, NoClearance)
	}

	top := candidates.Submesh(open)
	top.PartName = owner + RegionSuffix
	return geometry.NewRegion(top.PartName, frame, top.Vertices, top)
}

func (e *Extractor) fail(log *zap.Logger, owner string, r Reason) error {
	log.Info("no support surface", zap.Stringer("reason", r))
	return &ExtractionError{Owner: owner, Reason: r}
}

// clearFaces casts a ray straight up from just above each candidate face
// centroid against the full mesh, and returns the candidate faces whose
// nearest obstruction is farther than the clearance, or absent.
func clearFaces(full, candidates *kernel.Mesh, t Thresholds) ([]int, error) {
	n := candidates.TriangleCount()
	origins := make([]v3.Vec, n)
	dirs := make([]v3.Vec, n)
	for i := 0; i < n; i++ {
		origins[i] = candidates.FaceCentroid(i).Add(up.MulScalar(t.RayOffset))
		dirs[i] = up
	}
	hits, err := kernel.NewRayCaster(full).Cast(origins, dirs)
	if err != nil {
		return nil, errors.Wrap(err, "surface: clearance rays")
	}

	dist := make([]float64, n)
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	for _, h := range hits {
		dist[h.Ray] = h.Distance
	}
	return lo.Filter(lo.Range(n), func(i int, _ int) bool {
		return dist[i] > t.Clearance || math.IsInf(dist[i], 1)
	}), nil
}
