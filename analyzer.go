// Package strata turns scene descriptions into spatial facts: where every
// body sits in the world, which bodies contain which, and where objects can
// be placed.
package strata

import (
	"sort"

	"github.com/chazu/strata/pkg/engine"
	"github.com/chazu/strata/pkg/geometry"
	"github.com/chazu/strata/pkg/reasoning"
	"github.com/chazu/strata/pkg/surface"
	"github.com/chazu/strata/pkg/views"
	"github.com/chazu/strata/pkg/world"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Analyzer evaluates scene source and reports on the resulting world.
type Analyzer struct {
	engine    *engine.Engine
	extractor *surface.Extractor
	logger    *zap.Logger

	thresholds surface.Thresholds
	engineOpts []engine.Option
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger shared by the engine, world and extractor.
func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithThresholds sets the support surface thresholds.
func WithThresholds(t surface.Thresholds) Option {
	return func(a *Analyzer) { a.thresholds = t }
}

// WithEngineOptions passes options through to the scene engine.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(a *Analyzer) { a.engineOpts = append(a.engineOpts, opts...) }
}

// NewAnalyzer creates an Analyzer with the default engine and thresholds.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		logger:     zap.NewNop(),
		thresholds: surface.DefaultThresholds(),
	}
	for _, o := range opts {
		o(a)
	}
	a.engine = engine.NewEngine(append([]engine.Option{engine.WithLogger(a.logger)}, a.engineOpts...)...)
	a.extractor = surface.NewExtractor(
		surface.WithThresholds(a.thresholds),
		surface.WithLogger(a.logger))
	return a
}

// Extractor returns the shared surface extractor.
func (a *Analyzer) Extractor() *surface.Extractor { return a.extractor }

// BoxData is a bounding box in JSON/YAML form.
type BoxData struct {
	Min [3]float64 `json:"min" yaml:"min"`
	Max [3]float64 `json:"max" yaml:"max"`
}

func boxData(b geometry.BoundingBox) BoxData {
	return BoxData{
		Min: [3]float64{b.MinX, b.MinY, b.MinZ},
		Max: [3]float64{b.MaxX, b.MaxY, b.MaxZ},
	}
}

// SurfaceData describes a body's support surface, or why it has none.
type SurfaceData struct {
	Name   string   `json:"name,omitempty" yaml:"name,omitempty"`
	Area   float64  `json:"area,omitempty" yaml:"area,omitempty"`
	Bounds *BoxData `json:"bounds,omitempty" yaml:"bounds,omitempty"`
	Reason string   `json:"reason,omitempty" yaml:"reason,omitempty"`
	Error  string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// ContainmentData says how much of a body lies inside another one.
type ContainmentData struct {
	Body  string  `json:"body" yaml:"body"`
	Ratio float64 `json:"ratio" yaml:"ratio"`
}

// BodyReport collects the facts about one body. Boxes and bounds are in
// the world root frame; the surface is in the body frame.
type BodyReport struct {
	Name      string            `json:"name" yaml:"name"`
	ID        string            `json:"id" yaml:"id"`
	Parent    string            `json:"parent" yaml:"parent"`
	Kind      string            `json:"kind,omitempty" yaml:"kind,omitempty"`
	Triangles int               `json:"triangles" yaml:"triangles"`
	Boxes     []BoxData         `json:"boxes" yaml:"boxes"`
	Bounds    *BoxData          `json:"bounds,omitempty" yaml:"bounds,omitempty"`
	Surface   *SurfaceData      `json:"surface,omitempty" yaml:"surface,omitempty"`
	Inside    []ContainmentData `json:"inside,omitempty" yaml:"inside,omitempty"`
	Error     string            `json:"error,omitempty" yaml:"error,omitempty"`
}

// EvalErrorData is a serializable evaluation error.
type EvalErrorData struct {
	Line    int    `json:"line" yaml:"line"`
	Col     int    `json:"col" yaml:"col"`
	Message string `json:"message" yaml:"message"`
}

// Report is the result of analyzing one scene.
type Report struct {
	World  string          `json:"world" yaml:"world"`
	Bodies []BodyReport    `json:"bodies" yaml:"bodies"`
	Errors []EvalErrorData `json:"errors" yaml:"errors"`
}

// Evaluate runs the scene source through the engine.
func (a *Analyzer) Evaluate(source string) (*world.World, []engine.EvalError, error) {
	return a.engine.Evaluate(source)
}

// Analyze evaluates source and reports on every body. Evaluation problems
// end up in Errors with no bodies; per-body problems end up in that body's
// Error field.
func (a *Analyzer) Analyze(source string) Report {
	result := Report{
		Bodies: []BodyReport{},
		Errors: []EvalErrorData{},
	}

	w, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		a.logger.Error("evaluate fatal error", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		result.Errors = lo.Map(evalErrs, func(e engine.EvalError, _ int) EvalErrorData {
			return EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message}
		})
		return result
	}
	return a.ReportWorld(w)
}

// ReportWorld reports on an already built world.
func (a *Analyzer) ReportWorld(w *world.World) Report {
	result := Report{
		World:  w.Name(),
		Bodies: []BodyReport{},
		Errors: []EvalErrorData{},
	}

	owners := make(map[string]views.View)
	for _, v := range views.Annotate(w, a.extractor) {
		owners[v.Name()] = v
	}

	bodies := w.Bodies()
	for _, b := range bodies {
		br := BodyReport{
			Name:   b.Name,
			ID:     b.ID.String(),
			Parent: b.Frame().Parent().Name(),
		}
		v, annotated := owners[b.Name]
		if annotated {
			br.Kind = v.Kind().String()
		}
		if err := a.fillGeometry(&br, b); err != nil {
			br.Error = err.Error()
			a.logger.Warn("body report incomplete", zap.String("body", b.Name), zap.Error(err))
			result.Bodies = append(result.Bodies, br)
			continue
		}
		if len(b.Collision()) > 0 {
			br.Surface = surfaceData(a.surfaceOf(b, v))
		}
		br.Inside = a.containers(b, bodies)
		result.Bodies = append(result.Bodies, br)
	}
	return result
}

func (a *Analyzer) fillGeometry(br *BodyReport, b *world.Body) error {
	mesh, err := b.CombinedMesh()
	if err != nil {
		return err
	}
	br.Triangles = mesh.TriangleCount()

	local, err := b.BoundingBoxCollection()
	if err != nil {
		return err
	}
	inRoot, err := local.TransformToFrame(b.Frame().Tree().Root())
	if err != nil {
		return err
	}
	br.Boxes = lo.Map(inRoot.Boxes(), func(bb geometry.BoundingBox, _ int) BoxData { return boxData(bb) })
	if bounds, ok := inRoot.Bounds(); ok {
		bd := boxData(bounds)
		br.Bounds = &bd
	}
	return nil
}

type regionResult struct {
	region *geometry.Region
	err    error
}

// surfaceOf uses the view's cached region when the body owns a supporting
// view and extracts directly otherwise.
func (a *Analyzer) surfaceOf(b *world.Body, v views.View) regionResult {
	if s, ok := v.(views.Supporter); ok {
		r, err := s.SurfaceRegion()
		return regionResult{r, err}
	}
	mesh, err := b.CombinedMesh()
	if err != nil {
		return regionResult{err: err}
	}
	r, err := a.extractor.Extract(b.Name, mesh, b.Frame())
	return regionResult{r, err}
}

func surfaceData(rr regionResult) *SurfaceData {
	if rr.err != nil {
		sd := &SurfaceData{Error: rr.err.Error()}
		if reason, ok := surface.ReasonOf(rr.err); ok {
			sd.Reason = reason.String()
		}
		return sd
	}
	bd := boxData(rr.region.BoundingBox())
	return &SurfaceData{
		Name:   rr.region.Name(),
		Area:   rr.region.Area(),
		Bounds: &bd,
	}
}

// containers lists the other bodies that hold part of b, most enclosing
// first.
func (a *Analyzer) containers(b *world.Body, bodies []*world.Body) []ContainmentData {
	var out []ContainmentData
	for _, other := range bodies {
		if other == b {
			continue
		}
		ratio, inside, err := reasoning.InsideOf(b, other)
		if err != nil {
			a.logger.Debug("containment skipped",
				zap.String("body", b.Name), zap.String("other", other.Name), zap.Error(err))
			continue
		}
		if inside {
			out = append(out, ContainmentData{Body: other.Name, Ratio: ratio})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Ratio > out[j].Ratio })
	return out
}
