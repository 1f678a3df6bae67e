package views

import (
	"math/rand"
	"sync"

	"github.com/chazu/strata/pkg/geometry"
	"github.com/chazu/strata/pkg/interval"
	"github.com/chazu/strata/pkg/surface"
	"github.com/chazu/strata/pkg/world"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// TableClearance is how far above the highest table box sampled points sit.
const TableClearance = 0.01

// View is a semantic annotation over world bodies.
type View interface {
	Kind() Kind
	Name() string
	Bodies() []*world.Body
}

// SupportingSurface derives and caches the region objects can rest on.
// It is embedded by views that have such a surface.
type SupportingSurface struct {
	body      *world.Body
	extractor *surface.Extractor

	once   sync.Once
	region *geometry.Region
	err    error
}

func (s *SupportingSurface) bind(body *world.Body, ex *surface.Extractor) {
	s.body = body
	if ex == nil {
		ex = surface.NewExtractor()
	}
	s.extractor = ex
}

// SurfaceRegion extracts the support surface from the body mesh on first
// use. Later calls return the same region or error.
func (s *SupportingSurface) SurfaceRegion() (*geometry.Region, error) {
	s.once.Do(func() {
		if s.body == nil {
			s.err = errors.Wrap(geometry.ErrPrecondition, "views: supporting surface without a body")
			return
		}
		mesh, err := s.body.CombinedMesh()
		if err != nil {
			s.err = errors.Wrapf(err, "views: meshing %s", s.body.Name)
			return
		}
		s.region, s.err = s.extractor.Extract(s.body.Name, mesh, s.body.Frame())
	})
	return s.region, s.err
}

// Container is a body that can hold other objects.
type Container struct {
	Body *world.Body
}

func (c *Container) Kind() Kind            { return KindContainer }
func (c *Container) Name() string          { return c.Body.Name }
func (c *Container) Bodies() []*world.Body { return []*world.Body{c.Body} }

// Handle is a body used to open or move something.
type Handle struct {
	Body *world.Body
}

func (h *Handle) Kind() Kind            { return KindHandle }
func (h *Handle) Name() string          { return h.Body.Name }
func (h *Handle) Bodies() []*world.Body { return []*world.Body{h.Body} }

// Table is a body with a support surface on top.
type Table struct {
	Body *world.Body
	SupportingSurface
}

// NewTable wraps body. A nil extractor uses the default thresholds.
func NewTable(body *world.Body, ex *surface.Extractor) *Table {
	t := &Table{Body: body}
	t.bind(body, ex)
	return t
}

func (t *Table) Kind() Kind            { return KindTable }
func (t *Table) Name() string          { return t.Body.Name }
func (t *Table) Bodies() []*world.Body { return []*world.Body{t.Body} }

// PointsOnTable draws n points uniformly from the footprint of the table's
// collision boxes, lifted just above the highest box. Points are in the
// table body frame.
func (t *Table) PointsOnTable(n int, rng *rand.Rand) ([]geometry.Point, error) {
	if n < 0 {
		return nil, errors.Wrapf(geometry.ErrPrecondition, "views: sampling %d points", n)
	}
	boxes, err := t.Body.BoundingBoxCollection()
	if err != nil {
		return nil, err
	}
	if boxes.Len() == 0 {
		return nil, errors.Wrapf(geometry.ErrPrecondition, "views: table %s has no collision shapes", t.Body.Name)
	}
	footprint := boxes.Event().Marginal(interval.AxisX, interval.AxisY).Simples()
	total := lo.SumBy(footprint, func(se interval.SimpleEvent) float64 { return se.Volume() })
	if total <= 0 {
		return nil, errors.Wrapf(geometry.ErrPrecondition, "views: table %s has no footprint", t.Body.Name)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	z := boxes.MaxZ() + TableClearance
	frame := t.Body.Frame()

	points := make([]geometry.Point, n)
	for i := range points {
		se := pickByArea(footprint, total, rng.Float64())
		x := se.Get(interval.AxisX).Simple()[0]
		y := se.Get(interval.AxisY).Simple()[0]
		points[i] = geometry.NewPoint(
			x.Lower+rng.Float64()*x.Length(),
			y.Lower+rng.Float64()*y.Length(),
			z, frame)
	}
	return points, nil
}

// pickByArea selects a member with probability proportional to its volume.
// u is in [0, 1).
func pickByArea(members []interval.SimpleEvent, total, u float64) interval.SimpleEvent {
	target := u * total
	for _, se := range members {
		target -= se.Volume()
		if target < 0 {
			return se
		}
	}
	return members[len(members)-1]
}

// CounterTop is a fixed work surface.
type CounterTop struct {
	Body *world.Body
	SupportingSurface
}

// NewCounterTop wraps body. A nil extractor uses the default thresholds.
func NewCounterTop(body *world.Body, ex *surface.Extractor) *CounterTop {
	c := &CounterTop{Body: body}
	c.bind(body, ex)
	return c
}

func (c *CounterTop) Kind() Kind            { return KindCounterTop }
func (c *CounterTop) Name() string          { return c.Body.Name }
func (c *CounterTop) Bodies() []*world.Body { return []*world.Body{c.Body} }

// Drawer is a container opened by a handle. Its support surface is the
// floor of the container.
type Drawer struct {
	Container *Container
	Handle    *Handle
	SupportingSurface
}

// NewDrawer joins container and handle. A nil extractor uses the default
// thresholds.
func NewDrawer(container *Container, handle *Handle, ex *surface.Extractor) *Drawer {
	d := &Drawer{Container: container, Handle: handle}
	d.bind(container.Body, ex)
	return d
}

func (d *Drawer) Kind() Kind   { return KindDrawer }
func (d *Drawer) Name() string { return d.Container.Body.Name }
func (d *Drawer) Bodies() []*world.Body {
	return []*world.Body{d.Container.Body, d.Handle.Body}
}

// Supporter is implemented by views with a support surface.
type Supporter interface {
	View
	SurfaceRegion() (*geometry.Region, error)
}

var (
	_ View      = (*Container)(nil)
	_ View      = (*Handle)(nil)
	_ Supporter = (*Table)(nil)
	_ Supporter = (*CounterTop)(nil)
	_ Supporter = (*Drawer)(nil)
)
