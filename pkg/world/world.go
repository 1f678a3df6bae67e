// Package world holds the rigid bodies of a scene on top of a kinematic
// frame tree. Each body owns a frame and a list of collision shapes, and
// derives its combined mesh and bounding boxes on demand.
package world

import (
	"fmt"
	"sort"
	"sync"

	"github.com/chazu/strata/pkg/geometry"
	"github.com/chazu/strata/pkg/kernel"
	"github.com/chazu/strata/pkg/kinematics"
	"github.com/chazu/strata/pkg/tessellate"
	"github.com/deadsy/sdfx/sdf"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// World is a frame tree plus the bodies attached to it.
type World struct {
	name   string
	tree   *kinematics.Tree
	logger *zap.Logger

	mu     sync.RWMutex
	bodies map[string]*Body
	order  []*Body
}

// Option configures a World.
type Option func(*World)

// WithLogger sets the logger used for body registration.
func WithLogger(l *zap.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates an empty world whose root frame is called name.
func New(name string, opts ...Option) *World {
	w := &World{
		name:   name,
		tree:   kinematics.NewTree(name),
		logger: zap.NewNop(),
		bodies: make(map[string]*Body),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Name returns the world name, which is also the root frame name.
func (w *World) Name() string { return w.name }

// Tree returns the frame tree.
func (w *World) Tree() *kinematics.Tree { return w.tree }

// Root returns the root frame.
func (w *World) Root() *kinematics.Frame { return w.tree.Root() }

// AddBody creates a frame named after the body below parent with the fixed
// pose parent_T_body and registers the body with its collision shapes.
// Shapes built without an origin frame are anchored to the new body frame.
func (w *World) AddBody(name string, parent *kinematics.Frame, pose sdf.M44, collision ...geometry.Shape) (*Body, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.bodies[name]; exists {
		return nil, fmt.Errorf("body '%s' already defined", name)
	}
	frame, err := w.tree.AddFrame(name, parent, pose)
	if err != nil {
		return nil, errors.Wrapf(err, "world: body %s", name)
	}
	b := &Body{
		ID:        uuid.New(),
		Name:      name,
		frame:     frame,
		collision: make([]geometry.Shape, len(collision)),
	}
	for i, s := range collision {
		b.collision[i] = geometry.Anchor(s, frame)
	}
	w.bodies[name] = b
	w.order = append(w.order, b)
	w.logger.Debug("body added",
		zap.String("body", name),
		zap.String("parent", parent.Name()),
		zap.Stringer("id", b.ID),
		zap.Int("shapes", len(collision)))
	return b, nil
}

// Body returns the named body, or nil.
func (w *World) Body(name string) *Body {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.bodies[name]
}

// Bodies returns every body in insertion order.
func (w *World) Bodies() []*Body {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]*Body(nil), w.order...)
}

// BodyNames returns the body names sorted alphabetically.
func (w *World) BodyNames() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	names := make([]string, 0, len(w.bodies))
	for n := range w.bodies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Body is a rigid body: a frame plus collision geometry.
type Body struct {
	ID   uuid.UUID
	Name string

	frame     *kinematics.Frame
	collision []geometry.Shape

	meshOnce sync.Once
	mesh     *kernel.Mesh
	meshErr  error
}

// Frame returns the body frame.
func (b *Body) Frame() *kinematics.Frame { return b.frame }

// Collision returns the collision shapes.
func (b *Body) Collision() []geometry.Shape {
	return append([]geometry.Shape(nil), b.collision...)
}

// CombinedMesh returns every collision shape meshed into the body frame as
// one mesh. It is built once.
func (b *Body) CombinedMesh() (*kernel.Mesh, error) {
	b.meshOnce.Do(func() {
		b.mesh, b.meshErr = tessellate.Combined(b.collision, b.frame)
		if b.meshErr == nil {
			b.mesh.PartName = b.Name
		}
	})
	return b.mesh, b.meshErr
}

// BoundingBoxCollection bounds each collision shape in the body frame. A
// body without collision shapes has an empty collection.
func (b *Body) BoundingBoxCollection() (*geometry.BoundingBoxCollection, error) {
	if len(b.collision) == 0 {
		return geometry.NewBoundingBoxCollection(b.frame, nil)
	}
	boxes := make([]geometry.BoundingBox, 0, len(b.collision))
	for _, s := range b.collision {
		local, err := s.LocalBoundingBox()
		if err != nil {
			return nil, errors.Wrapf(err, "world: bounding %s", b.Name)
		}
		bb, err := local.TransformToFrame(b.frame)
		if err != nil {
			return nil, errors.Wrapf(err, "world: bounding %s", b.Name)
		}
		boxes = append(boxes, bb)
	}
	return geometry.NewBoundingBoxCollection(b.frame, boxes)
}

func (b *Body) String() string { return b.Name }
