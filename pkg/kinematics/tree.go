package kinematics

import (
	"fmt"
	"sort"
	"sync"

	"github.com/deadsy/sdfx/sdf"
	"github.com/pkg/errors"
)

// ErrFrameNotFound is returned when a frame is nil or does not belong to the tree.
var ErrFrameNotFound = errors.New("frame not found")

// ErrDuplicateFrame is returned when a frame name is already taken.
var ErrDuplicateFrame = errors.New("duplicate frame name")

// Frame is an opaque handle to a node in a Tree. Frames are compared by
// identity; two frames with the same name in different trees are different.
type Frame struct {
	name   string
	parent *Frame
	pose   sdf.M44 // pose of this frame expressed in the parent
	tree   *Tree
}

// Name returns the frame's unique name within its tree.
func (f *Frame) Name() string {
	if f == nil {
		return "<nil>"
	}
	return f.name
}

// Parent returns the parent frame, or nil for the root.
func (f *Frame) Parent() *Frame { return f.parent }

// Pose returns the fixed transform parent_T_frame.
func (f *Frame) Pose() sdf.M44 { return f.pose }

// Tree returns the tree that owns the frame.
func (f *Frame) Tree() *Tree { return f.tree }

func (f *Frame) String() string { return f.Name() }

// Tree is an append-only hierarchy of frames. It is safe for concurrent use;
// transform queries never mutate it.
type Tree struct {
	mu     sync.RWMutex
	root   *Frame
	frames map[string]*Frame
}

// NewTree creates a tree containing only a root frame with the given name.
func NewTree(rootName string) *Tree {
	t := &Tree{frames: make(map[string]*Frame)}
	t.root = &Frame{name: rootName, pose: sdf.Identity3d(), tree: t}
	t.frames[rootName] = t.root
	return t
}

// Root returns the root frame.
func (t *Tree) Root() *Frame { return t.root }

// AddFrame attaches a new frame below parent with the fixed pose parent_T_frame.
func (t *Tree) AddFrame(name string, parent *Frame, pose sdf.M44) (*Frame, error) {
	if name == "" {
		return nil, errors.New("kinematics: frame name must not be empty")
	}
	if parent == nil || parent.tree != t {
		return nil, errors.Wrapf(ErrFrameNotFound, "kinematics: parent of %q", name)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.frames[name]; exists {
		return nil, errors.Wrapf(ErrDuplicateFrame, "kinematics: %q", name)
	}
	f := &Frame{name: name, parent: parent, pose: pose, tree: t}
	t.frames[name] = f
	return f, nil
}

// Frame returns the frame with the given name, or nil.
func (t *Tree) Frame(name string) *Frame {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.frames[name]
}

// MustFrame returns the frame with the given name, or panics.
func (t *Tree) MustFrame(name string) *Frame {
	f := t.Frame(name)
	if f == nil {
		panic(fmt.Sprintf("kinematics: no frame named %q", name))
	}
	return f
}

// Frames returns all frames sorted by name.
func (t *Tree) Frames() []*Frame {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Frame, 0, len(t.frames))
	for _, f := range t.frames {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Len returns the number of frames including the root.
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.frames)
}

func (t *Tree) contains(f *Frame) bool {
	return f != nil && f.tree == t
}

// rootTransform returns root_T_f by composing parent poses up the chain.
func rootTransform(f *Frame) sdf.M44 {
	m := sdf.Identity3d()
	for cur := f; cur.parent != nil; cur = cur.parent {
		m = cur.pose.Mul(m)
	}
	return m
}

// Transform returns target_T_source: the transform that maps coordinates
// expressed in source into coordinates expressed in target.
func (t *Tree) Transform(target, source *Frame) (sdf.M44, error) {
	if !t.contains(target) {
		return sdf.M44{}, errors.Wrapf(ErrFrameNotFound, "kinematics: target %s", target.Name())
	}
	if !t.contains(source) {
		return sdf.M44{}, errors.Wrapf(ErrFrameNotFound, "kinematics: source %s", source.Name())
	}
	if target == source {
		return sdf.Identity3d(), nil
	}
	return rootTransform(target).Inverse().Mul(rootTransform(source)), nil
}
