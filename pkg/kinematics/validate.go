package kinematics

import "fmt"

// ValidationError describes a single structural problem in a tree.
type ValidationError struct {
	Frame   string // which frame has the problem (empty if tree-level)
	Message string
}

func (e ValidationError) Error() string {
	if e.Frame == "" {
		return e.Message
	}
	return fmt.Sprintf("frame %s: %s", e.Frame, e.Message)
}

// Validate checks the name index and that every frame reaches the root
// without revisiting a frame. An empty slice means the tree is valid.
// Validate is read-only.
func (t *Tree) Validate() []ValidationError {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var errs []ValidationError
	for name, f := range t.frames {
		if f.name != name {
			errs = append(errs, ValidationError{
				Frame:   name,
				Message: fmt.Sprintf("name index entry %q points at frame %q", name, f.name),
			})
		}
		if f.tree != t {
			errs = append(errs, ValidationError{Frame: name, Message: "frame belongs to another tree"})
		}
		errs = append(errs, validateChain(t, f)...)
	}
	return errs
}

// validateChain walks from f to the root. Reaching a frame twice is a cycle.
func validateChain(t *Tree, f *Frame) []ValidationError {
	seen := make(map[*Frame]bool)
	for cur := f; cur != t.root; cur = cur.parent {
		if cur == nil {
			return []ValidationError{{Frame: f.name, Message: "frame is not connected to the root"}}
		}
		if seen[cur] {
			return []ValidationError{{Frame: f.name, Message: fmt.Sprintf("cycle detected at frame %s", cur.name)}}
		}
		seen[cur] = true
		if indexed, ok := t.frames[cur.name]; !ok || indexed != cur {
			return []ValidationError{{Frame: f.name, Message: fmt.Sprintf("ancestor %s is not registered", cur.name)}}
		}
	}
	return nil
}
