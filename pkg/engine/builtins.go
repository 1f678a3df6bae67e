package engine

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chazu/strata/pkg/geometry"
	"github.com/chazu/strata/pkg/kinematics"
	"github.com/chazu/strata/pkg/world"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a vector.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpColor wraps an RGBA color.
type sexpColor struct {
	color geometry.Color
}

func (c *sexpColor) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(color %g %g %g %g)", c.color.R, c.color.G, c.color.B, c.color.A)
}
func (c *sexpColor) Type() *zygo.RegisteredType { return nil }

// sexpShape wraps a collision shape so it can be returned from `box` and
// friends and consumed by `body`.
type sexpShape struct {
	kind  string
	shape geometry.Shape
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s)", s.kind)
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// sexpBody refers to a body already added to the world.
type sexpBody struct {
	body *world.Body
}

func (b *sexpBody) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(body %q)", b.body.Name)
}
func (b *sexpBody) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Trailing keyword without a value.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// unknownKeywords rejects keywords a builtin does not accept, so typos like
// :heigth fail loudly instead of being ignored.
func (a kwArgs) unknownKeywords(fn string, allowed ...string) error {
	for k := range a.kw {
		found := false
		for _, name := range allowed {
			if k == name {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%s: unknown keyword :%s", fn, k)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toPositive extracts a number that must be greater than zero.
func toPositive(s zygo.Sexp) (float64, error) {
	f, err := toFloat64(s)
	if err != nil {
		return 0, err
	}
	if f <= 0 {
		return 0, fmt.Errorf("expected a positive number, got %g", f)
	}
	return f, nil
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a vector from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toColor extracts a color from a sexpColor.
func toColor(s zygo.Sexp) (geometry.Color, error) {
	if c, ok := s.(*sexpColor); ok {
		return c.color, nil
	}
	return geometry.Color{}, fmt.Errorf("expected color, got %T (%s)", s, s.SexpString(nil))
}

// toShape extracts a shape from a sexpShape.
func toShape(s zygo.Sexp) (geometry.Shape, error) {
	if sh, ok := s.(*sexpShape); ok {
		return sh.shape, nil
	}
	return nil, fmt.Errorf("expected shape, got %T (%s)", s, s.SexpString(nil))
}

// toFrame resolves a frame given by name or by body reference.
func toFrame(w *world.World, s zygo.Sexp) (*kinematics.Frame, error) {
	switch v := s.(type) {
	case *sexpBody:
		return v.body.Frame(), nil
	case *zygo.SexpStr:
		f := w.Tree().Frame(v.S)
		if f == nil {
			return nil, fmt.Errorf("no frame named %q", v.S)
		}
		return f, nil
	}
	return nil, fmt.Errorf("expected frame name or body, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// placement reads the :at and :rpy keywords shared by shapes and bodies.
func placement(fn string, pa kwArgs) (at, rpy v3.Vec, err error) {
	if v, ok := pa.kw["at"]; ok {
		if at, err = toVec3(v); err != nil {
			return at, rpy, fmt.Errorf("%s: at: %w", fn, err)
		}
	}
	if v, ok := pa.kw["rpy"]; ok {
		if rpy, err = toVec3(v); err != nil {
			return at, rpy, fmt.Errorf("%s: rpy: %w", fn, err)
		}
	}
	return at, rpy, nil
}

// shapeOrigin reads :at, :rpy and :color for a shape builtin. The origin has
// no frame; the body the shape ends up in anchors it.
func (e *Engine) shapeOrigin(fn string, pa kwArgs) (geometry.Transform, []geometry.ShapeOption, error) {
	at, rpy, err := placement(fn, pa)
	if err != nil {
		return geometry.Transform{}, nil, err
	}
	opts := []geometry.ShapeOption{geometry.WithKernel(e.kernel)}
	if v, ok := pa.kw["color"]; ok {
		c, err := toColor(v)
		if err != nil {
			return geometry.Transform{}, nil, fmt.Errorf("%s: color: %w", fn, err)
		}
		opts = append(opts, geometry.WithColor(c))
	}
	return geometry.FromXYZRPY(at.X, at.Y, at.Z, rpy.X, rpy.Y, rpy.Z, nil), opts, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

var placementKeywords = []string{"at", "rpy", "color"}

// registerBuiltins installs the scene builtins into a zygomys environment.
// Bodies are added to w as they are evaluated.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func (e *Engine) registerBuiltins(env *zygo.Zlisp, w *world.World) {
	// Shapes are anchored to the first body that uses them.
	owners := make(map[geometry.Shape]string)

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var xyz [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			xyz[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (color 0.8 0.6 0.4) or (color 0.8 0.6 0.4 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("color", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 && len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("color requires 3 or 4 arguments, got %d", len(args))
		}
		rgba := [4]float64{1, 1, 1, 1}
		for i, arg := range args {
			f, err := toFloat64(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("color: component %d: %w", i, err)
			}
			if f < 0 || f > 1 {
				return zygo.SexpNull, fmt.Errorf("color: component %d out of [0, 1]: %g", i, f)
			}
			rgba[i] = f
		}
		return &sexpColor{color: geometry.Color{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}}, nil
	})

	// -----------------------------------------------------------------------
	// (box :size (vec3 1.2 0.8 0.04) :at (vec3 0 0 0.73))
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.unknownKeywords("box", append(placementKeywords, "size")...); err != nil {
			return zygo.SexpNull, err
		}
		v, ok := pa.kw["size"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("box requires :size")
		}
		size, err := toVec3(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: size: %w", err)
		}
		if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
			return zygo.SexpNull, fmt.Errorf("box: size must be positive, got %v", size)
		}
		origin, opts, err := e.shapeOrigin("box", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{kind: "box", shape: geometry.NewBox(geometry.Scale{X: size.X, Y: size.Y, Z: size.Z}, origin, opts...)}, nil
	})

	// -----------------------------------------------------------------------
	// (sphere :radius 0.1)
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.unknownKeywords("sphere", append(placementKeywords, "radius")...); err != nil {
			return zygo.SexpNull, err
		}
		v, ok := pa.kw["radius"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("sphere requires :radius")
		}
		r, err := toPositive(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: radius: %w", err)
		}
		origin, opts, err := e.shapeOrigin("sphere", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{kind: "sphere", shape: geometry.NewSphere(r, origin, opts...)}, nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :width 0.3 :height 0.7)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.unknownKeywords("cylinder", append(placementKeywords, "width", "height")...); err != nil {
			return zygo.SexpNull, err
		}
		var dims [2]float64
		for i, kw := range []string{"width", "height"} {
			v, ok := pa.kw[kw]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("cylinder requires :%s", kw)
			}
			f, err := toPositive(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: %s: %w", kw, err)
			}
			dims[i] = f
		}
		origin, opts, err := e.shapeOrigin("cylinder", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{kind: "cylinder", shape: geometry.NewCylinder(dims[0], dims[1], origin, opts...)}, nil
	})

	// -----------------------------------------------------------------------
	// (mesh "models/chair.stl" :scale (vec3 0.01 0.01 0.01))
	//
	// Files are resolved below the engine's mesh directory; evaluation
	// without one cannot load meshes.
	// -----------------------------------------------------------------------
	env.AddFunction("mesh", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.unknownKeywords("mesh", append(placementKeywords, "scale")...); err != nil {
			return zygo.SexpNull, err
		}
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("mesh requires a file name")
		}
		file, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mesh: file: %w", err)
		}
		path, err := e.meshPath(file)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mesh: %w", err)
		}
		scale := geometry.UnitScale()
		if v, ok := pa.kw["scale"]; ok {
			s, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("mesh: scale: %w", err)
			}
			scale = geometry.Scale{X: s.X, Y: s.Y, Z: s.Z}
		}
		origin, opts, err := e.shapeOrigin("mesh", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		fm := geometry.NewFileMesh(path, scale, origin, opts...)
		// Load now so a bad file is reported at the call site.
		if _, err := fm.Mesh(); err != nil {
			return zygo.SexpNull, fmt.Errorf("mesh: %w", err)
		}
		return &sexpShape{kind: "mesh", shape: fm}, nil
	})

	// -----------------------------------------------------------------------
	// (body "table" :parent "kitchen" :at (vec3 2 0 0) :rpy (vec3 0 0 0)
	//       :collision (list (box ...) (box ...)))
	// -----------------------------------------------------------------------
	env.AddFunction("body", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.unknownKeywords("body", "parent", "at", "rpy", "collision"); err != nil {
			return zygo.SexpNull, err
		}
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("body requires a name argument")
		}
		bodyName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("body: name: %w", err)
		}

		parent := w.Root()
		if v, ok := pa.kw["parent"]; ok {
			if parent, err = toFrame(w, v); err != nil {
				return zygo.SexpNull, fmt.Errorf("body: parent: %w", err)
			}
		}
		at, rpy, err := placement("body", pa)
		if err != nil {
			return zygo.SexpNull, err
		}

		var shapes []geometry.Shape
		if v, ok := pa.kw["collision"]; ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("body: collision: %w", err)
			}
			listed := make(map[geometry.Shape]int, len(items))
			for i, item := range items {
				s, err := toShape(item)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("body: collision entry %d: %w", i, err)
				}
				if owner, taken := owners[s]; taken {
					return zygo.SexpNull, fmt.Errorf("body: collision entry %d already belongs to body %q", i, owner)
				}
				if j, dup := listed[s]; dup {
					return zygo.SexpNull, fmt.Errorf("body: collision entry %d repeats entry %d", i, j)
				}
				listed[s] = i
				shapes = append(shapes, s)
			}
		}

		b, err := w.AddBody(bodyName, parent, kinematics.Pose(at, rpy), shapes...)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("body: %w", err)
		}
		for _, s := range shapes {
			owners[s] = bodyName
		}
		return &sexpBody{body: b}, nil
	})
}

// meshPath resolves file below the mesh directory.
func (e *Engine) meshPath(file string) (string, error) {
	if e.meshDir == "" {
		return "", fmt.Errorf("mesh files are disabled")
	}
	if filepath.IsAbs(file) {
		return "", fmt.Errorf("absolute path %q not allowed", file)
	}
	clean := filepath.Clean(file)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the mesh directory", file)
	}
	return filepath.Join(e.meshDir, clean), nil
}
