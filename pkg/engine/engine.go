// Package engine evaluates scene descriptions written in a small Lisp.
// It wraps zygomys in a sandboxed environment and produces a World of
// bodies and collision shapes from user source code.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/strata/pkg/geometry"
	"github.com/chazu/strata/pkg/kernel"
	"github.com/chazu/strata/pkg/world"
	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/zap"
)

// DefaultWorldName names the root frame of evaluated worlds.
const DefaultWorldName = "world"

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine wraps the zygomys interpreter for scene evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	worldName string
	kernel    kernel.Kernel
	meshDir   string
	timeout   time.Duration
	logger    *zap.Logger

	mu         sync.Mutex
	generation uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorldName sets the root frame name of evaluated worlds.
func WithWorldName(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.worldName = name
		}
	}
}

// WithKernel sets the kernel used to mesh primitive shapes.
func WithKernel(k kernel.Kernel) Option {
	return func(e *Engine) {
		if k != nil {
			e.kernel = k
		}
	}
}

// WithMeshDir allows `mesh` to load STL files below dir.
func WithMeshDir(dir string) Option {
	return func(e *Engine) { e.meshDir = dir }
}

// WithTimeout replaces EvalTimeout for this engine.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger sets the logger for evaluation summaries and built worlds.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		worldName: DefaultWorldName,
		kernel:    geometry.DefaultKernel,
		timeout:   EvalTimeout,
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Evaluate takes scene source code and produces a new World.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns world + nil errors + nil error
//   - On parse/eval failure: returns nil world + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*world.World, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)
	start := time.Now()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		w, evalErrs, err := e.evaluate(source)
		ch <- evalResult{world: w, errors: evalErrs, err: err}
	}()

	w, evalErrs, err := waitWithTimeout(ch, gen, &e.mu, &e.generation, e.timeout)
	switch {
	case err != nil:
		e.logger.Warn("evaluation failed", zap.Uint64("generation", gen), zap.Error(err))
	case len(evalErrs) > 0:
		e.logger.Debug("evaluation errors",
			zap.Uint64("generation", gen),
			zap.Int("errors", len(evalErrs)),
			zap.String("first", evalErrs[0].Error()))
	default:
		e.logger.Debug("evaluation done",
			zap.Uint64("generation", gen),
			zap.Int("bodies", len(w.Bodies())),
			zap.Duration("elapsed", time.Since(start)))
	}
	return w, evalErrs, err
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*world.World, []EvalError, error) {
	w := world.New(e.worldName, world.WithLogger(e.logger))

	// Empty source is a valid program that produces an empty world.
	if strings.TrimSpace(source) == "" {
		return w, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	e.registerBuiltins(env, w)

	err := env.LoadString(preprocessSource(source))
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	_, err = env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	if verrs := w.Tree().Validate(); len(verrs) > 0 {
		return nil, nil, fmt.Errorf("evaluation produced an invalid frame tree: %v", verrs[0])
	}
	return w, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
