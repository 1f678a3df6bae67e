package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/chazu/strata/pkg/world"
)

// EvalTimeout is the default hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

// evalResult passes an evaluation outcome back from the worker goroutine.
type evalResult struct {
	world  *world.World
	errors []EvalError
	err    error
}

// waitWithTimeout waits for a result from ch, but returns a timeout error
// if the evaluation exceeds timeout. It uses a generation counter to
// discard stale results from previous evaluations.
//
// On timeout, the goroutine may still be running; the generation check
// ensures its result is discarded when it eventually completes.
func waitWithTimeout(
	ch <-chan evalResult,
	gen uint64,
	mu *sync.Mutex,
	currentGen *uint64,
	timeout time.Duration,
) (*world.World, []EvalError, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()

		if gen != current {
			return nil, nil, fmt.Errorf("evaluation superseded by newer request")
		}

		return res.world, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("evaluation timed out after %s", timeout)
	}
}
