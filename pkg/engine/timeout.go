package engine

import (
	"fmt"
	"sync"
	"time"
)

// EvalTimeout is the hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

type evalResult struct {
	spec   PartSpec
	errors []EvalError
	err    error
}

// waitWithTimeout waits for a result from ch, returning a timeout error if
// the evaluation exceeds EvalTimeout. The generation counter discards
// stale results: after a timeout the goroutine may still be running, and a
// newer Evaluate call must not receive its output.
func waitWithTimeout(
	ch <-chan evalResult,
	gen uint64,
	mu *sync.Mutex,
	currentGen *uint64,
) (PartSpec, []EvalError, error) {
	timer := time.NewTimer(EvalTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()

		if gen != current {
			return PartSpec{}, nil, fmt.Errorf("evaluation superseded by newer request")
		}
		return res.spec, res.errors, res.err

	case <-timer.C:
		return PartSpec{}, nil, fmt.Errorf("evaluation timed out after %s", EvalTimeout)
	}
}
