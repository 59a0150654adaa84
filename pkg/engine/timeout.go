package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/chazu/blockmesh/pkg/graph"
)

// EvalTimeout is the default hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is wrapped by the error returned when an evaluation
	// overruns the engine timeout.
	ErrTimeout = errors.New("engine: evaluation timed out")
	// ErrSuperseded is returned when a newer Evaluate started on the same
	// engine before this one finished.
	ErrSuperseded = errors.New("engine: evaluation superseded by newer request")
)

type evalResult struct {
	graph  *graph.ModelGraph
	errors []EvalError
	err    error
}

// current reports whether gen is still the latest generation.
func (e *Engine) current(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation == gen
}

// wait blocks for the result of generation gen. A timed out evaluation
// keeps running in the background; its result is dropped on arrival since
// nothing reads the buffered channel.
func (e *Engine) wait(ch <-chan evalResult, gen uint64) (*graph.ModelGraph, []EvalError, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if !e.current(gen) {
			return nil, nil, ErrSuperseded
		}
		return res.graph, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
	}
}
