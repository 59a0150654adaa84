// Package engine provides the Lisp evaluation engine for block models.
// It wraps zygomys in a sandboxed environment and produces a ModelGraph
// from user source code.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/zap"

	"github.com/chazu/blockmesh/pkg/graph"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
	NodeID  graph.NodeID
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal warning produced during evaluation.
type EvalWarning struct {
	Line    int
	Col     int
	Message string
	NodeID  graph.NodeID
}

// EvalResult bundles the full output of an evaluation.
type EvalResult struct {
	Graph    *graph.ModelGraph
	Errors   []EvalError
	Warnings []EvalWarning
}

// OK reports whether the evaluation produced a usable graph.
func (r *EvalResult) OK() bool { return r.Graph != nil && len(r.Errors) == 0 }

// Engine wraps the zygomys interpreter for model evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	timeout    time.Duration
	log        *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithTimeout overrides EvalTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{timeout: EvalTimeout, log: zap.NewNop()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Evaluate takes Lisp source code and produces a new ModelGraph.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns graph + nil errors + nil error
//   - On parse/eval failure: returns nil graph + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*graph.ModelGraph, []EvalError, error) {
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

		g, evalErrs, err := e.evaluate(source)
		ch <- evalResult{graph: g, errors: evalErrs, err: err}
	}()

	g, evalErrs, err := e.wait(ch, gen)
	switch {
	case err != nil:
		e.log.Warn("evaluation failed", zap.Uint64("generation", gen), zap.Error(err))
	case len(evalErrs) > 0:
		e.log.Debug("evaluation errors", zap.Uint64("generation", gen), zap.Int("errors", len(evalErrs)))
	default:
		e.log.Debug("evaluated",
			zap.Uint64("generation", gen),
			zap.Int("nodes", g.NodeCount()),
			zap.Int("models", len(g.Roots)),
			zap.Duration("elapsed", time.Since(start)))
	}
	return g, evalErrs, err
}

// Run evaluates source and validates the resulting graph. Validation
// errors become eval errors and the graph is dropped; warnings are kept.
// Only fatal failures are returned as error.
func (e *Engine) Run(source string) (*EvalResult, error) {
	g, evalErrs, err := e.Evaluate(source)
	if err != nil {
		return nil, err
	}
	res := &EvalResult{Graph: g, Errors: evalErrs}
	if g == nil {
		return res, nil
	}

	v := graph.ValidateAll(g)
	for _, ve := range v.Errors {
		res.Errors = append(res.Errors, EvalError{Message: ve.Message, NodeID: ve.NodeID})
	}
	for _, vw := range v.Warnings {
		res.Warnings = append(res.Warnings, EvalWarning{Message: vw.Message, NodeID: vw.NodeID})
	}
	if !v.OK() {
		res.Graph = nil
	}
	return res, nil
}

// evaluate runs source in a fresh zygomys sandbox, which has no
// filesystem or syscall access. Empty source yields an empty graph.
func (e *Engine) evaluate(source string) (*graph.ModelGraph, []EvalError, error) {
	g := graph.New()
	if strings.TrimSpace(source) == "" {
		return g, nil, nil
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, g)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return g, nil, nil
}

// zygomys reports positions as "Error on line N: ..." or "line N: ...".
var linePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`),
	regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`),
}

// parseZygomysError turns a zygomys error into an EvalError, keeping the
// line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, p := range linePatterns {
		m := p.FindStringSubmatch(msg)
		if m == nil {
			continue
		}
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
