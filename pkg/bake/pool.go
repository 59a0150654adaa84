// Package bake evaluates model sources into meshes on a pool of workers.
package bake

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chazu/blockmesh/pkg/engine"
	"github.com/chazu/blockmesh/pkg/intstream"
	"github.com/chazu/blockmesh/pkg/kernel"
	"github.com/chazu/blockmesh/pkg/tessellate"
)

// ErrClosed is returned for jobs that could not run because the pool shut down.
var ErrClosed = errors.New("bake: pool is shut down")

// Job is a model source to bake.
type Job struct {
	Name   string // file name or other label, used in logs and results
	Source string

	// ResultChan receives exactly one Result unless the pool shuts down first.
	ResultChan chan Result
}

// Result is the outcome of one Job.
type Result struct {
	Name     string
	Meshes   []*kernel.Mesh
	Errors   []engine.EvalError // source errors, set when Err wraps them
	Warnings []engine.EvalWarning
	Err      error
	Worker   int
	Elapsed  time.Duration
}

// Options configure each worker.
type Options struct {
	Kernel      KernelFactory // defaults to QuadKernel(0, nil)
	Collision   bool
	EvalTimeout time.Duration // zero means engine.EvalTimeout
}

// WorkerPool manages goroutines that bake model sources. Each worker owns
// an engine, a buffer pool and a fresh kernel per job, so nothing mutable
// is shared between workers.
type WorkerPool struct {
	jobQueue chan Job
	workers  int
	opts     Options
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	once     sync.Once
}

// NewWorkerPool starts workers goroutines reading from a queue of the given
// size. A nil log disables logging.
func NewWorkerPool(workers, queueSize int, opts Options, log *zap.Logger) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Kernel == nil {
		opts.Kernel = QuadKernel(0, log)
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &WorkerPool{
		jobQueue: make(chan Job, queueSize),
		workers:  workers,
		opts:     opts,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
	for i := range workers {
		p.wg.Add(1)
		go p.worker(i)
	}
	log.Debug("bake pool started", zap.Int("workers", workers), zap.Int("queue", queueSize))
	return p
}

// SubmitJob queues job without blocking. It returns false if the queue is
// full or the pool is shut down.
func (p *WorkerPool) SubmitJob(job Job) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case p.jobQueue <- job:
		return true
	default:
		return false
	}
}

// SubmitJobBlocking queues job, blocking until there is room, ctx is done
// or the pool shuts down.
func (p *WorkerPool) SubmitJobBlocking(ctx context.Context, job Job) error {
	if p.ctx.Err() != nil {
		return ErrClosed
	}
	select {
	case p.jobQueue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrClosed
	}
}

// Bake runs every job and returns the results in job order. ResultChan on
// the given jobs is ignored. Jobs left unfinished when ctx is done carry
// ctx's error.
func (p *WorkerPool) Bake(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	done := make([]bool, len(jobs))
	chans := make([]chan Result, len(jobs))

	submitted := 0
	for i, job := range jobs {
		chans[i] = make(chan Result, 1)
		job.ResultChan = chans[i]
		if err := p.SubmitJobBlocking(ctx, job); err != nil {
			break
		}
		submitted++
	}

	for i := 0; i < submitted; i++ {
		select {
		case res := <-chans[i]:
			results[i] = res
			done[i] = true
		case <-ctx.Done():
		case <-p.ctx.Done():
		}
		if !done[i] {
			break
		}
	}

	for i, job := range jobs {
		if done[i] {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = ErrClosed
		}
		results[i] = Result{Name: job.Name, Err: err}
	}
	return results
}

// worker is the goroutine that processes bake jobs.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	w := &worker{
		id:   id,
		opts: p.opts,
		log:  p.log.With(zap.Int("worker", id)),
		pool: intstream.NewPool(),
	}
	w.eng = engine.NewEngine(engine.WithLogger(w.log), engine.WithTimeout(p.opts.EvalTimeout))

	for {
		select {
		case job := <-p.jobQueue:
			res := w.run(job)
			if job.ResultChan == nil {
				continue
			}
			select {
			case job.ResultChan <- res:
			case <-p.ctx.Done():
				return
			}
		case <-p.ctx.Done():
			return
		}
	}
}

// Shutdown stops the workers and waits for them. Queued jobs that have not
// started are dropped. It is safe to call more than once.
func (p *WorkerPool) Shutdown() {
	p.once.Do(func() {
		p.cancel()
		p.wg.Wait()
		p.log.Debug("bake pool stopped")
	})
}

// QueueLength returns the current number of jobs in the queue.
func (p *WorkerPool) QueueLength() int {
	return len(p.jobQueue)
}

// Workers returns the number of worker goroutines.
func (p *WorkerPool) Workers() int { return p.workers }

type worker struct {
	id   int
	opts Options
	log  *zap.Logger
	pool *intstream.Pool
	eng  *engine.Engine
}

func (w *worker) run(job Job) (res Result) {
	start := time.Now()
	res = Result{Name: job.Name, Worker: w.id}
	defer func() {
		if r := recover(); r != nil {
			res.Meshes = nil
			res.Err = fmt.Errorf("bake: %s: panic: %v", job.Name, r)
		}
		res.Elapsed = time.Since(start)
		w.logResult(res)
	}()

	ev, err := w.eng.Run(job.Source)
	if err != nil {
		res.Err = fmt.Errorf("bake: %s: %w", job.Name, err)
		return res
	}
	res.Warnings = ev.Warnings
	if !ev.OK() {
		res.Errors = ev.Errors
		res.Err = fmt.Errorf("bake: %s: %w", job.Name, ev.Errors[0])
		return res
	}

	k := w.opts.Kernel(w.pool)
	if c, ok := k.(io.Closer); ok {
		defer c.Close()
	}
	meshes, err := tessellate.Tessellate(ev.Graph, k, tessellate.Options{
		Collision: w.opts.Collision,
		Logger:    w.log,
	})
	if err != nil {
		res.Err = fmt.Errorf("bake: %s: %w", job.Name, err)
		return res
	}
	res.Meshes = meshes
	return res
}

func (w *worker) logResult(res Result) {
	if res.Err != nil {
		w.log.Warn("bake failed", zap.String("job", res.Name), zap.Error(res.Err))
		return
	}
	tris := 0
	for _, m := range res.Meshes {
		tris += m.TriangleCount()
	}
	w.log.Debug("baked",
		zap.String("job", res.Name),
		zap.Int("models", len(res.Meshes)),
		zap.Int("triangles", tris),
		zap.Int("warnings", len(res.Warnings)),
		zap.Duration("elapsed", res.Elapsed))
}
