package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/chazu/blockmesh/internal/config"
	"github.com/chazu/blockmesh/pkg/bake"
	"github.com/chazu/blockmesh/pkg/kernel"
	"github.com/chazu/blockmesh/pkg/tessellate"
)

// App bakes model files with a worker pool and writes their outputs.
type App struct {
	cfg  *config.Config
	pool *bake.WorkerPool
	log  *zap.Logger
}

// MeshData is the JSON mesh format written next to the STL files.
type MeshData struct {
	ModelName string    `json:"modelName"`
	Vertices  []float32 `json:"vertices"`
	Normals   []float32 `json:"normals"`
	UVs       []float32 `json:"uvs,omitempty"`
	Colors    []uint32  `json:"colors,omitempty"`
	Indices   []uint32  `json:"indices"`
	Boxes     []string  `json:"boxes,omitempty"`
}

// EvalErrorData is a located message from evaluating a model file.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the outcome of baking one model file.
type EvalResult struct {
	Name     string          `json:"name"`
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`

	meshes []*kernel.Mesh
}

// kernelFactory maps the configured kernel to a bake factory.
func kernelFactory(cfg *config.Config, log *zap.Logger) bake.KernelFactory {
	if cfg.Mesh.Kernel == config.KernelSDFX {
		return bake.SDFXKernel(cfg.Mesh.SDFCells)
	}
	return bake.QuadKernel(cfg.Mesh.CylinderSlices, log)
}

// NewApp starts a bake pool sized by cfg.
func NewApp(cfg *config.Config, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	opts := bake.Options{
		Kernel:      kernelFactory(cfg, log.Named("kernel")),
		Collision:   cfg.Collision.Enabled,
		EvalTimeout: cfg.Engine.Timeout,
	}
	return &App{
		cfg:  cfg,
		pool: bake.NewWorkerPool(cfg.Bake.Workers, cfg.Bake.QueueSize, opts, log.Named("bake")),
		log:  log,
	}
}

// Close stops the bake pool.
func (a *App) Close() { a.pool.Shutdown() }

// Evaluate bakes a single source.
func (a *App) Evaluate(name, source string) EvalResult {
	return a.bake(context.Background(), []bake.Job{{Name: name, Source: source}})[0]
}

// BakeFiles reads and bakes every path. Unreadable files are reported as
// results with a single error.
func (a *App) BakeFiles(ctx context.Context, paths []string) []EvalResult {
	jobs := make([]bake.Job, 0, len(paths))
	var unreadable []EvalResult
	index := make([]int, len(paths))
	for i, p := range paths {
		src, err := os.ReadFile(p)
		if err != nil {
			index[i] = -1 - len(unreadable)
			unreadable = append(unreadable, EvalResult{
				Name:   p,
				Errors: []EvalErrorData{{Message: err.Error()}},
			})
			continue
		}
		index[i] = len(jobs)
		jobs = append(jobs, bake.Job{Name: p, Source: string(src)})
	}

	baked := a.bake(ctx, jobs)
	out := make([]EvalResult, len(paths))
	for i, k := range index {
		if k < 0 {
			out[i] = unreadable[-1-k]
		} else {
			out[i] = baked[k]
		}
	}
	return out
}

func (a *App) bake(ctx context.Context, jobs []bake.Job) []EvalResult {
	results := a.pool.Bake(ctx, jobs)
	out := make([]EvalResult, len(results))
	for i, r := range results {
		out[i] = convert(r)
	}
	return out
}

// convert turns a bake result into the report format.
func convert(r bake.Result) EvalResult {
	res := EvalResult{
		Name:     r.Name,
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
	for _, w := range r.Warnings {
		res.Warnings = append(res.Warnings, EvalErrorData{Line: w.Line, Col: w.Col, Message: w.Message})
	}
	if r.Err != nil {
		if len(r.Errors) == 0 {
			res.Errors = append(res.Errors, EvalErrorData{Message: r.Err.Error()})
		}
		for _, e := range r.Errors {
			res.Errors = append(res.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return res
	}

	res.meshes = r.Meshes
	for _, m := range r.Meshes {
		md := MeshData{
			ModelName: m.ModelName,
			Vertices:  m.Vertices,
			Normals:   m.Normals,
			UVs:       m.UVs,
			Colors:    m.Colors,
			Indices:   m.Indices,
		}
		for _, b := range m.Boxes {
			md.Boxes = append(md.Boxes, b.String())
		}
		res.Meshes = append(res.Meshes, md)
	}
	return res
}

// fileStem turns a model name into a safe file name.
func fileStem(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}

// Write stores the configured outputs for every model in res under the
// output directory and returns the written paths.
func (a *App) Write(res EvalResult) ([]string, error) {
	if len(res.Errors) > 0 || len(res.meshes) == 0 {
		return nil, nil
	}
	if !a.cfg.Output.STL && !a.cfg.Output.JSON {
		return nil, nil
	}
	if err := os.MkdirAll(a.cfg.Output.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", a.cfg.Output.Dir, err)
	}

	var written []string
	for i, m := range res.meshes {
		if m.IsEmpty() {
			a.log.Warn("skipping empty model", zap.String("model", m.ModelName))
			continue
		}
		stem := filepath.Join(a.cfg.Output.Dir, fileStem(m.ModelName))
		if a.cfg.Output.STL {
			path := stem + ".stl"
			if err := tessellate.WriteSTL(path, []*kernel.Mesh{m}); err != nil {
				return written, err
			}
			written = append(written, path)
		}
		if a.cfg.Output.JSON {
			path := stem + ".json"
			data, err := json.Marshal(res.Meshes[i])
			if err != nil {
				return written, fmt.Errorf("encoding %s: %w", m.ModelName, err)
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return written, fmt.Errorf("writing %s: %w", path, err)
			}
			written = append(written, path)
		}
	}
	return written, nil
}
