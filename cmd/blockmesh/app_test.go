package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/blockmesh/internal/config"
)

func newTestApp(t *testing.T, mutate func(*config.Config)) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Bake.Workers = 2
	cfg.Output.Dir = t.TempDir()
	if mutate != nil {
		mutate(cfg)
	}
	app := NewApp(cfg, nil)
	t.Cleanup(app.Close)
	return app
}

func requireOK(t *testing.T, res EvalResult) {
	t.Helper()
	for _, e := range res.Errors {
		t.Errorf("%s: eval error (line %d): %s", res.Name, e.Line, e.Message)
	}
	if t.Failed() {
		t.FailNow()
	}
}

// TestE2EExamples runs every bundled model file through the full pipeline:
// source, engine, graph, kernel, tessellation and collision boxes.
func TestE2EExamples(t *testing.T) {
	app := newTestApp(t, nil)

	want := map[string][]string{
		"slab.lisp":   {"half-slab", "upper-slab"},
		"stairs.lisp": {"stairs-north", "stairs-east"},
		"post.lisp":   {"post", "pit"},
	}
	var paths []string
	for name := range want {
		paths = append(paths, filepath.Join("..", "..", "examples", name))
	}

	for _, res := range app.BakeFiles(context.Background(), paths) {
		requireOK(t, res)
		models := want[filepath.Base(res.Name)]
		if len(res.Meshes) != len(models) {
			t.Fatalf("%s: %d meshes, want %d", res.Name, len(res.Meshes), len(models))
		}
		for i, m := range res.Meshes {
			if m.ModelName != models[i] {
				t.Errorf("%s: mesh %d is %q, want %q", res.Name, i, m.ModelName, models[i])
			}
			if len(m.Vertices) == 0 || len(m.Normals) != len(m.Vertices) || len(m.Indices) == 0 {
				t.Errorf("%s: model %q has incomplete geometry", res.Name, m.ModelName)
			}
			if len(m.Boxes) == 0 {
				t.Errorf("%s: model %q has no collision boxes", res.Name, m.ModelName)
			}
		}
	}
}

func TestE2ESlabBoxes(t *testing.T) {
	app := newTestApp(t, nil)
	res := app.BakeFiles(context.Background(), []string{"../../examples/slab.lisp"})[0]
	requireOK(t, res)

	if got := res.Meshes[0].Boxes; len(got) != 1 || got[0] != "(0,0,0)-(7,3,7)" {
		t.Errorf("half-slab boxes = %v", got)
	}
	if got := res.Meshes[1].Boxes; len(got) != 1 || got[0] != "(0,4,0)-(7,7,7)" {
		t.Errorf("upper-slab boxes = %v", got)
	}
}

func TestE2EEmptySource(t *testing.T) {
	app := newTestApp(t, nil)
	for _, src := range []string{"", "   \n\t  ", ";; nothing here\n; at all"} {
		res := app.Evaluate("empty", src)
		requireOK(t, res)
		if len(res.Meshes) != 0 {
			t.Errorf("expected 0 meshes for %q, got %d", src, len(res.Meshes))
		}
	}
}

// TestE2ESyntaxError ensures source errors are reported, not fatal.
func TestE2ESyntaxError(t *testing.T) {
	app := newTestApp(t, nil)
	res := app.Evaluate("broken", `(model "m" (box)`)
	if len(res.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if len(res.Meshes) != 0 {
		t.Errorf("expected 0 meshes on error, got %d", len(res.Meshes))
	}
}

func TestE2EUndefinedPart(t *testing.T) {
	app := newTestApp(t, nil)
	res := app.Evaluate("m", `(model "m" (part "ghost"))`)
	if len(res.Errors) == 0 || !strings.Contains(res.Errors[0].Message, "ghost") {
		t.Errorf("errors = %v", res.Errors)
	}
}

func TestE2EArithmetic(t *testing.T) {
	app := newTestApp(t, nil)
	res := app.Evaluate("layers", `
(def layers 4)
(def height (/ 1.0 layers))
(model "snow" (box :max (vec3 1 height 1) :surface "snow") :collision true)
`)
	requireOK(t, res)
	if got := res.Meshes[0].Boxes; len(got) != 1 || got[0] != "(0,0,0)-(7,1,7)" {
		t.Errorf("snow layer boxes = %v", got)
	}
}

func TestE2ERapidEvaluation(t *testing.T) {
	app := newTestApp(t, nil)
	for i := 0; i < 20; i++ {
		src := `(model "a" (box))`
		if i%2 == 1 {
			src = `(model "b" (cylinder :slices 6))`
		}
		res := app.Evaluate("rapid", src)
		requireOK(t, res)
		if len(res.Meshes) != 1 {
			t.Fatalf("iteration %d: %d meshes", i, len(res.Meshes))
		}
	}
}

func TestE2ESDFXKernel(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) {
		c.Mesh.Kernel = config.KernelSDFX
		c.Mesh.SDFCells = 16
	})
	res := app.Evaluate("cube", `(model "cube" (box) :collision true)`)
	requireOK(t, res)
	if got := res.Meshes[0].Boxes; len(got) != 1 || got[0] != "(0,0,0)-(7,7,7)" {
		t.Errorf("cube boxes = %v", got)
	}
}

func TestBakeFilesMissing(t *testing.T) {
	app := newTestApp(t, nil)
	missing := filepath.Join(t.TempDir(), "nope.lisp")
	results := app.BakeFiles(context.Background(), []string{missing, "../../examples/post.lisp"})
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].Name != missing || len(results[0].Errors) != 1 {
		t.Errorf("missing file result = %+v", results[0])
	}
	requireOK(t, results[1])
}

func TestWriteOutputs(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) { c.Output.JSON = true })
	res := app.Evaluate("m", `(model "half slab/v2" (box :max (vec3 1 0.5 1)) :collision true)`)
	requireOK(t, res)

	written, err := app.Write(res)
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 2 {
		t.Fatalf("written = %v", written)
	}
	for _, p := range written {
		if base := filepath.Base(p); !strings.HasPrefix(base, "half_slab_v2.") {
			t.Errorf("unsafe file name %q", base)
		}
		info, err := os.Stat(p)
		if err != nil || info.Size() == 0 {
			t.Errorf("%s not written: %v", p, err)
		}
	}

	data, err := os.ReadFile(written[1])
	if err != nil {
		t.Fatal(err)
	}
	var md MeshData
	if err := json.Unmarshal(data, &md); err != nil {
		t.Fatal(err)
	}
	if md.ModelName != "half slab/v2" || len(md.Indices) != 36 || len(md.Boxes) != 1 {
		t.Errorf("json mesh = %s %d indices %v", md.ModelName, len(md.Indices), md.Boxes)
	}
}

func TestWriteSkipsFailures(t *testing.T) {
	app := newTestApp(t, nil)
	written, err := app.Write(app.Evaluate("bad", `(model "m" (part "x"))`))
	if err != nil || len(written) != 0 {
		t.Errorf("written = %v, err = %v", written, err)
	}
}

func TestRunCLI(t *testing.T) {
	out := t.TempDir()
	var stdout, stderr bytes.Buffer
	code := run([]string{"-out", out, "-workers", "2", "../../examples"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit %d\nstdout:\n%s\nstderr:\n%s", code, stdout.String(), stderr.String())
	}
	for _, want := range []string{"slab.lisp", "half-slab", "box (0,0,0)-(7,3,7)", "stairs-east"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("report missing %q:\n%s", want, stdout.String())
		}
	}
	stls, _ := filepath.Glob(filepath.Join(out, "*.stl"))
	if len(stls) != 6 {
		t.Errorf("wrote %d STL files, want 6: %v", len(stls), stls)
	}
}

func TestRunCLIUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(nil, &stdout, &stderr); code != 2 {
		t.Errorf("exit %d, want 2", code)
	}
	if !strings.Contains(stderr.String(), "Usage:") {
		t.Errorf("usage not printed:\n%s", stderr.String())
	}
	if code := run([]string{"-kernel", "nope", "x.lisp"}, &stdout, &stderr); code != 1 {
		t.Errorf("bad kernel exit %d, want 1", code)
	}
}
