// blockmesh bakes block model files into triangle meshes and collision boxes.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/chazu/blockmesh/internal/config"
	"github.com/chazu/blockmesh/internal/logger"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("blockmesh", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr, fs) }
	flags := config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(stderr, "Config error: %v\n", err)
		return 1
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(stderr, "Logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	paths, err := expandInputs(fs.Args())
	if err != nil {
		logger.Log.Error("bad input", zap.Error(err))
		return 1
	}
	if len(paths) == 0 {
		printUsage(stderr, fs)
		return 2
	}
	logger.Sugar.Debugf("config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := NewApp(cfg, logger.Named("app"))
	defer app.Close()

	failed := 0
	for _, res := range app.BakeFiles(ctx, paths) {
		report(stdout, res)
		if len(res.Errors) > 0 {
			failed++
			continue
		}
		written, err := app.Write(res)
		if err != nil {
			logger.Log.Error("write failed", zap.String("file", res.Name), zap.Error(err))
			failed++
			continue
		}
		for _, p := range written {
			logger.Log.Info("wrote", zap.String("path", p))
		}
	}

	logger.Log.Info("done",
		zap.Int("files", len(paths)),
		zap.Int("failed", failed),
		zap.String("kernel", cfg.Mesh.Kernel))
	if failed > 0 {
		return 1
	}
	return 0
}

// expandInputs turns directory arguments into the .lisp files they hold.
func expandInputs(args []string) ([]string, error) {
	var out []string
	for _, a := range args {
		info, err := os.Stat(a)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, a)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(a, "*.lisp"))
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		out = append(out, matches...)
	}
	return out, nil
}

// report prints per-model stats and collision boxes.
func report(w io.Writer, res EvalResult) {
	fmt.Fprintf(w, "%s\n", res.Name)
	for _, e := range res.Errors {
		if e.Line > 0 {
			fmt.Fprintf(w, "  error: line %d: %s\n", e.Line, e.Message)
		} else {
			fmt.Fprintf(w, "  error: %s\n", e.Message)
		}
	}
	for _, wn := range res.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", wn.Message)
	}
	for _, m := range res.Meshes {
		fmt.Fprintf(w, "  %-20s %6d verts %6d tris\n", m.ModelName, len(m.Vertices)/3, len(m.Indices)/3)
		for _, b := range m.Boxes {
			fmt.Fprintf(w, "    box %s\n", b)
		}
	}
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, `blockmesh - bake block model files into meshes

Usage:
  blockmesh [options] <file.lisp|dir>...

Options:`)
	fs.PrintDefaults()
	fmt.Fprintln(w, `
Examples:
  blockmesh examples/
  blockmesh -kernel sdfx -out build examples/slab.lisp
  blockmesh -no-stl -json examples/stairs.lisp`)
}
