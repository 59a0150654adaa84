package config

import (
	"flag"
	"time"
)

// Flags holds command-line overrides. Zero values mean "not set".
type Flags struct {
	Config    string
	Debug     bool
	Kernel    string
	Out       string
	Workers   int
	Slices    int
	NoSTL     bool
	JSON      bool
	NoCollide bool
	Timeout   time.Duration
}

// RegisterFlags binds the override flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Kernel, "kernel", "", "Geometry kernel (quad or sdfx)")
	fs.StringVar(&f.Out, "out", "", "Output directory")
	fs.IntVar(&f.Workers, "workers", 0, "Number of bake workers")
	fs.IntVar(&f.Slices, "slices", 0, "Default cylinder slices")
	fs.BoolVar(&f.NoSTL, "no-stl", false, "Skip writing STL files")
	fs.BoolVar(&f.JSON, "json", false, "Also write JSON mesh files")
	fs.BoolVar(&f.NoCollide, "no-collision", false, "Skip collision boxes")
	fs.DurationVar(&f.Timeout, "timeout", 0, "Per-model evaluation timeout")
	return f
}

// apply applies flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Kernel != "" {
		cfg.Mesh.Kernel = f.Kernel
	}
	if f.Out != "" {
		cfg.Output.Dir = f.Out
	}
	if f.Workers > 0 {
		cfg.Bake.Workers = f.Workers
	}
	if f.Slices > 0 {
		cfg.Mesh.CylinderSlices = f.Slices
	}
	if f.NoSTL {
		cfg.Output.STL = false
	}
	if f.JSON {
		cfg.Output.JSON = true
	}
	if f.NoCollide {
		cfg.Collision.Enabled = false
	}
	if f.Timeout > 0 {
		cfg.Engine.Timeout = f.Timeout
	}
}
