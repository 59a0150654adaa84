// Package config handles blockmesh configuration loading.
package config

import (
	"fmt"
	"time"
)

// Config holds all bake settings.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Mesh      MeshConfig      `yaml:"mesh"`
	Output    OutputConfig    `yaml:"output"`
	Collision CollisionConfig `yaml:"collision"`
	Bake      BakeConfig      `yaml:"bake"`
	Engine    EngineConfig    `yaml:"engine"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// MeshConfig selects the geometry kernel.
type MeshConfig struct {
	Kernel         string `yaml:"kernel"`          // quad or sdfx
	CylinderSlices int    `yaml:"cylinder_slices"` // quad kernel default slices
	SDFCells       int    `yaml:"sdf_cells"`       // marching cubes resolution
}

// OutputConfig controls what gets written.
type OutputConfig struct {
	Dir  string `yaml:"dir"`
	STL  bool   `yaml:"stl"`
	JSON bool   `yaml:"json"` // mesh arrays and collision boxes per model
}

// CollisionConfig holds collision box settings.
type CollisionConfig struct {
	Enabled bool `yaml:"enabled"`
}

// BakeConfig sizes the worker pool.
type BakeConfig struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`
}

// EngineConfig holds model evaluation limits.
type EngineConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// Kernel names.
const (
	KernelQuad = "quad"
	KernelSDFX = "sdfx"
)

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		Mesh: MeshConfig{
			Kernel:         KernelQuad,
			CylinderSlices: 16,
			SDFCells:       64,
		},
		Output: OutputConfig{
			Dir: "out",
			STL: true,
		},
		Collision: CollisionConfig{
			Enabled: true,
		},
		Bake: BakeConfig{
			Workers:   4,
			QueueSize: 32,
		},
		Engine: EngineConfig{
			Timeout: 5 * time.Second,
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Mesh.Kernel {
	case KernelQuad, KernelSDFX:
	default:
		return fmt.Errorf("config: mesh.kernel %q: want %s or %s", c.Mesh.Kernel, KernelQuad, KernelSDFX)
	}
	if c.Mesh.CylinderSlices < 3 {
		return fmt.Errorf("config: mesh.cylinder_slices %d: want at least 3", c.Mesh.CylinderSlices)
	}
	if c.Mesh.SDFCells < 1 {
		return fmt.Errorf("config: mesh.sdf_cells %d: want at least 1", c.Mesh.SDFCells)
	}
	if c.Bake.Workers < 1 {
		return fmt.Errorf("config: bake.workers %d: want at least 1", c.Bake.Workers)
	}
	if c.Bake.QueueSize < 0 {
		return fmt.Errorf("config: bake.queue_size %d: must not be negative", c.Bake.QueueSize)
	}
	if c.Engine.Timeout <= 0 {
		return fmt.Errorf("config: engine.timeout %s: must be positive", c.Engine.Timeout)
	}
	return nil
}
