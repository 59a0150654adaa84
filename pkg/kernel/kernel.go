// Package kernel defines the abstract solid kernel used to build block
// models. Implementations (quad, sdfx) provide primitives, boolean
// operations and transforms behind this interface so callers can swap
// backends without changing the rest of the system.
//
// Coordinates are in the unit block: a full block spans [0,1] on every axis.
package kernel

import (
	"github.com/chazu/blockmesh/pkg/collision"
	"github.com/chazu/blockmesh/pkg/geom"
	"github.com/chazu/blockmesh/pkg/mesh"
	"github.com/chazu/blockmesh/pkg/surface"
)

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Paint is applied to every face a primitive emits.
type Paint struct {
	Surface  surface.Handle
	Color    uint32
	Rotation geom.Rotation
	LockUV   bool
	Emissive bool
	Sprite   surface.SpriteHandle
}

// DefaultPaint is opaque white with no surface.
var DefaultPaint = Paint{Color: mesh.White}

// Kernel is the abstract solid kernel interface.
type Kernel interface {
	// Primitives
	Box(min, max [3]float64, p Paint) Solid
	Cylinder(slices int, p Paint) Solid // Y axis, inscribed in the unit block

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler degrees about the block center

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

// Voxelizer is implemented by kernels that can report which collision
// voxels a solid fills.
type Voxelizer interface {
	Occupancy(s Solid) collision.Occupancy
}

// BlockCenter is the pivot for Rotate.
var BlockCenter = [3]float64{0.5, 0.5, 0.5}
