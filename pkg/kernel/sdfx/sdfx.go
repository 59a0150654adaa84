// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
//
// Signed distance solids carry no per-face paint. A solid keeps the color
// of its first primitive and ToMesh applies it to every vertex.
package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/blockmesh/pkg/collision"
	"github.com/chazu/blockmesh/pkg/kernel"
)

// Compile-time interface checks.
var (
	_ kernel.Kernel    = (*SdfxKernel)(nil)
	_ kernel.Voxelizer = (*SdfxKernel)(nil)
)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 64

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s     sdf.SDF3
	color uint32
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel meshing with the given number of marching
// cubes cells along the longest axis. Zero means DefaultMeshCells.
func New(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	return &SdfxKernel{cells: cells}
}

// unwrap extracts the underlying solid from a kernel.Solid.
func unwrap(s kernel.Solid) *sdfxSolid {
	return s.(*sdfxSolid)
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3, color uint32) kernel.Solid {
	return &sdfxSolid{s: s, color: color}
}

func vec(a [3]float64) v3.Vec { return v3.Vec{X: a[0], Y: a[1], Z: a[2]} }

// Box creates an axis-aligned box from min to max. sdf.Box3D centers the
// box at the origin, so it is moved to the middle of min and max.
func (k *SdfxKernel) Box(min, max [3]float64, p kernel.Paint) kernel.Solid {
	lo, hi := vec(min), vec(max)
	s, err := sdf.Box3D(hi.Sub(lo), 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Box3D: %v", err))
	}
	m := sdf.Translate3d(lo.Add(hi).MulScalar(0.5))
	return wrap(sdf.Transform3D(s, m), p.Color)
}

// Cylinder creates a Y-axis cylinder inscribed in the unit block.
// The slices parameter is ignored since SDF represents smooth surfaces.
func (k *SdfxKernel) Cylinder(slices int, p kernel.Paint) kernel.Solid {
	s, err := sdf.Cylinder3D(1, 0.5, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Cylinder3D: %v", err))
	}
	// Cylinder3D runs along Z.
	m := sdf.Translate3d(vec(kernel.BlockCenter)).Mul(sdf.RotateX(math.Pi / 2))
	return wrap(sdf.Transform3D(s, m), p.Color)
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	sa := unwrap(a)
	return wrap(sdf.Union3D(sa.s, unwrap(b).s), sa.color)
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) kernel.Solid {
	sa := unwrap(a)
	return wrap(sdf.Difference3D(sa.s, unwrap(b).s), sa.color)
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	sa := unwrap(a)
	return wrap(sdf.Intersect3D(sa.s, unwrap(b).s), sa.color)
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	ss := unwrap(s)
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(ss.s, m), ss.color)
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes,
// pivoting on the block center.
func (k *SdfxKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	c := vec(kernel.BlockCenter)
	m := sdf.Translate3d(c).
		Mul(sdf.RotateZ(zRad)).
		Mul(sdf.RotateY(yRad)).
		Mul(sdf.RotateX(xRad)).
		Mul(sdf.Translate3d(c.Neg()))
	ss := unwrap(s)
	return wrap(sdf.Transform3D(ss.s, m), ss.color)
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	ss := unwrap(s)

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(ss.s, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	colors := make([]uint32, 0, numVerts)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			colors = append(colors, ss.color)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Colors:   colors,
		Indices:  indices,
	}, nil
}

// Occupancy marks every collision voxel whose center lies inside the solid.
func (k *SdfxKernel) Occupancy(s kernel.Solid) collision.Occupancy {
	ss := unwrap(s)
	return collision.OccupancyFromFunc(func(x, y, z float64) bool {
		return ss.s.Evaluate(v3.Vec{X: x, Y: y, Z: z}) < 0
	})
}
