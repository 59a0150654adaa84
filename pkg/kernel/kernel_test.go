package kernel_test

import (
	"math"
	"testing"

	"github.com/chazu/blockmesh/pkg/kernel"
	"github.com/chazu/blockmesh/pkg/kernel/quad"
	"github.com/chazu/blockmesh/pkg/kernel/sdfx"
)

var (
	_ kernel.Kernel    = (*quad.Kernel)(nil)
	_ kernel.Voxelizer = (*quad.Kernel)(nil)
	_ kernel.Kernel    = (*sdfx.SdfxKernel)(nil)
	_ kernel.Voxelizer = (*sdfx.SdfxKernel)(nil)
)

type backend interface {
	kernel.Kernel
	kernel.Voxelizer
}

func backends(t *testing.T) map[string]backend {
	q := quad.New()
	t.Cleanup(func() { q.Close() })
	return map[string]backend{
		"quad": q,
		"sdfx": sdfx.New(24),
	}
}

// near compares bounds loosely; SDF bounds may be padded slightly.
func near(got, want [3]float64) bool {
	for a := range got {
		if math.Abs(got[a]-want[a]) > 0.05 {
			return false
		}
	}
	return true
}

func TestKernelConformance(t *testing.T) {
	half := [3]float64{1, 0.5, 1}
	for name, k := range backends(t) {
		t.Run(name, func(t *testing.T) {
			slab := k.Box([3]float64{}, half, kernel.DefaultPaint)
			if min, max := slab.BoundingBox(); !near(min, [3]float64{}) || !near(max, half) {
				t.Errorf("slab bounds %v..%v", min, max)
			}
			if n := k.Occupancy(slab).Count(); n != 256 {
				t.Errorf("slab occupies %d voxels, want 256", n)
			}

			up := k.Translate(slab, 0, 0.5, 0)
			if min, max := up.BoundingBox(); !near(min, [3]float64{0, 0.5, 0}) || !near(max, [3]float64{1, 1, 1}) {
				t.Errorf("translated bounds %v..%v", min, max)
			}
			raised := k.Translate(slab, 0, 0.25, 0)
			if n := k.Occupancy(k.Union(slab, raised)).Count(); n != 384 {
				t.Errorf("union occupies %d voxels, want 384", n)
			}
			if n := k.Occupancy(k.Intersection(slab, raised)).Count(); n != 128 {
				t.Errorf("intersection occupies %d voxels, want 128", n)
			}

			wall := k.Rotate(slab, 90, 0, 0)
			if n := k.Occupancy(wall).Count(); n != 256 {
				t.Errorf("rotated slab occupies %d voxels, want 256", n)
			}

			m, err := k.ToMesh(k.Difference(k.Box([3]float64{}, [3]float64{1, 1, 1}, kernel.DefaultPaint), slab))
			if err != nil {
				t.Fatal(err)
			}
			if m.IsEmpty() || m.TriangleCount() == 0 {
				t.Fatal("difference produced no geometry")
			}
			min, max, ok := m.Bounds()
			if !ok || min[1] < 0.45 || max[1] > 1.05 {
				t.Errorf("difference mesh spans y %v..%v", min[1], max[1])
			}
		})
	}
}

func TestMeshCounts(t *testing.T) {
	tests := []struct {
		name  string
		mesh  kernel.Mesh
		verts int
		tris  int
	}{
		{"empty", kernel.Mesh{}, 0, 0},
		{"one vertex", kernel.Mesh{Vertices: []float32{1, 2, 3}}, 1, 0},
		{"quad", kernel.Mesh{
			Vertices: []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
			Indices:  []uint32{0, 1, 2, 2, 3, 0},
		}, 4, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mesh.VertexCount(); got != tt.verts {
				t.Errorf("VertexCount() = %d, want %d", got, tt.verts)
			}
			if got := tt.mesh.TriangleCount(); got != tt.tris {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.tris)
			}
			if got := tt.mesh.IsEmpty(); got != (tt.verts == 0) {
				t.Errorf("IsEmpty() = %v", got)
			}
		})
	}
}

func TestMeshBounds(t *testing.T) {
	m := &kernel.Mesh{Vertices: []float32{0.5, 0, 1, 0.25, 0.75, 0.5}}
	min, max, ok := m.Bounds()
	if !ok {
		t.Fatal("Bounds() not ok")
	}
	if min != [3]float32{0.25, 0, 0.5} || max != [3]float32{0.5, 0.75, 1} {
		t.Errorf("Bounds() = %v %v", min, max)
	}
	if _, _, ok := (&kernel.Mesh{}).Bounds(); ok {
		t.Error("empty mesh should have no bounds")
	}
}

func TestDefaultPaintIsWhite(t *testing.T) {
	if kernel.DefaultPaint.Color != 0xFFFFFFFF {
		t.Errorf("DefaultPaint.Color = %#x, want opaque white", kernel.DefaultPaint.Color)
	}
}
