package sdfx

import (
	"math"
	"testing"

	"github.com/chazu/blockmesh/pkg/collision"
	"github.com/chazu/blockmesh/pkg/kernel"
)

const testCells = 24

func unitBox(k *SdfxKernel) kernel.Solid {
	return k.Box([3]float64{0, 0, 0}, [3]float64{1, 1, 1}, kernel.DefaultPaint)
}

func TestBox(t *testing.T) {
	k := New(testCells)
	mesh, err := k.ToMesh(unitBox(k))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	triCount := mesh.TriangleCount()
	if triCount == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	// Verify vertex and index array sizes are consistent.
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != triCount*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), triCount*3)
	}
	if len(mesh.Colors) != mesh.VertexCount() {
		t.Fatalf("colors length %d != vertex count %d", len(mesh.Colors), mesh.VertexCount())
	}
	for _, c := range mesh.Colors {
		if c != kernel.DefaultPaint.Color {
			t.Fatalf("color = %#x", c)
		}
	}
}

func TestBoundingBox(t *testing.T) {
	k := New(testCells)
	box := k.Box([3]float64{0.25, 0, 0.5}, [3]float64{0.75, 0.5, 1}, kernel.DefaultPaint)
	min, max := box.BoundingBox()

	const tol = 0.01
	expectMin := [3]float64{0.25, 0, 0.5}
	expectMax := [3]float64{0.75, 0.5, 1}

	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected %f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected %f", i, max[i], expectMax[i])
		}
	}
}

func TestCylinder(t *testing.T) {
	k := New(testCells)
	cyl := k.Cylinder(0, kernel.DefaultPaint)
	min, max := cyl.BoundingBox()
	const tol = 0.01
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]) > tol || math.Abs(max[i]-1) > tol {
			t.Errorf("axis %d bounds %f..%f, want 0..1", i, min[i], max[i])
		}
	}

	mesh, err := k.ToMesh(cyl)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.TriangleCount() == 0 {
		t.Fatal("expected non-zero triangle count")
	}

	// The axis runs along Y: the center column is solid, the corners are not.
	occ := k.Occupancy(cyl)
	if !occ.Get(3, 0, 3) || !occ.Get(4, 7, 4) {
		t.Error("center column should be solid")
	}
	if occ.Get(0, 4, 0) || occ.Get(7, 4, 7) {
		t.Error("corners should be empty")
	}
}

func TestDifference(t *testing.T) {
	k := New(testCells)

	box := unitBox(k)
	boxMesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh(box) failed: %v", err)
	}

	hole := k.Difference(box, k.Cylinder(0, kernel.DefaultPaint))
	diffMesh, err := k.ToMesh(hole)
	if err != nil {
		t.Fatalf("ToMesh(diff) failed: %v", err)
	}
	if diffMesh.IsEmpty() {
		t.Fatal("difference mesh is empty")
	}
	if diffMesh.TriangleCount() <= boxMesh.TriangleCount() {
		t.Fatalf("difference (%d triangles) should have more triangles than box (%d triangles)",
			diffMesh.TriangleCount(), boxMesh.TriangleCount())
	}
	occ := k.Occupancy(hole)
	if occ.Get(3, 3, 3) || !occ.Get(0, 3, 0) {
		t.Error("hole occupancy wrong")
	}
}

func TestUnionAndIntersection(t *testing.T) {
	k := New(testCells)
	left := k.Box([3]float64{0, 0, 0}, [3]float64{0.5, 1, 1}, kernel.DefaultPaint)
	low := k.Box([3]float64{0, 0, 0}, [3]float64{1, 0.5, 1}, kernel.DefaultPaint)

	tests := []struct {
		name  string
		solid kernel.Solid
		want  int
	}{
		{"union", k.Union(left, low), 384},
		{"intersection", k.Intersection(left, low), 128},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			occ := k.Occupancy(tt.solid)
			if occ.Count() != tt.want {
				t.Errorf("occupancy = %d voxels, want %d", occ.Count(), tt.want)
			}
			mesh, err := k.ToMesh(tt.solid)
			if err != nil || mesh.IsEmpty() {
				t.Fatalf("ToMesh = %v, %v", mesh, err)
			}
		})
	}
}

func TestTranslate(t *testing.T) {
	k := New(testCells)
	translated := k.Translate(unitBox(k), 1, 2, 3)

	min, max := translated.BoundingBox()

	const tol = 0.01
	expectMin := [3]float64{1, 2, 3}
	expectMax := [3]float64{2, 3, 4}

	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected ~%f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected ~%f", i, max[i], expectMax[i])
		}
	}
}

func TestRotate(t *testing.T) {
	k := New(testCells)
	// A thin slab along X, rotated 90 degrees around Z about the block
	// center, stands up along Y.
	slab := k.Box([3]float64{0, 0, 0}, [3]float64{1, 0.25, 1}, kernel.DefaultPaint)
	rotated := k.Rotate(slab, 0, 0, 90)
	min, max := rotated.BoundingBox()

	xExtent := max[0] - min[0]
	yExtent := max[1] - min[1]

	const tol = 0.01
	if math.Abs(xExtent-0.25) > tol {
		t.Errorf("rotated X extent = %f, expected ~0.25", xExtent)
	}
	if math.Abs(yExtent-1) > tol {
		t.Errorf("rotated Y extent = %f, expected ~1", yExtent)
	}
	if math.Abs(min[1]) > tol || math.Abs(max[1]-1) > tol {
		t.Errorf("rotated slab left the block: y %f..%f", min[1], max[1])
	}
}

func TestOccupancyBoxes(t *testing.T) {
	k := New(testCells)
	slab := k.Box([3]float64{0, 0, 0}, [3]float64{1, 0.5, 1}, kernel.DefaultPaint)
	boxes := collision.FindBoxes(k.Occupancy(slab))
	if len(boxes) != 1 {
		t.Fatalf("boxes = %v, want one", boxes)
	}
	want := collision.Box{MinX: 0, MinY: 0, MinZ: 0, MaxX: 7, MaxY: 3, MaxZ: 7}
	if boxes[0] != want {
		t.Errorf("box = %v, want %v", boxes[0], want)
	}
}
