package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/chazu/blockmesh/pkg/geom"
	"github.com/chazu/blockmesh/pkg/surface"
)

// Box appends the six faces of an axis-aligned box using the stream's
// current writer defaults for paint.
func Box(w *Writable, minX, minY, minZ, maxX, maxY, maxZ float32) {
	q := w.Writer()
	q.SetupFaceQuad(geom.Up, 1-maxX, minZ, 1-minX, maxZ, 1-maxY, geom.South)
	q.Append()
	q.SetupFaceQuad(geom.Down, minX, minZ, maxX, maxZ, minY, geom.South)
	q.Append()
	q.SetupFaceQuad(geom.West, minZ, minY, maxZ, maxY, minX, geom.Up)
	q.Append()
	q.SetupFaceQuad(geom.East, 1-maxZ, minY, 1-minZ, maxY, 1-maxX, geom.Up)
	q.Append()
	q.SetupFaceQuad(geom.North, 1-maxX, minY, 1-minX, maxY, minZ, geom.Up)
	q.Append()
	q.SetupFaceQuad(geom.South, minX, minY, maxX, maxY, 1-maxZ, geom.Up)
	q.Append()
}

// UnitBox appends the full unit block.
func UnitBox(w *Writable) {
	Box(w, 0, 0, 0, 1, 1, 1)
}

// CylinderSlices rounds a requested slice count the way UnitCylinder does:
// up to a multiple of four, and at least eight.
func CylinderSlices(n int) int {
	n = (n + 3) / 4 * 4
	if n < 8 {
		n = 8
	}
	return n
}

// UnitCylinder appends a Y-axis cylinder inscribed in the unit block. Sides
// carry smooth vertex normals; each end is a fan of quads meeting at the
// center. transform, when not nil, is applied to every polygon before it is
// appended.
func UnitCylinder(w *Writable, slices int, transform func(*MutablePolygon), side, top, bottom surface.Handle) {
	slices = CylinderSlices(slices)
	step := math.Pi * 2 / float64(slices)
	q := w.Writer()
	for i := 0; i < slices; i++ {
		cylSide(q, i, step, transform, side)
		if i&1 == 0 {
			cylEnd(q, i, step, transform, top, geom.Up)
			cylEnd(q, i, step, transform, bottom, geom.Down)
		}
	}
}

func cylSide(q *MutablePolygon, slice int, step float64, transform func(*MutablePolygon), s surface.Handle) {
	from := step * float64(slice)
	to := from + step
	nx0, nz0 := float32(math.Sin(from)), float32(math.Cos(from))
	nx1, nz1 := float32(math.Sin(to)), float32(math.Cos(to))
	x0, z0 := 0.5+0.5*nx0, 0.5+0.5*nz0
	x1, z1 := 0.5+0.5*nx1, 0.5+0.5*nz1
	uMin := float32(from / (2 * math.Pi))
	uMax := float32(to / (2 * math.Pi))

	q.SetVertexCount(4).
		SetSurface(s).
		Vertex(0, x0, 0, z0, uMin, 0, White).SetNormal(0, mgl32.Vec3{nx0, 0, nz0}).
		Vertex(1, x1, 0, z1, uMax, 0, White).SetNormal(1, mgl32.Vec3{nx1, 0, nz1}).
		Vertex(2, x1, 1, z1, uMax, 1, White).SetNormal(2, mgl32.Vec3{nx1, 0, nz1}).
		Vertex(3, x0, 1, z0, uMin, 1, White).SetNormal(3, mgl32.Vec3{nx0, 0, nz0})
	q.SetNominalFace(geom.FaceForVec(q.FaceNormal()))
	if transform != nil {
		transform(q)
	}
	q.Append()
}

func cylEnd(q *MutablePolygon, slice int, step float64, transform func(*MutablePolygon), s surface.Handle, f geom.Face) {
	from := step * float64(slice)
	mid := from + step
	to := mid + step
	x0, z0 := float32(0.5+0.5*math.Sin(from)), float32(0.5+0.5*math.Cos(from))
	x1, z1 := float32(0.5+0.5*math.Sin(mid)), float32(0.5+0.5*math.Cos(mid))
	x2, z2 := float32(0.5+0.5*math.Sin(to)), float32(0.5+0.5*math.Cos(to))

	q.SetVertexCount(4)
	if f == geom.Up {
		q.Vertex(0, x0, 1, z0, x0, z0, White).
			Vertex(1, x1, 1, z1, x1, z1, White).
			Vertex(2, x2, 1, z2, x2, z2, White).
			Vertex(3, 0.5, 1, 0.5, 0.5, 0.5, White)
	} else {
		q.Vertex(0, x0, 0, z0, x0, z0, White).
			Vertex(1, 0.5, 0, 0.5, 0.5, 0.5, White).
			Vertex(2, x2, 0, z2, x2, z2, White).
			Vertex(3, x1, 0, z1, x1, z1, White)
	}
	for i := 0; i < 4; i++ {
		q.ClearNormal(i)
	}
	q.SetSurface(s).ClearFaceNormal().SetNominalFace(f)
	if transform != nil {
		transform(q)
	}
	q.Append()
}

// TransformPolygon applies m to positions and normals of p in place and
// re-derives its nominal face.
func TransformPolygon(p *MutablePolygon, m mgl32.Mat4) {
	nm := m.Mat3().Inv().Transpose()
	for i := 0; i < p.VertexCount(); i++ {
		v := m.Mul4x1(p.Pos(i).Vec4(1)).Vec3()
		p.SetPosVec(i, v)
		if p.HasNormal(i) {
			p.SetNormal(i, nm.Mul3x1(p.Normal(i)).Normalize())
		}
	}
	if p.HasFaceNormal() {
		p.SetFaceNormal(nm.Mul3x1(p.FaceNormal()).Normalize())
	}
	if n := p.FaceNormal(); n.Len() > 0 {
		p.SetNominalFace(geom.FaceForVec(n))
	}
}

// Transform appends a transformed copy of every polygon of r to out.
func Transform(r Reader, m mgl32.Mat4, out *Writable) {
	q := out.Writer()
	for ok := r.Origin(); ok; ok = r.Next() {
		q.CopyFrom(r.Reader(), true)
		TransformPolygon(q, m)
		q.Append()
	}
}
