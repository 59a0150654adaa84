// Package csg combines closed polygon meshes with boolean operations.
//
// Inputs are read through mesh.Reader and must be watertight for the result
// to be meaningful; this is not checked. Each operation classifies the
// polygons of one solid against a BSP tree built from the other and keeps
// the fragments its operation calls for.
package csg

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/blockmesh/pkg/geom"
	"github.com/chazu/blockmesh/pkg/mesh"
)

// Op is a boolean operation.
type Op uint8

const (
	OpUnion Op = iota
	OpDifference
	OpIntersection
)

func (o Op) String() string {
	switch o {
	case OpUnion:
		return "union"
	case OpDifference:
		return "difference"
	case OpIntersection:
		return "intersection"
	default:
		return fmt.Sprintf("Op(%d)", uint8(o))
	}
}

// rule describes what one operand keeps.
type rule struct {
	keepInside bool
	invert     bool
	route      routing
}

var rules = [3][2]rule{
	OpUnion: {
		{keepInside: false, route: routing{sameFront: true, oppositeFront: false}},
		{keepInside: false, route: routing{sameFront: false, oppositeFront: false}},
	},
	OpDifference: {
		{keepInside: false, route: routing{sameFront: false, oppositeFront: true}},
		{keepInside: true, invert: true, route: routing{sameFront: true, oppositeFront: true}},
	},
	OpIntersection: {
		{keepInside: true, route: routing{sameFront: false, oppositeFront: true}},
		{keepInside: true, route: routing{sameFront: true, oppositeFront: true}},
	},
}

// Union writes the union of a and b to out.
func Union(a, b mesh.Reader, out *mesh.Writable) { Apply(OpUnion, a, b, out) }

// Difference writes a minus b to out.
func Difference(a, b mesh.Reader, out *mesh.Writable) { Apply(OpDifference, a, b, out) }

// Intersection writes the intersection of a and b to out.
func Intersection(a, b mesh.Reader, out *mesh.Writable) { Apply(OpIntersection, a, b, out) }

// Apply runs op on a and b and appends the result to out.
//
// When the bounds of a and b overlap, fragments are built on out's writer
// and appended with Append, so any polygon half-built on out.Writer() is
// lost and the writer is left at out's saved defaults.
func Apply(op Op, a, b mesh.Reader, out *mesh.Writable) {
	boxA, okA := Bounds(a)
	boxB, okB := Bounds(b)

	if !okA || !okB || separated(boxA, boxB) {
		switch op {
		case OpUnion:
			copyAll(a, out)
			copyAll(b, out)
		case OpDifference:
			copyAll(a, out)
		}
		return
	}

	scratch := mesh.ClaimCSG(out.Pool())
	defer scratch.Release()

	var sources []int
	polysA := stage(a, scratch, &sources)
	polysB := stage(b, scratch, &sources)

	treeA := build(polysA)
	treeB := build(polysB)

	var kept []*polygon
	keep := func(polys []*polygon, other *node, otherBox sdf.Box3, r rule) {
		for _, p := range polys {
			emit := func(f *polygon, inside bool) {
				if inside != r.keepInside {
					return
				}
				if r.invert {
					f = f.flip()
				}
				kept = append(kept, f)
			}
			if other == nil || separated(polygonBox(p), otherBox) {
				emit(p, false)
				continue
			}
			other.classify(p, r.route, emit)
		}
	}
	keep(polysA, treeB, boxB, rules[op][0])
	keep(polysB, treeA, boxA, rules[op][1])

	for _, p := range mergeFragments(kept) {
		if area(p.verts) < epsilon {
			continue
		}
		for _, piece := range chunk(p) {
			write(scratch, sources, piece, out)
		}
	}
}

func copyAll(r mesh.Reader, out *mesh.Writable) {
	for ok := r.Origin(); ok; ok = r.Next() {
		out.AppendCopy(r.Reader())
	}
}

// Bounds returns the bounding box of every vertex of r. ok is false when r
// has no polygons.
func Bounds(r mesh.Reader) (box sdf.Box3, ok bool) {
	for more := r.Origin(); more; more = r.Next() {
		p := r.Reader()
		for i := 0; i < p.VertexCount(); i++ {
			box, ok = include(box, ok, p.Pos(i))
		}
	}
	return box, ok
}

func include(box sdf.Box3, ok bool, p mgl32.Vec3) (sdf.Box3, bool) {
	v := v3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
	if !ok {
		return sdf.Box3{Min: v, Max: v}, true
	}
	box.Min = v3.Vec{X: math.Min(box.Min.X, v.X), Y: math.Min(box.Min.Y, v.Y), Z: math.Min(box.Min.Z, v.Z)}
	box.Max = v3.Vec{X: math.Max(box.Max.X, v.X), Y: math.Max(box.Max.Y, v.Y), Z: math.Max(box.Max.Z, v.Z)}
	return box, true
}

func polygonBox(p *polygon) sdf.Box3 {
	v := p.verts[0].pos
	box := sdf.Box3{Min: v3.Vec{X: v[0], Y: v[1], Z: v[2]}, Max: v3.Vec{X: v[0], Y: v[1], Z: v[2]}}
	for _, vt := range p.verts[1:] {
		q := vt.pos
		box.Min = v3.Vec{X: math.Min(box.Min.X, q[0]), Y: math.Min(box.Min.Y, q[1]), Z: math.Min(box.Min.Z, q[2])}
		box.Max = v3.Vec{X: math.Max(box.Max.X, q[0]), Y: math.Max(box.Max.Y, q[1]), Z: math.Max(box.Max.Z, q[2])}
	}
	return box
}

// separated reports whether a and b are apart by more than epsilon on some
// axis. Boxes that touch are not separated.
func separated(a, b sdf.Box3) bool {
	return a.Max.X < b.Min.X-epsilon || b.Max.X < a.Min.X-epsilon ||
		a.Max.Y < b.Min.Y-epsilon || b.Max.Y < a.Min.Y-epsilon ||
		a.Max.Z < b.Min.Z-epsilon || b.Max.Z < a.Min.Z-epsilon
}

// stage copies every polygon of r into scratch, recording its address, and
// converts it to double precision.
func stage(r mesh.Reader, scratch *mesh.Writable, sources *[]int) []*polygon {
	var out []*polygon
	for ok := r.Origin(); ok; ok = r.Next() {
		p := r.Reader()
		addr := scratch.AppendCopy(p)
		idx := len(*sources)
		*sources = append(*sources, addr)

		verts := make([]vertex, p.VertexCount())
		layers := p.LayerCount()
		for i := range verts {
			pos := p.Pos(i)
			v := vertex{pos: mgl64.Vec3{float64(pos[0]), float64(pos[1]), float64(pos[2])}}
			if p.HasNormal(i) {
				n := p.Normal(i)
				v.normal = mgl64.Vec3{float64(n[0]), float64(n[1]), float64(n[2])}
				v.hasNormal = true
			}
			for l := 0; l < layers; l++ {
				v.uv[l] = [2]float64{float64(p.U(i, l)), float64(p.V(i, l))}
				v.color[l] = p.Color(i, l)
			}
			verts[i] = v
		}
		if poly := newPolygon(verts, idx); poly != nil {
			out = append(out, poly)
		}
	}
	return out
}

// chunk fans a ring too large for one record into pieces that fit.
func chunk(p *polygon) []*polygon {
	if len(p.verts) <= mesh.MaxVertices {
		return []*polygon{p}
	}
	var out []*polygon
	for start := 1; start+1 < len(p.verts); start += mesh.MaxVertices - 3 {
		end := start + mesh.MaxVertices - 1
		if end > len(p.verts) {
			end = len(p.verts)
		}
		verts := append([]vertex{p.verts[0]}, p.verts[start:end]...)
		out = append(out, &polygon{verts: verts, plane: p.plane, source: p.source})
	}
	return out
}

// write appends fragment p to out with the paint of its source polygon.
func write(scratch *mesh.Writable, sources []int, p *polygon, out *mesh.Writable) {
	src := scratch.PolyAt(sources[p.source])
	q := out.Writer()
	q.CopyFrom(src, false)
	q.ClearFaceNormal()
	q.SetVertexCount(len(p.verts))
	layers := q.LayerCount()
	for i, v := range p.verts {
		q.SetPos(i, float32(v.pos[0]), float32(v.pos[1]), float32(v.pos[2]))
		if v.hasNormal {
			q.SetNormal(i, mgl32.Vec3{float32(v.normal[0]), float32(v.normal[1]), float32(v.normal[2])})
		} else {
			q.ClearNormal(i)
		}
		for l := 0; l < layers; l++ {
			q.SetUV(i, l, float32(v.uv[l][0]), float32(v.uv[l][1]))
			q.SetColor(i, l, v.color[l])
		}
	}
	n := mgl32.Vec3{float32(p.plane.n[0]), float32(p.plane.n[1]), float32(p.plane.n[2])}
	if n.Dot(src.NominalFace().Vec()) <= 0 {
		q.SetNominalFace(geom.FaceForVec(n))
	}
	q.SetLink(mesh.NoLinkOrTag)
	q.SetTag(p.source)
	addr := q.Append()

	if vc := len(p.verts); vc > 4 || (vc == 4 && !out.PolyAt(addr).IsConvex()) {
		out.SplitIfNeeded(addr)
	}
}
