package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/chazu/blockmesh/pkg/geom"
)

// SplitIfNeeded replaces the polygon at addr with triangles and convex
// quads when it is neither. Fragments keep every paint attribute and, in
// link formats, link back to addr. The source record is marked deleted.
// It returns the address of the first fragment, or NoLinkOrTag when the
// polygon was left alone.
func (w *Writable) SplitIfNeeded(addr int) int {
	w.checkWritable()
	src := Polygon{s: w.stream, addr: addr}
	n := src.VertexCount()
	if n <= 3 || (n == 4 && src.IsConvex()) {
		return NoLinkOrTag
	}

	var pieces [][]int
	if src.IsConvex() {
		pieces = peel(&src)
	} else {
		pieces = earClip(&src)
	}
	if len(pieces) == 0 {
		return NoLinkOrTag
	}

	first := NoLinkOrTag
	for _, verts := range pieces {
		a := w.writeRecord(&src, verts)
		if w.format&FormatLink != 0 {
			w.polyAtMutable(a).SetLink(addr)
		}
		if first == NoLinkOrTag {
			first = a
		}
	}
	w.polyAtMutable(addr).setDeleted(true)
	return first
}

// subRing is a view of selected vertices of a polygon.
type subRing struct {
	p     *Polygon
	verts []int
}

func (r subRing) VertexCount() int     { return len(r.verts) }
func (r subRing) Pos(i int) mgl32.Vec3 { return r.p.Pos(r.verts[i]) }

func convex(p *Polygon, verts ...int) bool {
	return geom.IsConvex(subRing{p: p, verts: verts})
}

// peel cuts a polygon into quads working inward from both ends of the
// vertex ring, falling back to a triangle whenever a candidate quad is not
// convex.
func peel(p *Polygon) [][]int {
	n := p.VertexCount()
	var out [][]int

	head, tail := n-1, 2
	if convex(p, head, 0, 1, tail) {
		out = append(out, []int{head, 0, 1, tail})
	} else {
		out = append(out, []int{head, 0, 1})
		tail = 1
	}

	for head-tail > 1 {
		if head-tail == 2 {
			out = append(out, []int{head, tail, tail + 1})
			break
		}
		if convex(p, head, tail, tail+1, head-1) {
			out = append(out, []int{head, tail, tail + 1, head - 1})
			tail++
			head--
		} else {
			out = append(out, []int{head, tail, tail + 1})
			tail++
		}
	}
	return out
}

// earClip triangulates a simple, possibly concave ring in its dominant
// projection plane and merges neighbouring ears back into convex quads.
func earClip(p *Polygon) [][]int {
	n := p.VertexCount()
	normal := geom.RingNormal(p)
	axis := geom.DominantAxis(normal)

	// Project so the ring winds counter-clockwise in 2D.
	pts := make([]mgl32.Vec2, n)
	for i := 0; i < n; i++ {
		v := p.Pos(i)
		switch axis {
		case geom.AxisX:
			pts[i] = mgl32.Vec2{v[1], v[2]}
		case geom.AxisY:
			pts[i] = mgl32.Vec2{v[2], v[0]}
		default:
			pts[i] = mgl32.Vec2{v[0], v[1]}
		}
	}
	if normal[axis] < 0 {
		for i := range pts {
			pts[i][0] = -pts[i][0]
		}
	}

	ring := make([]int, n)
	for i := range ring {
		ring[i] = i
	}
	var tris [][3]int
	for guard := 0; len(ring) > 3 && guard < n*n; guard++ {
		clipped := false
		for i := range ring {
			a := ring[(i+len(ring)-1)%len(ring)]
			b := ring[i]
			c := ring[(i+1)%len(ring)]
			if !isEar(pts, ring, a, b, c) {
				continue
			}
			tris = append(tris, [3]int{a, b, c})
			ring = append(ring[:i], ring[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			// Degenerate or self-intersecting input; fall back to a fan over
			// what is left rather than loop forever.
			for i := 1; i+1 < len(ring); i++ {
				tris = append(tris, [3]int{ring[0], ring[i], ring[i+1]})
			}
			ring = ring[:0]
		}
	}
	if len(ring) == 3 {
		tris = append(tris, [3]int{ring[0], ring[1], ring[2]})
	}
	return mergeEars(p, tris)
}

func cross2(o, a, b mgl32.Vec2) float32 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

func isEar(pts []mgl32.Vec2, ring []int, a, b, c int) bool {
	pa, pb, pc := pts[a], pts[b], pts[c]
	if cross2(pa, pb, pc) <= geom.Epsilon*geom.Epsilon {
		return false
	}
	for _, k := range ring {
		if k == a || k == b || k == c {
			continue
		}
		q := pts[k]
		if cross2(pa, pb, q) >= 0 && cross2(pb, pc, q) >= 0 && cross2(pc, pa, q) >= 0 {
			return false
		}
	}
	return true
}

// mergeEars joins pairs of triangles that share an edge when the resulting
// quad is convex. Triangles are visited in clipping order.
func mergeEars(p *Polygon, tris [][3]int) [][]int {
	used := make([]bool, len(tris))
	var out [][]int
	for i := range tris {
		if used[i] {
			continue
		}
		used[i] = true
		merged := false
		for j := i + 1; j < len(tris) && !merged; j++ {
			if used[j] {
				continue
			}
			if q, ok := joinTriangles(tris[i], tris[j]); ok && convex(p, q...) {
				out = append(out, q)
				used[j] = true
				merged = true
			}
		}
		if !merged {
			out = append(out, []int{tris[i][0], tris[i][1], tris[i][2]})
		}
	}
	return out
}

// joinTriangles returns the quad covering t1 and t2 when t1 has an edge
// x->y that t2 has as y->x.
func joinTriangles(t1, t2 [3]int) ([]int, bool) {
	for e := 0; e < 3; e++ {
		x, y, pv := t1[e], t1[(e+1)%3], t1[(e+2)%3]
		for f := 0; f < 3; f++ {
			if t2[f] == y && t2[(f+1)%3] == x {
				q := t2[(f+2)%3]
				return []int{x, q, y, pv}, true
			}
		}
	}
	return nil, false
}
