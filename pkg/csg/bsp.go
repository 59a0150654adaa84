package csg

import (
	"github.com/go-gl/mathgl/mgl64"
)

// epsilon is the plane thickness used when classifying vertices.
const epsilon = 1e-5

const (
	coplanar = 0
	front    = 1
	back     = 2
	spanning = 3
)

type vertex struct {
	pos       mgl64.Vec3
	normal    mgl64.Vec3
	hasNormal bool
	uv        [3][2]float64
	color     [3]uint32
}

func (v vertex) lerp(o vertex, t float64) vertex {
	out := vertex{
		pos:       v.pos.Add(o.pos.Sub(v.pos).Mul(t)),
		hasNormal: v.hasNormal && o.hasNormal,
	}
	if out.hasNormal {
		out.normal = v.normal.Add(o.normal.Sub(v.normal).Mul(t)).Normalize()
	}
	for l := range v.uv {
		out.uv[l][0] = v.uv[l][0] + (o.uv[l][0]-v.uv[l][0])*t
		out.uv[l][1] = v.uv[l][1] + (o.uv[l][1]-v.uv[l][1])*t
		out.color[l] = lerpColor(v.color[l], o.color[l], t)
	}
	return out
}

func lerpColor(a, b uint32, t float64) uint32 {
	var out uint32
	for shift := uint(0); shift < 32; shift += 8 {
		ca := float64((a >> shift) & 0xFF)
		cb := float64((b >> shift) & 0xFF)
		c := uint32(ca + (cb-ca)*t + 0.5)
		if c > 0xFF {
			c = 0xFF
		}
		out |= c << shift
	}
	return out
}

type plane struct {
	n mgl64.Vec3
	w float64
}

func (p plane) flip() plane {
	return plane{n: p.n.Mul(-1), w: -p.w}
}

// polygon is a convex or concave planar ring in double precision, remembering
// which input polygon it was cut from.
type polygon struct {
	verts  []vertex
	plane  plane
	source int
}

// newellNormal returns the area-weighted normal of a ring; its length is
// twice the area.
func newellNormal(verts []vertex) mgl64.Vec3 {
	var n mgl64.Vec3
	for i := range verts {
		a := verts[i].pos
		b := verts[(i+1)%len(verts)].pos
		n[0] += (a[1] - b[1]) * (a[2] + b[2])
		n[1] += (a[2] - b[2]) * (a[0] + b[0])
		n[2] += (a[0] - b[0]) * (a[1] + b[1])
	}
	return n
}

func area(verts []vertex) float64 {
	return newellNormal(verts).Len() / 2
}

// newPolygon returns nil for degenerate rings.
func newPolygon(verts []vertex, source int) *polygon {
	if len(verts) < 3 {
		return nil
	}
	n := newellNormal(verts)
	l := n.Len()
	if l/2 < epsilon*epsilon {
		return nil
	}
	n = n.Mul(1 / l)
	return &polygon{verts: verts, plane: plane{n: n, w: n.Dot(verts[0].pos)}, source: source}
}

func (p *polygon) flip() *polygon {
	verts := make([]vertex, len(p.verts))
	for i, v := range p.verts {
		if v.hasNormal {
			v.normal = v.normal.Mul(-1)
		}
		verts[len(verts)-1-i] = v
	}
	return &polygon{verts: verts, plane: p.plane.flip(), source: p.source}
}

// split cuts poly by pl. Coplanar pieces are reported by orientation.
func split(pl plane, poly *polygon) (fronts, backs []*polygon, same, opposite *polygon) {
	kind := 0
	types := make([]int, len(poly.verts))
	for i, v := range poly.verts {
		t := pl.n.Dot(v.pos) - pl.w
		ty := coplanar
		if t < -epsilon {
			ty = back
		} else if t > epsilon {
			ty = front
		}
		kind |= ty
		types[i] = ty
	}

	switch kind {
	case coplanar:
		if pl.n.Dot(poly.plane.n) > 0 {
			return nil, nil, poly, nil
		}
		return nil, nil, nil, poly
	case front:
		return []*polygon{poly}, nil, nil, nil
	case back:
		return nil, []*polygon{poly}, nil, nil
	}

	var f, b []vertex
	n := len(poly.verts)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		ti, tj := types[i], types[j]
		vi, vj := poly.verts[i], poly.verts[j]
		if ti != back {
			f = append(f, vi)
		}
		if ti != front {
			b = append(b, vi)
		}
		if ti|tj == spanning {
			t := (pl.w - pl.n.Dot(vi.pos)) / pl.n.Dot(vj.pos.Sub(vi.pos))
			v := vi.lerp(vj, t)
			f = append(f, v)
			b = append(b, v)
		}
	}
	if p := newPolygon(f, poly.source); p != nil {
		p.plane = poly.plane
		fronts = append(fronts, p)
	}
	if p := newPolygon(b, poly.source); p != nil {
		p.plane = poly.plane
		backs = append(backs, p)
	}
	return fronts, backs, nil, nil
}

// node is a solid-leaf BSP node. A missing front child is outside the solid
// and a missing back child is inside.
type node struct {
	plane       plane
	front, back *node
}

func build(polys []*polygon) *node {
	if len(polys) == 0 {
		return nil
	}
	n := &node{plane: polys[0].plane}
	var fs, bs []*polygon
	for _, p := range polys[1:] {
		f, b, _, _ := split(n.plane, p)
		fs = append(fs, f...)
		bs = append(bs, b...)
	}
	n.front = build(fs)
	n.back = build(bs)
	return n
}

// routing says which side coplanar fragments continue on.
type routing struct {
	sameFront     bool
	oppositeFront bool
}

// classify pushes poly down the tree and calls emit for every fragment with
// whether it ended inside the solid.
func (n *node) classify(poly *polygon, r routing, emit func(p *polygon, inside bool)) {
	fs, bs, same, opp := split(n.plane, poly)
	if same != nil {
		if r.sameFront {
			fs = append(fs, same)
		} else {
			bs = append(bs, same)
		}
	}
	if opp != nil {
		if r.oppositeFront {
			fs = append(fs, opp)
		} else {
			bs = append(bs, opp)
		}
	}
	for _, f := range fs {
		if n.front != nil {
			n.front.classify(f, r, emit)
		} else {
			emit(f, false)
		}
	}
	for _, b := range bs {
		if n.back != nil {
			n.back.classify(b, r, emit)
		} else {
			emit(b, true)
		}
	}
}
