package csg

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// maxMergedVertices bounds the size of a re-merged fragment.
const maxMergedVertices = 4

func samePos(a, b mgl64.Vec3) bool {
	return math.Abs(a[0]-b[0]) < epsilon && math.Abs(a[1]-b[1]) < epsilon && math.Abs(a[2]-b[2]) < epsilon
}

// mergeFragments joins fragments cut from the same source polygon back
// together where they share an edge and the join stays a small convex ring.
// Order of first appearance is preserved.
func mergeFragments(polys []*polygon) []*polygon {
	groups := make(map[int][]*polygon)
	var order []int
	for _, p := range polys {
		if _, ok := groups[p.source]; !ok {
			order = append(order, p.source)
		}
		groups[p.source] = append(groups[p.source], p)
	}

	out := make([]*polygon, 0, len(polys))
	for _, src := range order {
		g := groups[src]
		for merged := true; merged; {
			merged = false
		search:
			for i := 0; i < len(g); i++ {
				for j := i + 1; j < len(g); j++ {
					if m := tryMerge(g[i], g[j]); m != nil {
						g[i] = m
						g = append(g[:j], g[j+1:]...)
						merged = true
						break search
					}
				}
			}
		}
		out = append(out, g...)
	}
	return out
}

func tryMerge(a, b *polygon) *polygon {
	if a.plane.n.Dot(b.plane.n) < 1-epsilon {
		return nil
	}
	na, nb := len(a.verts), len(b.verts)
	for i := 0; i < na; i++ {
		x, y := a.verts[i].pos, a.verts[(i+1)%na].pos
		for j := 0; j < nb; j++ {
			if !samePos(b.verts[j].pos, y) || !samePos(b.verts[(j+1)%nb].pos, x) {
				continue
			}
			ring := make([]vertex, 0, na+nb-2)
			for k := 0; k < na; k++ {
				ring = append(ring, a.verts[(i+1+k)%na])
			}
			for k := 0; k < nb-2; k++ {
				ring = append(ring, b.verts[(j+2+k)%nb])
			}
			ring = dropCollinear(ring)
			if len(ring) < 3 || len(ring) > maxMergedVertices || !convexRing(ring, a.plane.n) {
				return nil
			}
			return &polygon{verts: ring, plane: a.plane, source: a.source}
		}
	}
	return nil
}

// dropCollinear removes vertices that lie on the segment between their
// neighbours.
func dropCollinear(ring []vertex) []vertex {
	for changed := true; changed && len(ring) > 3; {
		changed = false
		for k := 0; k < len(ring); k++ {
			prev := ring[(k+len(ring)-1)%len(ring)].pos
			cur := ring[k].pos
			next := ring[(k+1)%len(ring)].pos
			if cur.Sub(prev).Cross(next.Sub(cur)).Len() < epsilon*epsilon || samePos(prev, cur) {
				ring = append(ring[:k], ring[k+1:]...)
				changed = true
				break
			}
		}
	}
	return ring
}

// convexRing reports whether every turn of ring agrees with normal.
func convexRing(ring []vertex, normal mgl64.Vec3) bool {
	n := len(ring)
	for k := 0; k < n; k++ {
		prev := ring[(k+n-1)%n].pos
		cur := ring[k].pos
		next := ring[(k+1)%n].pos
		if cur.Sub(prev).Cross(next.Sub(cur)).Dot(normal) < -epsilon*epsilon {
			return false
		}
	}
	return true
}
