package collision

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/blockmesh/pkg/mesh"
)

// OccupancyFromFunc sets every voxel whose center satisfies inside.
// Coordinates passed to inside are in the unit block.
func OccupancyFromFunc(inside func(x, y, z float64) bool) Occupancy {
	var o Occupancy
	for z := 0; z < Grid; z++ {
		for y := 0; y < Grid; y++ {
			for x := 0; x < Grid; x++ {
				if inside(center(x), center(y), center(z)) {
					o.Set(x, y, z, true)
				}
			}
		}
	}
	return o
}

func center(i int) float64 { return (float64(i) + 0.5) / Grid }

type triangle [3]mgl64.Vec3

// OccupancyFromMesh voxelizes a closed mesh. A voxel is solid when a ray
// from its center along +X crosses the surface an odd number of times.
func OccupancyFromMesh(r mesh.Reader) Occupancy {
	var tris []triangle
	for ok := r.Origin(); ok; ok = r.Next() {
		p := r.Reader()
		a := vec64(p, 0)
		for i := 1; i+1 < p.VertexCount(); i++ {
			tris = append(tris, triangle{a, vec64(p, i), vec64(p, i+1)})
		}
	}
	if len(tris) == 0 {
		return Occupancy{}
	}

	dir := mgl64.Vec3{1, 0, 0}
	return OccupancyFromFunc(func(x, y, z float64) bool {
		// Nudge off the shared diagonals of fanned quads.
		origin := mgl64.Vec3{x, y + 1.3e-7, z + 2.9e-7}
		hits := 0
		for _, t := range tris {
			if rayHits(origin, dir, t) {
				hits++
			}
		}
		return hits%2 == 1
	})
}

func vec64(p *mesh.Polygon, i int) mgl64.Vec3 {
	v := p.Pos(i)
	return mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}

// rayHits is the Moller-Trumbore test, counting only hits in front of the
// origin.
func rayHits(origin, dir mgl64.Vec3, t triangle) bool {
	const eps = 1e-9
	e1 := t[1].Sub(t[0])
	e2 := t[2].Sub(t[0])
	p := dir.Cross(e2)
	det := e1.Dot(p)
	if det > -eps && det < eps {
		return false
	}
	inv := 1 / det
	s := origin.Sub(t[0])
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return false
	}
	q := s.Cross(e1)
	v := dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return false
	}
	return e2.Dot(q)*inv > eps
}
