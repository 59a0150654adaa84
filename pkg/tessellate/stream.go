package tessellate

import (
	"github.com/chazu/blockmesh/pkg/kernel"
	"github.com/chazu/blockmesh/pkg/mesh"
)

// FromStream fans every polygon of r into triangles. Vertices are not
// shared between polygons. Vertices without their own normal take the
// polygon's face normal; UVs and colors come from layer 0.
func FromStream(r mesh.Reader) *kernel.Mesh {
	m := &kernel.Mesh{}
	for ok := r.Origin(); ok; ok = r.Next() {
		p := r.Reader()
		n := p.VertexCount()
		if n < 3 {
			continue
		}
		base := uint32(m.VertexCount())
		face := p.FaceNormal()
		for i := 0; i < n; i++ {
			pos := p.Pos(i)
			nrm := face
			if p.HasNormal(i) {
				nrm = p.Normal(i)
			}
			m.Vertices = append(m.Vertices, pos[0], pos[1], pos[2])
			m.Normals = append(m.Normals, nrm[0], nrm[1], nrm[2])
			m.UVs = append(m.UVs, p.U(i, 0), p.V(i, 0))
			m.Colors = append(m.Colors, p.Color(i, 0))
		}
		for i := 1; i+1 < n; i++ {
			m.Indices = append(m.Indices, base, base+uint32(i), base+uint32(i+1))
		}
	}
	return m
}
