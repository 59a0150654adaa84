package tessellate

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/blockmesh/pkg/kernel"
)

// Triangles flattens meshes into sdfx triangles.
func Triangles(meshes ...*kernel.Mesh) []*sdf.Triangle3 {
	var out []*sdf.Triangle3
	for _, m := range meshes {
		if m == nil {
			continue
		}
		vert := func(i uint32) v3.Vec {
			return v3.Vec{
				X: float64(m.Vertices[i*3]),
				Y: float64(m.Vertices[i*3+1]),
				Z: float64(m.Vertices[i*3+2]),
			}
		}
		for t := 0; t+2 < len(m.Indices); t += 3 {
			out = append(out, &sdf.Triangle3{vert(m.Indices[t]), vert(m.Indices[t+1]), vert(m.Indices[t+2])})
		}
	}
	return out
}

// WriteSTL writes every mesh into one binary STL file.
func WriteSTL(path string, meshes []*kernel.Mesh) error {
	tris := Triangles(meshes...)
	if len(tris) == 0 {
		return fmt.Errorf("tessellate: no triangles to write to %s", path)
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("tessellate: write %s: %w", path, err)
	}
	return nil
}
