package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/chazu/blockmesh/pkg/geom"
)

// facePoint maps a point of a face's semantic rectangle to the unit block.
// x runs to the right and y to the top of the face as seen from outside;
// depth is the inset from the block boundary.
func facePoint(f geom.Face, x, y, depth float32) mgl32.Vec3 {
	switch f {
	case geom.Up:
		return mgl32.Vec3{x, 1 - depth, 1 - y}
	case geom.Down:
		return mgl32.Vec3{x, depth, y}
	case geom.East:
		return mgl32.Vec3{1 - depth, y, 1 - x}
	case geom.West:
		return mgl32.Vec3{depth, y, x}
	case geom.North:
		return mgl32.Vec3{1 - x, y, depth}
	default: // South
		return mgl32.Vec3{x, y, 1 - depth}
	}
}

// rotateToTop re-expresses a point given relative to top in the face's
// default orientation.
func rotateToTop(f, top geom.Face, x, y float32) (float32, float32) {
	def := geom.DefaultTopOf(f)
	switch top {
	case def:
		return x, y
	case geom.RightOf(f, def):
		return y, 1 - x
	case geom.BottomOf(f, def):
		return 1 - x, 1 - y
	case geom.LeftOf(f, def):
		return 1 - y, x
	default:
		// top parallel to the face has no meaning; keep the default.
		return x, y
	}
}

// SetupFaceQuad makes the polygon a quad on face f covering the rectangle
// (x0,y0)-(x1,y1), inset by depth, with top as the face that is "up" for
// the rectangle. Vertices wind counter-clockwise seen from outside so the
// face normal equals f. Unlocked layers get UVs from the rectangle.
func (m *MutablePolygon) SetupFaceQuad(f geom.Face, x0, y0, x1, y1, depth float32, top geom.Face) *MutablePolygon {
	m.SetVertexCount(4)
	m.SetNominalFace(f)
	m.ClearFaceNormal()

	xs := [4]float32{x0, x1, x1, x0}
	ys := [4]float32{y0, y0, y1, y1}
	layers := m.LayerCount()
	for i := 0; i < 4; i++ {
		rx, ry := rotateToTop(f, top, xs[i], ys[i])
		m.SetPosVec(i, facePoint(f, rx, ry, depth))
		m.ClearNormal(i)
		for l := 0; l < layers; l++ {
			if !m.LockUV(l) {
				m.SetUV(i, l, xs[i], 1-ys[i])
			}
		}
	}
	return m
}

// SetupFaceQuadFull is SetupFaceQuad over the whole face at depth 0 with the
// face's default top.
func (m *MutablePolygon) SetupFaceQuadFull(f geom.Face) *MutablePolygon {
	return m.SetupFaceQuad(f, 0, 0, 1, 1, 0, geom.DefaultTopOf(f))
}

// lockedUV projects a block position onto face f.
func lockedUV(f geom.Face, p mgl32.Vec3) (u, v float32) {
	x, y, z := p[0], p[1], p[2]
	switch f {
	case geom.Up:
		return x, z
	case geom.Down:
		return x, 1 - z
	case geom.East:
		return 1 - z, 1 - y
	case geom.West:
		return z, 1 - y
	case geom.North:
		return 1 - x, 1 - y
	default: // South
		return x, 1 - y
	}
}

// AssignLockedUVCoordinates derives the UVs of a layer from vertex
// positions projected onto the nominal face.
func (m *MutablePolygon) AssignLockedUVCoordinates(layer int) *MutablePolygon {
	f := m.NominalFace()
	for i := 0; i < m.VertexCount(); i++ {
		u, v := lockedUV(f, m.Pos(i))
		m.SetUV(i, layer, u, v)
	}
	return m
}
