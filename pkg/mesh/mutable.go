package mesh

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/chazu/blockmesh/pkg/geom"
	"github.com/chazu/blockmesh/pkg/surface"
)

// White is the default vertex color.
const White uint32 = 0xFFFFFFFF

func fromBits(w uint32) float32 { return math.Float32frombits(w) }
func toBits(f float32) uint32   { return math.Float32bits(f) }

// MutablePolygon is a writer cursor. Every setter returns the receiver so
// calls can be chained.
type MutablePolygon struct {
	Polygon
	owner *Writable
}

func (m *MutablePolygon) setWord(off int, v uint32) {
	m.s.Set(m.addr+off, v)
}

func (m *MutablePolygon) setHeader(h uint32) {
	m.s.Set(m.addr+wordHeader, h)
}

func (m *MutablePolygon) mustMutable() {
	if !m.IsMutable() {
		panic("mesh: polygon record is not mutable")
	}
}

// SetVertexCount sets the number of vertices. Newly added vertices start at
// the origin with no normal, zero UVs and white color.
func (m *MutablePolygon) SetVertexCount(n int) *MutablePolygon {
	if n < 1 || n > MaxVertices {
		panic(fmt.Sprintf("mesh: vertex count %d out of range [1,%d]", n, MaxVertices))
	}
	m.mustMutable()
	h := m.header()
	old := int(hVertexCount.Get(h))
	m.setHeader(hVertexCount.Set(uint32(n), h))
	lay := m.layout()
	for i := old; i < n; i++ {
		base := m.addr + lay.vertex(i)
		for w := 0; w < lay.vertexStride; w++ {
			m.s.Set(base+w, 0)
		}
		for l := 0; l < lay.slots; l++ {
			m.s.Set(base+vertexLayers+l*layerStride+2, White)
		}
	}
	return m
}

// SetLayerCount sets the number of texture layers in use.
func (m *MutablePolygon) SetLayerCount(n int) *MutablePolygon {
	if n < 1 || n > MaxLayers {
		panic(fmt.Sprintf("mesh: layer count %d out of range [1,%d]", n, MaxLayers))
	}
	m.mustMutable()
	m.setHeader(hLayerCount.Set(uint32(n), m.header()))
	return m
}

// SetNominalFace sets the face the polygon is associated with.
func (m *MutablePolygon) SetNominalFace(f geom.Face) *MutablePolygon {
	m.setHeader(hNominalFace.Set(f, m.header()))
	return m
}

func (m *MutablePolygon) setDeleted(v bool) {
	m.setHeader(hDeleted.Set(v, m.header()))
}

// SetSurface sets the surface handle.
func (m *MutablePolygon) SetSurface(h surface.Handle) *MutablePolygon {
	m.setWord(wordSurface, uint32(h))
	return m
}

// SetLink sets the link word. The record's format must carry a link.
func (m *MutablePolygon) SetLink(v int) *MutablePolygon {
	lay := m.layout()
	if lay.linkOff < 0 {
		panic("mesh: record format has no link")
	}
	m.setWord(lay.linkOff, uint32(int32(v)))
	return m
}

// SetTag sets the tag word. The record's format must carry a tag.
func (m *MutablePolygon) SetTag(v int) *MutablePolygon {
	lay := m.layout()
	if lay.tagOff < 0 {
		panic("mesh: record format has no tag")
	}
	m.setWord(lay.tagOff, uint32(int32(v)))
	return m
}

func (m *MutablePolygon) setPaintA(v uint32) { m.setWord(wordPaintA, v) }

// SetRotation sets the texture rotation of a layer.
func (m *MutablePolygon) SetRotation(layer int, r geom.Rotation) *MutablePolygon {
	m.setPaintA(pRotation[layer].Set(r, m.word(wordPaintA)))
	return m
}

// SetContractUV sets UV contraction for a layer.
func (m *MutablePolygon) SetContractUV(layer int, v bool) *MutablePolygon {
	m.setPaintA(pNoContractUV[layer].Set(!v, m.word(wordPaintA)))
	return m
}

// SetEmissive sets full brightness for a layer.
func (m *MutablePolygon) SetEmissive(layer int, v bool) *MutablePolygon {
	m.setPaintA(pEmissive[layer].Set(v, m.word(wordPaintA)))
	return m
}

// SetDisableAO disables ambient occlusion for a layer.
func (m *MutablePolygon) SetDisableAO(layer int, v bool) *MutablePolygon {
	m.setPaintA(pDisableAO[layer].Set(v, m.word(wordPaintA)))
	return m
}

// SetDisableDiffuse disables diffuse shading for a layer.
func (m *MutablePolygon) SetDisableDiffuse(layer int, v bool) *MutablePolygon {
	m.setPaintA(pDisableDiffuse[layer].Set(v, m.word(wordPaintA)))
	return m
}

// SetRenderLayer sets the blend mode of a layer.
func (m *MutablePolygon) SetRenderLayer(layer int, l geom.RenderLayer) *MutablePolygon {
	m.setPaintA(pRenderLayer[layer].Set(l, m.word(wordPaintA)))
	return m
}

// SetTextureSalt sets the texture salt, 0 to 255.
func (m *MutablePolygon) SetTextureSalt(v int) *MutablePolygon {
	m.setPaintA(pTextureSalt.Set(uint32(v), m.word(wordPaintA)))
	return m
}

// SetLockUV sets whether a layer's UVs are derived from world position.
func (m *MutablePolygon) SetLockUV(layer int, v bool) *MutablePolygon {
	m.setWord(wordPaintB, pLockUV[layer].Set(v, m.word(wordPaintB)))
	return m
}

// SetSprite sets the sprite handle of a layer.
func (m *MutablePolygon) SetSprite(layer int, h surface.SpriteHandle) *MutablePolygon {
	lay := m.layout()
	if layer < 0 || layer >= lay.slots {
		panic(fmt.Sprintf("mesh: layer %d out of range [0,%d)", layer, lay.slots))
	}
	m.setWord(lay.spriteOff+layer, uint32(h))
	return m
}

// SetFaceNormal overrides the computed face normal.
func (m *MutablePolygon) SetFaceNormal(n mgl32.Vec3) *MutablePolygon {
	m.setWord(wordNormalX, toBits(n[0]))
	m.setWord(wordNormalX+1, toBits(n[1]))
	m.setWord(wordNormalX+2, toBits(n[2]))
	m.setHeader(hFaceNormalSet.Set(true, m.header()))
	return m
}

// ClearFaceNormal removes the face normal override.
func (m *MutablePolygon) ClearFaceNormal() *MutablePolygon {
	m.setHeader(hFaceNormalSet.Set(false, m.header()))
	return m
}

func (m *MutablePolygon) vertexBase(i int) int {
	if i < 0 || i >= m.VertexCount() {
		panic(fmt.Sprintf("mesh: vertex %d out of range [0,%d)", i, m.VertexCount()))
	}
	return m.addr + m.layout().vertex(i)
}

// SetPos sets the position of vertex i.
func (m *MutablePolygon) SetPos(i int, x, y, z float32) *MutablePolygon {
	base := m.vertexBase(i) + vertexX
	m.s.SetFloat(base, x)
	m.s.SetFloat(base+1, y)
	m.s.SetFloat(base+2, z)
	return m
}

// SetPosVec sets the position of vertex i from a vector.
func (m *MutablePolygon) SetPosVec(i int, v mgl32.Vec3) *MutablePolygon {
	return m.SetPos(i, v[0], v[1], v[2])
}

// SetNormal sets the normal of vertex i.
func (m *MutablePolygon) SetNormal(i int, n mgl32.Vec3) *MutablePolygon {
	m.s.Set(m.vertexBase(i)+vertexNormal, geom.PackNormal(n))
	return m
}

// ClearNormal removes the normal of vertex i so it falls back to the face
// normal.
func (m *MutablePolygon) ClearNormal(i int) *MutablePolygon {
	m.s.Set(m.vertexBase(i)+vertexNormal, 0)
	return m
}

func (m *MutablePolygon) layerBase(i, layer int) int {
	lay := m.layout()
	if layer < 0 || layer >= lay.slots {
		panic(fmt.Sprintf("mesh: layer %d out of range [0,%d)", layer, lay.slots))
	}
	return m.vertexBase(i) + vertexLayers + layer*layerStride
}

// SetUV sets the texture coordinates of vertex i in a layer.
func (m *MutablePolygon) SetUV(i, layer int, u, v float32) *MutablePolygon {
	base := m.layerBase(i, layer)
	m.s.SetFloat(base, u)
	m.s.SetFloat(base+1, v)
	return m
}

// SetColor sets the color of vertex i in a layer.
func (m *MutablePolygon) SetColor(i, layer int, color uint32) *MutablePolygon {
	m.s.Set(m.layerBase(i, layer)+2, color)
	return m
}

// SetColorAll sets the color of every vertex in a layer.
func (m *MutablePolygon) SetColorAll(layer int, color uint32) *MutablePolygon {
	for i := 0; i < m.VertexCount(); i++ {
		m.SetColor(i, layer, color)
	}
	return m
}

// Vertex sets position, layer 0 UV and layer 0 color of vertex i.
func (m *MutablePolygon) Vertex(i int, x, y, z, u, v float32, color uint32) *MutablePolygon {
	return m.SetPos(i, x, y, z).SetUV(i, 0, u, v).SetColor(i, 0, color)
}

// CopyFrom copies every attribute of p. Vertices are copied too when
// includeVertices is set; otherwise the vertex count is left alone.
func (m *MutablePolygon) CopyFrom(p *Polygon, includeVertices bool) *MutablePolygon {
	m.mustMutable()
	src := p.header()
	h := m.header()
	h = hLayerCount.Set(hLayerCount.Get(src), h)
	h = hNominalFace.Set(hNominalFace.Get(src), h)
	h = hFaceNormalSet.Set(hFaceNormalSet.Get(src), h)
	m.setHeader(h)

	m.setWord(wordPaintA, p.word(wordPaintA))
	m.setWord(wordPaintB, p.word(wordPaintB))
	m.setWord(wordSurface, p.word(wordSurface))
	for k := 0; k < 3; k++ {
		m.setWord(wordNormalX+k, p.word(wordNormalX+k))
	}

	lay := m.layout()
	if lay.linkOff >= 0 {
		m.setWord(lay.linkOff, uint32(int32(p.Link())))
	}
	if lay.tagOff >= 0 {
		m.setWord(lay.tagOff, uint32(int32(p.Tag())))
	}
	layers := p.LayerCount()
	for l := 0; l < lay.slots; l++ {
		var sprite surface.SpriteHandle
		if l < layers {
			sprite = p.Sprite(l)
		}
		m.setWord(lay.spriteOff+l, uint32(sprite))
	}

	if includeVertices {
		n := p.VertexCount()
		m.SetVertexCount(n)
		for i := 0; i < n; i++ {
			m.CopyVertexFrom(i, p, i)
		}
	}
	return m
}

// CopyVertexFrom copies position, normal and every used layer of vertex j
// of p into vertex i.
func (m *MutablePolygon) CopyVertexFrom(i int, p *Polygon, j int) *MutablePolygon {
	base := m.vertexBase(i)
	srcBase := p.addr + p.layout().vertex(j)
	for k := 0; k < vertexLayers; k++ {
		m.s.Set(base+k, p.s.Get(srcBase+k))
	}
	layers := p.LayerCount()
	if c := m.LayerCount(); c < layers {
		layers = c
	}
	for l := 0; l < layers; l++ {
		for k := 0; k < layerStride; k++ {
			off := vertexLayers + l*layerStride + k
			m.s.Set(base+off, p.s.Get(srcBase+off))
		}
	}
	return m
}

// Append adds a copy of the polygon to the owning stream and resets the
// writer to the saved defaults. It returns the new record's address.
func (m *MutablePolygon) Append() int {
	if m.owner == nil {
		panic("mesh: polygon has no owning stream")
	}
	return m.owner.Append()
}
