package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/chazu/blockmesh/pkg/geom"
	"github.com/chazu/blockmesh/pkg/intstream"
	"github.com/chazu/blockmesh/pkg/surface"
)

// Polygon is a read cursor over one packed record. It is a view into a
// stream owned by someone else and becomes invalid when that stream is
// released.
type Polygon struct {
	s    *intstream.Stream
	addr int
}

var _ geom.VertexSource = (*Polygon)(nil)

func (p *Polygon) moveTo(s *intstream.Stream, addr int) {
	p.s = s
	p.addr = addr
}

func (p *Polygon) header() uint32 {
	return p.s.Get(p.addr + wordHeader)
}

func (p *Polygon) layout() *layout {
	return layoutOf(p.header())
}

func (p *Polygon) word(off int) uint32 {
	return p.s.Get(p.addr + off)
}

func (p *Polygon) vertexWord(i, off int) uint32 {
	return p.s.Get(p.addr + p.layout().vertex(i) + off)
}

func (p *Polygon) layerWord(i, layer, off int) uint32 {
	lay := p.layout()
	if layer < 0 || layer >= lay.slots {
		panic(fmt.Sprintf("mesh: layer %d out of range [0,%d)", layer, lay.slots))
	}
	return p.s.Get(p.addr + lay.vertex(i) + vertexLayers + layer*layerStride + off)
}

// Address returns the record's word offset in its stream.
func (p *Polygon) Address() int { return p.addr }

// Stride returns the number of words the record occupies.
func (p *Polygon) Stride() int { return strideOf(p.header()) }

// VertexCount returns the number of vertices.
func (p *Polygon) VertexCount() int { return int(hVertexCount.Get(p.header())) }

// LayerCount returns the number of texture layers in use (1 to 3).
func (p *Polygon) LayerCount() int { return int(hLayerCount.Get(p.header())) }

// IsDeleted reports whether the record has been logically removed.
func (p *Polygon) IsDeleted() bool { return hDeleted.Get(p.header()) }

// IsMutable reports whether the record reserves every layer slot.
func (p *Polygon) IsMutable() bool { return hMutable.Get(p.header()) }

// NominalFace returns the block face the polygon is associated with.
func (p *Polygon) NominalFace() geom.Face { return hNominalFace.Get(p.header()) }

// Surface returns the interned surface handle.
func (p *Polygon) Surface() surface.Handle { return surface.Handle(p.word(wordSurface)) }

// Link returns the link word, or NoLinkOrTag when the format has none.
func (p *Polygon) Link() int {
	lay := p.layout()
	if lay.linkOff < 0 {
		return NoLinkOrTag
	}
	return int(int32(p.word(lay.linkOff)))
}

// Tag returns the tag word, or NoLinkOrTag when the format has none.
func (p *Polygon) Tag() int {
	lay := p.layout()
	if lay.tagOff < 0 {
		return NoLinkOrTag
	}
	return int(int32(p.word(lay.tagOff)))
}

// Rotation returns the texture rotation of a layer.
func (p *Polygon) Rotation(layer int) geom.Rotation { return pRotation[layer].Get(p.word(wordPaintA)) }

// ContractUV reports whether UVs of a layer are contracted to avoid bleed.
func (p *Polygon) ContractUV(layer int) bool { return !pNoContractUV[layer].Get(p.word(wordPaintA)) }

// Emissive reports whether a layer is full bright.
func (p *Polygon) Emissive(layer int) bool { return pEmissive[layer].Get(p.word(wordPaintA)) }

// DisableAO reports whether ambient occlusion is off for a layer.
func (p *Polygon) DisableAO(layer int) bool { return pDisableAO[layer].Get(p.word(wordPaintA)) }

// DisableDiffuse reports whether diffuse shading is off for a layer.
func (p *Polygon) DisableDiffuse(layer int) bool {
	return pDisableDiffuse[layer].Get(p.word(wordPaintA))
}

// RenderLayer returns the blend mode of a layer.
func (p *Polygon) RenderLayer(layer int) geom.RenderLayer {
	return pRenderLayer[layer].Get(p.word(wordPaintA))
}

// TextureSalt returns the texture randomization salt.
func (p *Polygon) TextureSalt() int { return int(pTextureSalt.Get(p.word(wordPaintA))) }

// LockUV reports whether a layer's UVs are derived from world position.
func (p *Polygon) LockUV(layer int) bool { return pLockUV[layer].Get(p.word(wordPaintB)) }

// Sprite returns the sprite handle of a layer.
func (p *Polygon) Sprite(layer int) surface.SpriteHandle {
	lay := p.layout()
	if layer < 0 || layer >= lay.slots {
		panic(fmt.Sprintf("mesh: layer %d out of range [0,%d)", layer, lay.slots))
	}
	return surface.SpriteHandle(p.word(lay.spriteOff + layer))
}

// X returns the x coordinate of vertex i.
func (p *Polygon) X(i int) float32 { return p.floatAt(i, vertexX) }

// Y returns the y coordinate of vertex i.
func (p *Polygon) Y(i int) float32 { return p.floatAt(i, vertexX+1) }

// Z returns the z coordinate of vertex i.
func (p *Polygon) Z(i int) float32 { return p.floatAt(i, vertexX+2) }

func (p *Polygon) floatAt(i, off int) float32 {
	return p.s.GetFloat(p.addr + p.layout().vertex(i) + off)
}

// Pos returns the position of vertex i.
func (p *Polygon) Pos(i int) mgl32.Vec3 {
	base := p.addr + p.layout().vertex(i) + vertexX
	return mgl32.Vec3{p.s.GetFloat(base), p.s.GetFloat(base + 1), p.s.GetFloat(base + 2)}
}

// U returns the u texture coordinate of vertex i in a layer.
func (p *Polygon) U(i, layer int) float32 {
	return fromBits(p.layerWord(i, layer, 0))
}

// V returns the v texture coordinate of vertex i in a layer.
func (p *Polygon) V(i, layer int) float32 {
	return fromBits(p.layerWord(i, layer, 1))
}

// Color returns the ARGB color of vertex i in a layer.
func (p *Polygon) Color(i, layer int) uint32 {
	return p.layerWord(i, layer, 2)
}

// HasNormal reports whether vertex i carries its own normal.
func (p *Polygon) HasNormal(i int) bool {
	return p.vertexWord(i, vertexNormal) != 0
}

// Normal returns the normal of vertex i, falling back to the face normal.
func (p *Polygon) Normal(i int) mgl32.Vec3 {
	if n, ok := geom.UnpackNormal(p.vertexWord(i, vertexNormal)); ok {
		return n
	}
	return p.FaceNormal()
}

// HasFaceNormal reports whether the face normal was set explicitly.
func (p *Polygon) HasFaceNormal() bool { return hFaceNormalSet.Get(p.header()) }

// FaceNormal returns the explicit face normal, or the normal of the first
// three vertices when none was set. A degenerate polygon yields zero.
func (p *Polygon) FaceNormal() mgl32.Vec3 {
	if p.HasFaceNormal() {
		base := p.addr + wordNormalX
		return mgl32.Vec3{p.s.GetFloat(base), p.s.GetFloat(base + 1), p.s.GetFloat(base + 2)}
	}
	if p.VertexCount() < 3 {
		return mgl32.Vec3{}
	}
	return geom.TriangleNormal(p.Pos(0), p.Pos(1), p.Pos(2))
}

// IsConvex reports whether the polygon's ring is convex.
func (p *Polygon) IsConvex() bool { return geom.IsConvex(p) }

// Area returns the area of the polygon.
func (p *Polygon) Area() float32 { return geom.RingArea(p) }

// String implements fmt.Stringer for debugging.
func (p *Polygon) String() string {
	return fmt.Sprintf("polygon@%d(verts=%d layers=%d face=%v)", p.addr, p.VertexCount(), p.LayerCount(), p.NominalFace())
}
