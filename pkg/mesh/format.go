package mesh

import (
	"github.com/chazu/blockmesh/pkg/bits"
	"github.com/chazu/blockmesh/pkg/geom"
)

// Format selects the optional words a stream's records carry.
type Format uint8

const (
	// FormatLink adds a link word to every record.
	FormatLink Format = 1 << iota
	// FormatTag adds a tag word to every record.
	FormatTag
)

// FormatCSG is the format CSG inputs and outputs are staged in.
const FormatCSG = FormatLink | FormatTag

// NoLinkOrTag is the link or tag value of a record that has none.
const NoLinkOrTag = -1

// MaxVertices is the largest vertex count a record can hold.
const MaxVertices = 63

// MaxLayers is the number of texture layers a polygon can carry.
const MaxLayers = 3

// Fixed word offsets shared by every record.
const (
	wordHeader  = 0
	wordPaintA  = 1
	wordPaintB  = 2
	wordSurface = 3
	wordNormalX = 4
	fixedBase   = 7
)

// Offsets inside a vertex.
const (
	vertexX      = 0
	vertexNormal = 3
	vertexLayers = 4
	layerStride  = 3
)

var (
	headerPacker = bits.NewPacker32("header")

	hVertexCount   = headerPacker.Int(MaxVertices + 1)
	hLayerCount    = headerPacker.Int(MaxLayers + 1)
	hDeleted       = headerPacker.Bool()
	hHasLink       = headerPacker.Bool()
	hHasTag        = headerPacker.Bool()
	hMutable       = headerPacker.Bool()
	hFaceNormalSet = headerPacker.Bool()
	hNominalFace   = bits.NewEnum[geom.Face](headerPacker, geom.FaceCount)
)

var (
	paintAPacker = bits.NewPacker32("paintA")

	pRotation       [MaxLayers]bits.Enum[geom.Rotation]
	pNoContractUV   [MaxLayers]bits.Bool
	pEmissive       [MaxLayers]bits.Bool
	pDisableAO      [MaxLayers]bits.Bool
	pDisableDiffuse [MaxLayers]bits.Bool
	pRenderLayer    [MaxLayers]bits.Enum[geom.RenderLayer]
	pTextureSalt    bits.Int

	paintBPacker = bits.NewPacker32("paintB")

	pLockUV [MaxLayers]bits.Bool
)

func init() {
	for i := range pRotation {
		pRotation[i] = bits.NewEnum[geom.Rotation](paintAPacker, geom.RotationCount)
	}
	for i := range pNoContractUV {
		pNoContractUV[i] = paintAPacker.Bool()
	}
	for i := range pEmissive {
		pEmissive[i] = paintAPacker.Bool()
	}
	for i := range pDisableAO {
		pDisableAO[i] = paintAPacker.Bool()
	}
	for i := range pDisableDiffuse {
		pDisableDiffuse[i] = paintAPacker.Bool()
	}
	for i := range pRenderLayer {
		pRenderLayer[i] = bits.NewEnum[geom.RenderLayer](paintAPacker, geom.RenderLayerCount)
	}
	pTextureSalt = paintAPacker.Int(256)

	for i := range pLockUV {
		pLockUV[i] = paintBPacker.Bool()
	}

	buildLayouts()
}

// layout locates the variable words of a record. One layout exists per
// combination of mutability, link, tag and layer count.
type layout struct {
	linkOff      int // -1 when absent
	tagOff       int // -1 when absent
	spriteOff    int
	slots        int
	fixed        int
	vertexStride int
}

// layouts[mutable][link][tag][layerCount]; index 0 of layerCount is unused.
var layouts [2][2][2][MaxLayers + 1]layout

func buildLayouts() {
	for m := 0; m < 2; m++ {
		for l := 0; l < 2; l++ {
			for t := 0; t < 2; t++ {
				for lc := 1; lc <= MaxLayers; lc++ {
					lay := &layouts[m][l][t][lc]
					off := fixedBase
					lay.linkOff, lay.tagOff = -1, -1
					if l == 1 {
						lay.linkOff = off
						off++
					}
					if t == 1 {
						lay.tagOff = off
						off++
					}
					lay.slots = lc
					if m == 1 {
						lay.slots = MaxLayers
					}
					lay.spriteOff = off
					off += lay.slots
					lay.fixed = off
					lay.vertexStride = vertexLayers + layerStride*lay.slots
				}
			}
		}
	}
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

func layoutFor(mutable, link, tag bool, layerCount int) *layout {
	if layerCount < 1 {
		layerCount = 1
	}
	return &layouts[b2i(mutable)][b2i(link)][b2i(tag)][layerCount]
}

func layoutOf(header uint32) *layout {
	return layoutFor(hMutable.Get(header), hHasLink.Get(header), hHasTag.Get(header), int(hLayerCount.Get(header)))
}

func (l *layout) stride(vertexCount int) int {
	return l.fixed + vertexCount*l.vertexStride
}

func (l *layout) vertex(i int) int {
	return l.fixed + i*l.vertexStride
}

// strideOf returns the total word count of the record whose header is h.
func strideOf(h uint32) int {
	return layoutOf(h).stride(int(hVertexCount.Get(h)))
}
