// Package collision approximates the solid part of a block with a small set
// of axis-aligned boxes on an 8x8x8 voxel grid.
//
// Every box the finder can emit is precomputed once as a volume key: a Z
// slice combined with an XY area pattern. Keys sort by volume so a greedy
// scan can take the largest fit first.
package collision

import (
	"fmt"
	"math/bits"
	"sort"
)

// Grid is the number of voxels along each axis.
const Grid = 8

// Slice is a contiguous run of Z layers.
type Slice struct {
	Depth int
	Min   int
	// Max is inclusive.
	Max int
	// LayerBits has bit z set for every layer in the slice.
	LayerBits uint8
	Ordinal   int
}

func (s Slice) String() string { return fmt.Sprintf("D%d_%d", s.Depth, s.Min) }

// SliceCount is the number of distinct slices.
const SliceCount = 36

var (
	slices      [SliceCount]Slice
	sliceLookup [Grid][Grid]*Slice

	// Areas holds every axis-aligned rectangle of the 8x8 grid as a bit
	// pattern (bit x|y<<3), largest first.
	Areas []uint64
	// areaBounds packs minX | maxX<<3 | minY<<6 | maxY<<9 for each area.
	areaBounds []uint16

	// VolumeKeys holds every slice/area pair of at least two voxels, in
	// descending key order.
	VolumeKeys []int
	// VolumeCount4Plus is how many leading VolumeKeys hold four or more
	// voxels.
	VolumeCount4Plus int
)

func init() {
	buildSlices()
	buildAreas()
	buildVolumeKeys()
}

func buildSlices() {
	n := 0
	for depth := 1; depth <= Grid; depth++ {
		for z0 := 0; z0+depth <= Grid; z0++ {
			s := Slice{Depth: depth, Min: z0, Max: z0 + depth - 1, Ordinal: n}
			for z := s.Min; z <= s.Max; z++ {
				s.LayerBits |= 1 << z
			}
			slices[n] = s
			sliceLookup[s.Min][s.Max] = &slices[n]
			n++
		}
	}
}

type rect struct {
	x0, y0, xSize, ySize int
}

func buildAreas() {
	var rects []rect
	for xSize := 1; xSize <= Grid; xSize++ {
		for ySize := 1; ySize <= Grid; ySize++ {
			for x0 := 0; x0+xSize <= Grid; x0++ {
				for y0 := 0; y0+ySize <= Grid; y0++ {
					rects = append(rects, rect{x0, y0, xSize, ySize})
				}
			}
		}
	}
	sort.Slice(rects, func(i, j int) bool {
		a, b := rects[i], rects[j]
		if va, vb := a.xSize*a.ySize, b.xSize*b.ySize; va != vb {
			return va > vb
		}
		if a.y0 != b.y0 {
			return a.y0 < b.y0
		}
		if a.x0 != b.x0 {
			return a.x0 < b.x0
		}
		return a.ySize < b.ySize
	})

	Areas = make([]uint64, len(rects))
	areaBounds = make([]uint16, len(rects))
	for i, r := range rects {
		Areas[i] = MakePattern(r.x0, r.y0, r.xSize, r.ySize)
		maxX, maxY := r.x0+r.xSize-1, r.y0+r.ySize-1
		areaBounds[i] = uint16(r.x0 | maxX<<3 | r.y0<<6 | maxY<<9)
	}
}

func buildVolumeKeys() {
	for s := range slices {
		for i := range Areas {
			if slices[s].Depth*bits.OnesCount64(Areas[i]) > 1 {
				VolumeKeys = append(VolumeKeys, VolumeKey(s, i))
			}
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(VolumeKeys)))

	VolumeCount4Plus = sort.Search(len(VolumeKeys), func(i int) bool {
		return VolumeFromKey(VolumeKeys[i]) < 4
	})
}

// MakePattern returns the area bits of an xSize by ySize rectangle at
// (x0, y0).
func MakePattern(x0, y0, xSize, ySize int) uint64 {
	var p uint64
	for x := 0; x < xSize; x++ {
		for y := 0; y < ySize; y++ {
			p |= 1 << AreaBitIndex(x0+x, y0+y)
		}
	}
	return p
}

// AreaBitIndex returns the pattern bit for column (x, y).
func AreaBitIndex(x, y int) int { return x | y<<3 }

// SliceByMinMax returns the slice covering minZ..maxZ inclusive.
func SliceByMinMax(minZ, maxZ int) Slice { return *sliceLookup[minZ][maxZ] }

// Slices returns every slice in ordinal order.
func Slices() []Slice { return slices[:] }

// AreaBounds returns the inclusive XY bounds of area i.
func AreaBounds(i int) (minX, minY, maxX, maxY int) {
	b := int(areaBounds[i])
	return b & 7, (b >> 6) & 7, (b >> 3) & 7, (b >> 9) & 7
}

// VolumeKey encodes slice ordinal s and area index i. Larger keys have
// larger volumes.
func VolumeKey(s, i int) int {
	v := slices[s].Depth * bits.OnesCount64(Areas[i])
	return v<<17 | i<<6 | s
}

// VolumeFromKey returns the voxel count of a key.
func VolumeFromKey(k int) int { return k >> 17 }

// PatternIndexFromKey returns the area index of a key.
func PatternIndexFromKey(k int) int { return (k >> 6) & 2047 }

// PatternFromKey returns the area bits of a key.
func PatternFromKey(k int) uint64 { return Areas[PatternIndexFromKey(k)] }

// SliceFromKey returns the Z slice of a key.
func SliceFromKey(k int) Slice { return slices[k&63] }

// DoVolumesIntersect reports whether two volumes share any voxel.
func DoVolumesIntersect(a, b int) bool {
	return SliceFromKey(a).LayerBits&SliceFromKey(b).LayerBits != 0 &&
		PatternFromKey(a)&PatternFromKey(b) != 0
}

// AreVolumesDisjoint reports whether two volumes share no voxel.
func AreVolumesDisjoint(a, b int) bool { return !DoVolumesIntersect(a, b) }

// DoesVolumeIncludeBit reports whether voxel (x, y, z) is in volume k.
func DoesVolumeIncludeBit(k, x, y, z int) bool {
	return SliceFromKey(k).LayerBits&(1<<z) != 0 && PatternFromKey(k)&(1<<AreaBitIndex(x, y)) != 0
}

// AreVolumesSame reports whether k spans exactly the given inclusive bounds.
func AreVolumesSame(k, x0, y0, z0, x1, y1, z1 int) bool {
	s := SliceFromKey(k)
	if s.Min != z0 || s.Max != z1 {
		return false
	}
	minX, minY, maxX, maxY := AreaBounds(PatternIndexFromKey(k))
	return minX == x0 && minY == y0 && maxX == x1 && maxY == y1
}

// IsVolumeIncluded reports whether big strictly contains small. A volume
// does not include itself.
func IsVolumeIncluded(big, small int) bool {
	if VolumeFromKey(big) <= VolumeFromKey(small) {
		return false
	}
	sb := SliceFromKey(small).LayerBits
	if SliceFromKey(big).LayerBits&sb != sb {
		return false
	}
	sp := PatternFromKey(small)
	return PatternFromKey(big)&sp == sp
}

// IntersectingVoxelCount returns how many voxels two volumes share.
func IntersectingVoxelCount(a, b int) int {
	layers := SliceFromKey(a).LayerBits & SliceFromKey(b).LayerBits
	if layers == 0 {
		return 0
	}
	return bits.OnesCount8(layers) * bits.OnesCount64(PatternFromKey(a)&PatternFromKey(b))
}

// UnionVoxelCount returns the voxel count of the smallest box enclosing
// both volumes.
func UnionVoxelCount(a, b int) int {
	sa, sb := SliceFromKey(a), SliceFromKey(b)
	depth := max(sa.Max, sb.Max) - min(sa.Min, sb.Min) + 1

	ax0, ay0, ax1, ay1 := AreaBounds(PatternIndexFromKey(a))
	bx0, by0, bx1, by1 := AreaBounds(PatternIndexFromKey(b))
	x := max(ax1, bx1) - min(ax0, bx0) + 1
	y := max(ay1, by1) - min(ay0, by0) + 1
	return depth * x * y
}

// SplitScore estimates how many extra boxes target must be cut into if
// actor is chosen: one per actor face strictly inside target, less the
// piece actor absorbs. Volumes that do not intersect score 0.
func SplitScore(actor, target int) int {
	if AreVolumesDisjoint(actor, target) {
		return 0
	}
	as, ts := SliceFromKey(actor), SliceFromKey(target)
	n := 0
	if as.Min > ts.Min && as.Min <= ts.Max {
		n++
	}
	if as.Max >= ts.Min && as.Max < ts.Max {
		n++
	}

	tx0, ty0, tx1, ty1 := AreaBounds(PatternIndexFromKey(target))
	ax0, ay0, ax1, ay1 := AreaBounds(PatternIndexFromKey(actor))
	if ax0 > tx0 && ax0 <= tx1 {
		n++
	}
	if ax1 >= tx0 && ax1 < tx1 {
		n++
	}
	if ay0 > ty0 && ay0 <= ty1 {
		n++
	}
	if ay1 >= ty0 && ay1 < ty1 {
		n++
	}
	if n == 0 {
		return 0
	}
	return n - 1
}
