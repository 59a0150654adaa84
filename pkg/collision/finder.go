package collision

import (
	"fmt"
	"math/bits"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Occupancy marks solid voxels, one 8x8 layer per Z with bit x|y<<3.
type Occupancy [Grid]uint64

// Full returns an occupancy with every voxel set.
func Full() Occupancy {
	var o Occupancy
	for z := range o {
		o[z] = ^uint64(0)
	}
	return o
}

func (o *Occupancy) Set(x, y, z int, solid bool) {
	bit := uint64(1) << AreaBitIndex(x, y)
	if solid {
		o[z] |= bit
	} else {
		o[z] &^= bit
	}
}

func (o Occupancy) Get(x, y, z int) bool {
	return o[z]&(1<<AreaBitIndex(x, y)) != 0
}

// Count returns the number of solid voxels.
func (o Occupancy) Count() int {
	n := 0
	for _, l := range o {
		n += bits.OnesCount64(l)
	}
	return n
}

func (o Occupancy) IsEmpty() bool {
	for _, l := range o {
		if l != 0 {
			return false
		}
	}
	return true
}

// FillBox sets every voxel of b.
func (o *Occupancy) FillBox(b Box) {
	p := MakePattern(b.MinX, b.MinY, b.MaxX-b.MinX+1, b.MaxY-b.MinY+1)
	for z := b.MinZ; z <= b.MaxZ; z++ {
		o[z] |= p
	}
}

// ContainsVolume reports whether every voxel of key k is set.
func (o Occupancy) ContainsVolume(k int) bool {
	s := SliceFromKey(k)
	p := PatternFromKey(k)
	for z := s.Min; z <= s.Max; z++ {
		if o[z]&p != p {
			return false
		}
	}
	return true
}

// RemoveVolume clears every voxel of key k.
func (o *Occupancy) RemoveVolume(k int) {
	s := SliceFromKey(k)
	p := PatternFromKey(k)
	for z := s.Min; z <= s.Max; z++ {
		o[z] &^= p
	}
}

// Box is an axis-aligned voxel box with inclusive max bounds.
type Box struct {
	MinX, MinY, MinZ int
	MaxX, MaxY, MaxZ int
}

// BoxFromKey returns the box covered by volume key k.
func BoxFromKey(k int) Box {
	s := SliceFromKey(k)
	x0, y0, x1, y1 := AreaBounds(PatternIndexFromKey(k))
	return Box{MinX: x0, MinY: y0, MinZ: s.Min, MaxX: x1, MaxY: y1, MaxZ: s.Max}
}

func (b Box) Volume() int {
	return (b.MaxX - b.MinX + 1) * (b.MaxY - b.MinY + 1) * (b.MaxZ - b.MinZ + 1)
}

// Bounds returns the box in unit-block coordinates.
func (b Box) Bounds() sdf.Box3 {
	const unit = 1.0 / Grid
	return sdf.Box3{
		Min: v3.Vec{X: float64(b.MinX) * unit, Y: float64(b.MinY) * unit, Z: float64(b.MinZ) * unit},
		Max: v3.Vec{X: float64(b.MaxX+1) * unit, Y: float64(b.MaxY+1) * unit, Z: float64(b.MaxZ+1) * unit},
	}
}

func (b Box) String() string {
	return fmt.Sprintf("(%d,%d,%d)-(%d,%d,%d)", b.MinX, b.MinY, b.MinZ, b.MaxX, b.MaxY, b.MaxZ)
}

// FindBoxes covers occ exactly with non-overlapping boxes, largest first.
//
// Occupancy only shrinks during the scan, so a key that does not fit when
// reached never fits later and a single pass over VolumeKeys is enough.
// The result is not guaranteed to be the smallest possible cover.
func FindBoxes(occ Occupancy) []Box {
	var out []Box
	remaining := occ
	for _, k := range VolumeKeys {
		if remaining.IsEmpty() {
			return out
		}
		if remaining.ContainsVolume(k) {
			out = append(out, BoxFromKey(k))
			remaining.RemoveVolume(k)
		}
	}

	// Isolated voxels have no key of their own.
	for z, l := range remaining {
		for l != 0 {
			i := bits.TrailingZeros64(l)
			l &= l - 1
			x, y := i&7, i>>3
			out = append(out, Box{MinX: x, MinY: y, MinZ: z, MaxX: x, MaxY: y, MaxZ: z})
		}
	}
	return out
}
