package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Epsilon is the tolerance for float comparisons inside the unit block.
const Epsilon = 1e-5

// EpsilonEquals reports whether a and b differ by less than Epsilon.
func EpsilonEquals(a, b float32) bool {
	return math.Abs(float64(a-b)) < Epsilon
}

// VecEpsilonEquals compares two vectors component-wise.
func VecEpsilonEquals(a, b mgl32.Vec3) bool {
	return EpsilonEquals(a[0], b[0]) && EpsilonEquals(a[1], b[1]) && EpsilonEquals(a[2], b[2])
}

// VertexSource is any ordered ring of positions.
type VertexSource interface {
	VertexCount() int
	Pos(i int) mgl32.Vec3
}

// IsConvex reports whether the ring turns the same way at every vertex.
// The cross product of each pair of consecutive edges is compared against
// the first one; triangles are always convex.
func IsConvex(vs VertexSource) bool {
	n := vs.VertexCount()
	if n <= 3 {
		return true
	}
	prior := vs.Pos(n - 2)
	this := vs.Pos(n - 1)
	var test mgl32.Vec3
	needTest := true
	for i := 0; i < n; i++ {
		next := vs.Pos(i)
		cross := this.Sub(prior).Cross(next.Sub(this))
		if needTest {
			needTest = false
			test = cross
		} else if test.Dot(cross) < 0 {
			return false
		}
		prior, this = this, next
	}
	return true
}

// RingNormal returns the area-weighted normal of a ring using Newell's
// method. Its length is twice the ring area; a degenerate ring yields zero.
func RingNormal(vs VertexSource) mgl32.Vec3 {
	n := vs.VertexCount()
	var sum mgl32.Vec3
	for i := 0; i < n; i++ {
		a := vs.Pos(i)
		b := vs.Pos((i + 1) % n)
		sum[0] += (a[1] - b[1]) * (a[2] + b[2])
		sum[1] += (a[2] - b[2]) * (a[0] + b[0])
		sum[2] += (a[0] - b[0]) * (a[1] + b[1])
	}
	return sum
}

// RingArea returns the area of a planar ring.
func RingArea(vs VertexSource) float32 {
	return RingNormal(vs).Len() / 2
}

// TriangleNormal returns the unit normal of the counter-clockwise triangle
// a, b, c, or zero when the triangle is degenerate.
func TriangleNormal(a, b, c mgl32.Vec3) mgl32.Vec3 {
	n := b.Sub(a).Cross(c.Sub(a))
	l := n.Len()
	if l < Epsilon*Epsilon {
		return mgl32.Vec3{}
	}
	return n.Mul(1 / l)
}

// DominantAxis returns the axis with the largest absolute component of n.
func DominantAxis(n mgl32.Vec3) Axis {
	ax, ay, az := abs32(n[0]), abs32(n[1]), abs32(n[2])
	switch {
	case ax >= ay && ax >= az:
		return AxisX
	case ay >= az:
		return AxisY
	default:
		return AxisZ
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

const (
	normalBits  = 10
	normalMax   = 1<<normalBits - 1
	normalFlag  = 1 << (3 * normalBits)
	normalScale = normalMax / 2
)

// PackNormal encodes a unit vector in one word, 10 bits per axis plus a
// presence bit, so the packed value is never zero. Zero means "no normal".
func PackNormal(n mgl32.Vec3) uint32 {
	return normalFlag | quantize(n[0]) | quantize(n[1])<<normalBits | quantize(n[2])<<(2*normalBits)
}

// UnpackNormal decodes a word produced by PackNormal. ok is false for zero.
func UnpackNormal(w uint32) (n mgl32.Vec3, ok bool) {
	if w == 0 {
		return mgl32.Vec3{}, false
	}
	n[0] = dequantize(w & normalMax)
	n[1] = dequantize((w >> normalBits) & normalMax)
	n[2] = dequantize((w >> (2 * normalBits)) & normalMax)
	return n, true
}

func quantize(c float32) uint32 {
	if c < -1 {
		c = -1
	} else if c > 1 {
		c = 1
	}
	return uint32(int32(math.Round(float64(c*normalScale))) + normalScale)
}

func dequantize(q uint32) float32 {
	return float32(int32(q)-normalScale) / normalScale
}
