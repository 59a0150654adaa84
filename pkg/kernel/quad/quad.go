// Package quad implements kernel.Kernel on packed polygon streams. Every
// solid is a read-only mesh stream; booleans go through the csg package.
//
// A Kernel owns its buffer pool and is confined to one goroutine.
package quad

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/chazu/blockmesh/pkg/collision"
	"github.com/chazu/blockmesh/pkg/csg"
	"github.com/chazu/blockmesh/pkg/intstream"
	"github.com/chazu/blockmesh/pkg/kernel"
	"github.com/chazu/blockmesh/pkg/mesh"
	"github.com/chazu/blockmesh/pkg/tessellate"
)

// Compile-time interface checks.
var (
	_ kernel.Kernel    = (*Kernel)(nil)
	_ kernel.Voxelizer = (*Kernel)(nil)
)

// DefaultSlices is used by Cylinder when the caller passes zero.
const DefaultSlices = 16

type solid struct {
	k *Kernel
	r *mesh.ReadOnly
}

// BoundingBox returns the bounds of every vertex, or zeros for an empty
// solid.
func (s *solid) BoundingBox() (min, max [3]float64) {
	box, ok := csg.Bounds(s.r)
	if !ok {
		return min, max
	}
	min = [3]float64{box.Min.X, box.Min.Y, box.Min.Z}
	max = [3]float64{box.Max.X, box.Max.Y, box.Max.Z}
	return min, max
}

// Kernel builds solids in mesh streams claimed from its own pool.
type Kernel struct {
	pool   *intstream.Pool
	log    *zap.Logger
	slices int
	solids []*mesh.ReadOnly
	closed bool
}

// Option configures a Kernel.
type Option func(*Kernel)

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(k *Kernel) {
		if l != nil {
			k.log = l
		}
	}
}

// WithPool makes the kernel claim streams from p instead of a private pool.
func WithPool(p *intstream.Pool) Option {
	return func(k *Kernel) { k.pool = p }
}

// WithSlices sets the cylinder slice count used when Cylinder gets zero.
func WithSlices(n int) Option {
	return func(k *Kernel) {
		if n > 0 {
			k.slices = n
		}
	}
}

// New returns a kernel with a private buffer pool.
func New(opts ...Option) *Kernel {
	k := &Kernel{log: zap.NewNop(), slices: DefaultSlices}
	for _, o := range opts {
		o(k)
	}
	if k.pool == nil {
		k.pool = intstream.NewPool()
	}
	return k
}

// Pool returns the pool solids are claimed from.
func (k *Kernel) Pool() *intstream.Pool { return k.pool }

func (k *Kernel) unwrap(s kernel.Solid) *mesh.ReadOnly {
	qs, ok := s.(*solid)
	if !ok {
		panic(fmt.Sprintf("quad: solid %T does not belong to this kernel", s))
	}
	if qs.k != k {
		panic("quad: solid belongs to another kernel")
	}
	return qs.r
}

func (k *Kernel) build(fn func(w *mesh.Writable)) kernel.Solid {
	if k.closed {
		panic("quad: use of closed kernel")
	}
	w := mesh.ClaimWritable(k.pool)
	fn(w)
	r := w.ReleaseToReader()
	k.solids = append(k.solids, r)
	return &solid{k: k, r: r}
}

// applyPaint sets every paint attribute of p on layer 0 of q.
func applyPaint(q *mesh.MutablePolygon, p kernel.Paint) {
	q.SetSurface(p.Surface).
		SetColorAll(0, p.Color).
		SetRotation(0, p.Rotation).
		SetLockUV(0, p.LockUV).
		SetEmissive(0, p.Emissive).
		SetSprite(0, p.Sprite)
}

// Box creates an axis-aligned box from min to max in block coordinates.
func (k *Kernel) Box(min, max [3]float64, p kernel.Paint) kernel.Solid {
	return k.build(func(w *mesh.Writable) {
		applyPaint(w.Writer(), p)
		w.SaveDefaults()
		mesh.Box(w,
			float32(min[0]), float32(min[1]), float32(min[2]),
			float32(max[0]), float32(max[1]), float32(max[2]))
	})
}

// Cylinder creates a Y-axis cylinder inscribed in the unit block. Zero
// slices means the kernel default.
func (k *Kernel) Cylinder(slices int, p kernel.Paint) kernel.Solid {
	if slices <= 0 {
		slices = k.slices
	}
	return k.build(func(w *mesh.Writable) {
		mesh.UnitCylinder(w, slices, func(q *mesh.MutablePolygon) {
			applyPaint(q, p)
		}, p.Surface, p.Surface, p.Surface)
	})
}

func (k *Kernel) boolean(op csg.Op, a, b kernel.Solid) kernel.Solid {
	ra, rb := k.unwrap(a), k.unwrap(b)
	out := k.build(func(w *mesh.Writable) {
		csg.Apply(op, ra, rb, w)
	})
	k.log.Debug("csg",
		zap.Stringer("op", op),
		zap.Int("a", ra.Count()),
		zap.Int("b", rb.Count()),
		zap.Int("out", k.unwrap(out).Count()))
	return out
}

// Union returns the union of two solids.
func (k *Kernel) Union(a, b kernel.Solid) kernel.Solid {
	return k.boolean(csg.OpUnion, a, b)
}

// Difference returns a minus b.
func (k *Kernel) Difference(a, b kernel.Solid) kernel.Solid {
	return k.boolean(csg.OpDifference, a, b)
}

// Intersection returns the intersection of two solids.
func (k *Kernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return k.boolean(csg.OpIntersection, a, b)
}

func (k *Kernel) transform(s kernel.Solid, m mgl32.Mat4) kernel.Solid {
	r := k.unwrap(s)
	return k.build(func(w *mesh.Writable) {
		mesh.Transform(r, m, w)
	})
}

// Translate moves a solid by (x, y, z).
func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return k.transform(s, mgl32.Translate3D(float32(x), float32(y), float32(z)))
}

// RotationMatrix returns the rotation by Euler degrees applied X first,
// then Y, then Z, about kernel.BlockCenter.
func RotationMatrix(x, y, z float64) mgl32.Mat4 {
	c := kernel.BlockCenter
	cx, cy, cz := float32(c[0]), float32(c[1]), float32(c[2])
	rot := mgl32.HomogRotate3DZ(mgl32.DegToRad(float32(z))).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(float32(y)))).
		Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(float32(x))))
	return mgl32.Translate3D(cx, cy, cz).Mul4(rot).Mul4(mgl32.Translate3D(-cx, -cy, -cz))
}

// Rotate rotates a solid by Euler angles in degrees about the block center.
func (k *Kernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return k.transform(s, RotationMatrix(x, y, z))
}

// ToMesh triangulates the solid's polygons.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	return tessellate.FromStream(k.unwrap(s)), nil
}

// Occupancy voxelizes the solid on the collision grid.
func (k *Kernel) Occupancy(s kernel.Solid) collision.Occupancy {
	return collision.OccupancyFromMesh(k.unwrap(s))
}

// Stream returns the polygon stream behind s. It stays valid until Close.
func (k *Kernel) Stream(s kernel.Solid) *mesh.ReadOnly {
	return k.unwrap(s)
}

// Live returns the number of solids not yet released.
func (k *Kernel) Live() int { return len(k.solids) }

// Close releases every solid the kernel created. Solids must not be used
// afterwards.
func (k *Kernel) Close() error {
	for _, r := range k.solids {
		r.Release()
	}
	k.log.Debug("kernel closed", zap.Int("solids", len(k.solids)))
	k.solids = nil
	k.closed = true
	return nil
}
