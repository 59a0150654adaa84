package graph

import "fmt"

// Vec3 is a point or offset in unit-block coordinates.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Array returns v as [x, y, z].
func (v Vec3) Array() [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

// IsZero reports whether every component is zero.
func (v Vec3) IsZero() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// ---------------------------------------------------------------------------
// Paint
// ---------------------------------------------------------------------------

// PaintSpec describes how a primitive's faces are painted. Surface and
// sprite are names resolved when the model is tessellated.
type PaintSpec struct {
	Surface  string `json:"surface,omitempty"`
	Color    uint32 `json:"color"`    // 0xAARRGGBB
	Rotation int    `json:"rotation"` // degrees: 0, 90, 180 or 270
	LockUV   bool   `json:"lock_uv,omitempty"`
	Emissive bool   `json:"emissive,omitempty"`
	Sprite   string `json:"sprite,omitempty"`
}

// DefaultPaint returns opaque white paint on no surface.
func DefaultPaint() PaintSpec {
	return PaintSpec{Color: 0xFFFFFFFF}
}

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// PrimitiveKind distinguishes between primitive shapes.
type PrimitiveKind int

const (
	PrimBox      PrimitiveKind = iota // axis-aligned box
	PrimCylinder                      // Y-axis cylinder inscribed in the block
)

// BoxData is an axis-aligned box from Min to Max.
type BoxData struct {
	PrimKind PrimitiveKind `json:"prim_kind"`
	Min      Vec3          `json:"min"`
	Max      Vec3          `json:"max"`
	Paint    PaintSpec     `json:"paint"`
}

func (BoxData) nodeData() {}

// CylinderData is a cylinder inscribed in the unit block along Y.
type CylinderData struct {
	PrimKind PrimitiveKind `json:"prim_kind"`
	Slices   int           `json:"slices"` // 0 means the configured default
	Paint    PaintSpec     `json:"paint"`
}

func (CylinderData) nodeData() {}

// ---------------------------------------------------------------------------
// Boolean
// ---------------------------------------------------------------------------

// BoolOp enumerates boolean operations.
type BoolOp int

const (
	OpUnion BoolOp = iota
	OpDifference
	OpIntersection
)

func (o BoolOp) String() string {
	switch o {
	case OpUnion:
		return "union"
	case OpDifference:
		return "difference"
	case OpIntersection:
		return "intersection"
	default:
		return fmt.Sprintf("BoolOp(%d)", int(o))
	}
}

// BooleanData combines exactly two children. Difference subtracts the
// second child from the first.
type BooleanData struct {
	Op BoolOp `json:"op"`
}

func (BooleanData) nodeData() {}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData is a rotation followed by a translation of one child.
// Created by the (translate ...) and (rotate ...) Lisp forms.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
	Rotation    *Vec3 `json:"rotation,omitempty"` // Euler angles in degrees about the block center
}

func (TransformData) nodeData() {}

// ---------------------------------------------------------------------------
// Model
// ---------------------------------------------------------------------------

// ModelData is a named block model. Its children are unioned.
// Created by the (model ...) Lisp form.
type ModelData struct {
	Description string `json:"description,omitempty"`
	Collision   bool   `json:"collision"` // derive collision boxes
}

func (ModelData) nodeData() {}
