// Package geom holds the small vocabulary shared by every mesh package:
// block faces, texture rotations, render layers and the float helpers used
// to compare positions and normals inside the unit block.
package geom

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Face is one of the six axis-aligned faces of the unit block.
type Face uint8

// Faces in their canonical order. The order is part of the packed polygon
// format and must not change.
const (
	Down Face = iota
	Up
	North
	South
	West
	East
)

// FaceCount is the number of faces.
const FaceCount = 6

// Axis is a coordinate axis.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Faces lists every face in canonical order.
var Faces = [FaceCount]Face{Down, Up, North, South, West, East}

var faceNames = [FaceCount]string{"down", "up", "north", "south", "west", "east"}

var faceVecs = [FaceCount]mgl32.Vec3{
	{0, -1, 0},
	{0, 1, 0},
	{0, 0, -1},
	{0, 0, 1},
	{-1, 0, 0},
	{1, 0, 0},
}

func (f Face) String() string {
	if int(f) < FaceCount {
		return faceNames[f]
	}
	return fmt.Sprintf("Face(%d)", uint8(f))
}

// ParseFace returns the face with the given lower-case name.
func ParseFace(name string) (Face, error) {
	for i, n := range faceNames {
		if n == name {
			return Face(i), nil
		}
	}
	return Up, fmt.Errorf("geom: unknown face %q", name)
}

// Vec returns the outward unit normal of the face.
func (f Face) Vec() mgl32.Vec3 {
	return faceVecs[f]
}

// Opposite returns the face on the other side of the block.
func (f Face) Opposite() Face {
	return f ^ 1
}

// Axis returns the axis the face is perpendicular to.
func (f Face) Axis() Axis {
	switch f {
	case Down, Up:
		return AxisY
	case North, South:
		return AxisZ
	default:
		return AxisX
	}
}

// DefaultTopOf returns the face that is normally the top edge of a texture
// drawn on f.
func DefaultTopOf(f Face) Face {
	switch f {
	case Up:
		return North
	case Down:
		return South
	default:
		return Up
	}
}

// BottomOf returns the bottom edge face for f drawn with top edge top.
func BottomOf(f, top Face) Face {
	return top.Opposite()
}

// rightOf[face][top]; entries where top is parallel to face are unused and
// hold the fallback of the switch they were derived from.
var rightOf = [FaceCount][FaceCount]Face{
	Down:  {Down: South, Up: South, North: West, South: East, West: South, East: North},
	Up:    {Down: North, Up: North, North: East, South: West, West: North, East: South},
	North: {Down: East, Up: West, North: Down, South: Down, West: Down, East: Up},
	South: {Down: West, Up: East, North: Up, South: Up, West: Up, East: Down},
	West:  {Down: North, Up: South, North: Up, South: Down, West: Down, East: Down},
	East:  {Down: South, Up: North, North: Down, South: Up, West: Up, East: Up},
}

// RightOf returns the right edge face for f drawn with top edge top.
func RightOf(f, top Face) Face {
	return rightOf[f][top]
}

// LeftOf returns the left edge face for f drawn with top edge top.
func LeftOf(f, top Face) Face {
	return rightOf[f][top].Opposite()
}

// FaceForNormal returns the face whose normal has the greatest positive dot
// product with (x, y, z), or Up when none is positive.
func FaceForNormal(x, y, z float32) Face {
	result := Up
	best := float32(0)
	for _, f := range Faces {
		v := faceVecs[f]
		d := v[0]*x + v[1]*y + v[2]*z
		if d > best {
			best = d
			result = f
		}
	}
	return result
}

// FaceForVec is FaceForNormal for a vector.
func FaceForVec(n mgl32.Vec3) Face {
	return FaceForNormal(n[0], n[1], n[2])
}
