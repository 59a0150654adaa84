package geom

import "fmt"

// Rotation is a texture rotation in quarter turns.
type Rotation uint8

const (
	Rotate0 Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

// RotationCount is the number of distinct rotations.
const RotationCount = 4

// Degrees returns the rotation angle.
func (r Rotation) Degrees() int {
	return int(r) * 90
}

// RotationFromDegrees maps a multiple of 90 degrees (any sign) to a rotation.
func RotationFromDegrees(deg int) (Rotation, error) {
	if deg%90 != 0 {
		return Rotate0, fmt.Errorf("geom: rotation %d is not a multiple of 90", deg)
	}
	q := (deg / 90) % RotationCount
	if q < 0 {
		q += RotationCount
	}
	return Rotation(q), nil
}

func (r Rotation) String() string {
	return fmt.Sprintf("rot%d", r.Degrees())
}

// RenderLayer is the blend mode a polygon layer is drawn with.
type RenderLayer uint8

const (
	Solid RenderLayer = iota
	Cutout
	CutoutMipped
	Translucent
)

// RenderLayerCount is the number of render layers.
const RenderLayerCount = 4

var renderLayerNames = [RenderLayerCount]string{"solid", "cutout", "cutout_mipped", "translucent"}

func (l RenderLayer) String() string {
	if int(l) < RenderLayerCount {
		return renderLayerNames[l]
	}
	return fmt.Sprintf("RenderLayer(%d)", uint8(l))
}

// ParseRenderLayer returns the render layer with the given name.
func ParseRenderLayer(name string) (RenderLayer, error) {
	for i, n := range renderLayerNames {
		if n == name {
			return RenderLayer(i), nil
		}
	}
	return Solid, fmt.Errorf("geom: unknown render layer %q", name)
}
