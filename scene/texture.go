package scene

import (
	"math"

	"github.com/pkeir/path-tracer/asset/texture"
	"github.com/pkeir/path-tracer/types"
)

type TextureType uint8

const (
	SolidTexture TextureType = iota
	CheckerTexture
	ImageTexture
)

// Image lookup filter.
type Filter uint8

const (
	NearestFilter Filter = iota
	BilinearFilter
)

// The frequency used by checker textures that do not specify one.
const DefaultCheckerScale = 10

// The color returned by image textures whose backing image is unavailable.
var FallbackColor = types.XYZ(0, 1, 1)

// Defines a surface texture. Only the fields relevant to the texture type
// are used.
type Texture struct {
	Type TextureType

	// Solid color.
	Color types.Vec3

	// Checker colors and tiling frequency.
	Even  types.Vec3
	Odd   types.Vec3
	Scale float32

	// Index into the scene image list and the lookup filter.
	Image  int32
	Filter Filter
}

// Create a solid color texture.
func NewSolid(color types.Vec3) Texture {
	return Texture{Type: SolidTexture, Color: color}
}

// Create a 3D checker texture.
func NewChecker(even, odd types.Vec3) Texture {
	return Texture{Type: CheckerTexture, Even: even, Odd: odd, Scale: DefaultCheckerScale}
}

// Create a texture backed by a scene image.
func NewImageTexture(image int, filter Filter) Texture {
	return Texture{Type: ImageTexture, Image: int32(image), Filter: filter}
}

// Get the texture color at point p with surface coordinates (u, v).
func (t *Texture) Sample(images []texture.Image, p types.Vec3, u, v float32) types.Vec3 {
	switch t.Type {
	case CheckerTexture:
		scale := t.Scale
		if scale == 0 {
			scale = DefaultCheckerScale
		}
		sines := math.Sin(float64(scale*p[0])) * math.Sin(float64(scale*p[1])) * math.Sin(float64(scale*p[2]))
		if sines < 0 {
			return t.Odd
		}
		return t.Even
	case ImageTexture:
		if t.Image < 0 || int(t.Image) >= len(images) {
			return FallbackColor
		}
		img := &images[t.Image]
		if !img.Valid() {
			return FallbackColor
		}
		if t.Filter == BilinearFilter {
			return img.Bilinear(u, v)
		}
		return img.Nearest(u, v)
	default:
		return t.Color
	}
}
