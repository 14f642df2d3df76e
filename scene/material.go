package scene

import (
	"github.com/pkeir/path-tracer/asset/texture"
	"github.com/pkeir/path-tracer/sampler"
	"github.com/pkeir/path-tracer/types"
)

type MaterialType uint8

const (
	LambertianMaterial MaterialType = iota
	MetalMaterial
)

// Defines a scene material.
type Material struct {
	// The type of the material.
	Type MaterialType

	// The surface color source.
	Texture Texture

	// Reflection perturbation in [0, 1] (metal materials only)
	Fuzz float32
}

// Create a diffuse material.
func NewLambertian(tex Texture) Material {
	return Material{Type: LambertianMaterial, Texture: tex}
}

// Create a metal material. Fuzz is clamped to [0, 1].
func NewMetal(tex Texture, fuzz float32) Material {
	if fuzz < 0 {
		fuzz = 0
	} else if fuzz > 1 {
		fuzz = 1
	}
	return Material{Type: MetalMaterial, Texture: tex, Fuzz: fuzz}
}

// Scatter an incoming ray at a hit point. It returns the attenuation color and
// the scattered ray; ok is false when the ray is absorbed.
//
// Lambertian scattering draws two values from src and metal scattering three,
// regardless of the outcome.
func (m *Material) Scatter(in types.Ray, rec *HitRecord, images []texture.Image, src sampler.Source) (attenuation types.Vec3, scattered types.Ray, ok bool) {
	attenuation = m.Texture.Sample(images, rec.Point, rec.U, rec.V)

	switch m.Type {
	case MetalMaterial:
		reflected := in.Dir.Normalize().Reflect(rec.Normal)
		dir := reflected.Add(sampler.InUnitSphere(src).Mul(m.Fuzz))
		return attenuation, types.NewRay(rec.Point, dir), dir.Dot(rec.Normal) > 0
	default:
		dir := rec.Normal.Add(sampler.UnitVector(src))
		// Catch degenerate scatter direction
		if dir.NearZero() {
			dir = rec.Normal
		}
		return attenuation, types.NewRay(rec.Point, dir), true
	}
}
