package sampler

import (
	"math"

	"github.com/pkeir/path-tracer/types"
)

const twoPi = 2 * math.Pi

// A source of uniformly distributed values in [0, 1).
type Source interface {
	Float32() float32
}

// Draw a value in [lo, hi). Consumes one value.
func Range(src Source, lo, hi float32) float32 {
	return lo + (hi-lo)*src.Float32()
}

// Draw a uniformly distributed direction on the unit sphere. Consumes two values.
func UnitVector(src Source) types.Vec3 {
	z := 1 - 2*src.Float32()
	phi := twoPi * float64(src.Float32())
	r := float32(math.Sqrt(math.Max(0, float64(1-z*z))))
	return types.XYZ(r*float32(math.Cos(phi)), r*float32(math.Sin(phi)), z)
}

// Draw a uniformly distributed point strictly inside the unit sphere.
// Consumes three values.
func InUnitSphere(src Source) types.Vec3 {
	dir := UnitVector(src)
	return dir.Mul(float32(math.Cbrt(float64(src.Float32()))))
}

// Draw a uniformly distributed point inside the unit disk on the z = 0
// plane. Consumes two values.
func InUnitDisk(src Source) types.Vec3 {
	r := float32(math.Sqrt(float64(src.Float32())))
	theta := twoPi * float64(src.Float32())
	return types.XYZ(r*float32(math.Cos(theta)), r*float32(math.Sin(theta)), 0)
}
