package scene

import "github.com/pkeir/path-tracer/types"

// The outcome of a successful ray/primitive intersection test.
type HitRecord struct {
	Point  types.Vec3
	Normal types.Vec3

	// Ray parameter and surface coordinates at the hit point.
	T float32
	U float32
	V float32

	// True when the ray hit the outward facing side of the surface.
	FrontFace bool

	// The material of the hit primitive.
	Material *Material
}

// Orient the normal so that it points against the incoming ray.
func (rec *HitRecord) SetFaceNormal(r types.Ray, outward types.Vec3) {
	rec.FrontFace = r.Dir.Dot(outward) < 0
	if rec.FrontFace {
		rec.Normal = outward
	} else {
		rec.Normal = outward.Neg()
	}
}
