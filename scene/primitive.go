package scene

import (
	"math"

	"github.com/pkeir/path-tracer/types"
)

type PrimitiveType uint8

const (
	SpherePrimitive PrimitiveType = iota
	XYRectPrimitive
	XZRectPrimitive
	YZRectPrimitive
	BoxPrimitive
)

// The in-plane axes for rectangles perpendicular to the x, y and z axes.
var planeAxes = [3][2]int{{1, 2}, {0, 2}, {0, 1}}

// Defines a scene primitive.
type Primitive struct {
	// The primitive type.
	Type PrimitiveType

	// Sphere center and radius.
	Center types.Vec3
	Radius float32

	// Rectangle and box extents. Rectangles only use the two in-plane
	// components; the remaining coordinate is fixed to K.
	Min types.Vec3
	Max types.Vec3
	K   float32

	Material Material
}

// Create new sphere primitive.
func NewSphere(center types.Vec3, radius float32, material Material) Primitive {
	return Primitive{
		Type:     SpherePrimitive,
		Center:   center,
		Radius:   radius,
		Material: material,
	}
}

// Create a rectangle on the z = k plane.
func NewXYRect(x0, x1, y0, y1, k float32, material Material) Primitive {
	return Primitive{
		Type:     XYRectPrimitive,
		Min:      types.XYZ(x0, y0, k),
		Max:      types.XYZ(x1, y1, k),
		K:        k,
		Material: material,
	}
}

// Create a rectangle on the y = k plane.
func NewXZRect(x0, x1, z0, z1, k float32, material Material) Primitive {
	return Primitive{
		Type:     XZRectPrimitive,
		Min:      types.XYZ(x0, k, z0),
		Max:      types.XYZ(x1, k, z1),
		K:        k,
		Material: material,
	}
}

// Create a rectangle on the x = k plane.
func NewYZRect(y0, y1, z0, z1, k float32, material Material) Primitive {
	return Primitive{
		Type:     YZRectPrimitive,
		Min:      types.XYZ(k, y0, z0),
		Max:      types.XYZ(k, y1, z1),
		K:        k,
		Material: material,
	}
}

// Create new axis-aligned box primitive spanning p0 to p1.
func NewBox(p0, p1 types.Vec3, material Material) Primitive {
	return Primitive{
		Type:     BoxPrimitive,
		Min:      types.MinVec3(p0, p1),
		Max:      types.MaxVec3(p0, p1),
		Material: material,
	}
}

// Test the ray against this primitive and populate rec with the nearest
// intersection inside the open interval (tMin, tMax).
func (p *Primitive) Hit(r types.Ray, tMin, tMax float32, rec *HitRecord) bool {
	var hit bool
	switch p.Type {
	case SpherePrimitive:
		hit = p.hitSphere(r, tMin, tMax, rec)
	case XYRectPrimitive:
		hit = hitAxisRect(r, 2, p.Min, p.Max, p.K, tMin, tMax, rec)
	case XZRectPrimitive:
		hit = hitAxisRect(r, 1, p.Min, p.Max, p.K, tMin, tMax, rec)
	case YZRectPrimitive:
		hit = hitAxisRect(r, 0, p.Min, p.Max, p.K, tMin, tMax, rec)
	case BoxPrimitive:
		hit = p.hitBox(r, tMin, tMax, rec)
	}

	if hit {
		rec.Material = &p.Material
	}
	return hit
}

func (p *Primitive) hitSphere(r types.Ray, tMin, tMax float32, rec *HitRecord) bool {
	oc := r.Origin.Sub(p.Center)
	a := r.Dir.LenSq()
	halfB := oc.Dot(r.Dir)
	c := oc.LenSq() - p.Radius*p.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return false
	}
	sqrtd := float32(math.Sqrt(float64(discriminant)))

	// Find the nearest root that lies in the acceptable range.
	root := (-halfB - sqrtd) / a
	if root <= tMin || root >= tMax {
		root = (-halfB + sqrtd) / a
		if root <= tMin || root >= tMax {
			return false
		}
	}

	rec.T = root
	rec.Point = r.At(root)
	outward := rec.Point.Sub(p.Center).Div(p.Radius)
	rec.SetFaceNormal(r, outward)
	rec.U, rec.V = sphereUV(outward)
	return true
}

// Scan the six box faces narrowing the range on every hit.
func (p *Primitive) hitBox(r types.Ray, tMin, tMax float32, rec *HitRecord) bool {
	var tmp HitRecord
	hitAnything := false
	closestSoFar := tMax

	for axis := 0; axis < 3; axis++ {
		for _, k := range [2]float32{p.Max[axis], p.Min[axis]} {
			if hitAxisRect(r, axis, p.Min, p.Max, k, tMin, closestSoFar, &tmp) {
				hitAnything = true
				closestSoFar = tmp.T
				*rec = tmp
			}
		}
	}
	return hitAnything
}

// Intersect a rectangle perpendicular to axis at coordinate k. The in-plane
// extents are read from min and max.
func hitAxisRect(r types.Ray, axis int, min, max types.Vec3, k, tMin, tMax float32, rec *HitRecord) bool {
	if r.Dir[axis] == 0 {
		return false
	}

	t := (k - r.Origin[axis]) / r.Dir[axis]
	if t <= tMin || t >= tMax {
		return false
	}

	a, b := planeAxes[axis][0], planeAxes[axis][1]
	pa := r.Origin[a] + t*r.Dir[a]
	pb := r.Origin[b] + t*r.Dir[b]
	if pa < min[a] || pa > max[a] || pb < min[b] || pb > max[b] {
		return false
	}

	rec.T = t
	rec.Point = r.At(t)
	rec.U = (pa - min[a]) / (max[a] - min[a])
	rec.V = (pb - min[b]) / (max[b] - min[b])

	var outward types.Vec3
	outward[axis] = 1
	rec.SetFaceNormal(r, outward)
	return true
}

// Map a point on the unit sphere to texture coordinates. u grows around the
// y axis starting from -x; v grows from the south pole.
func sphereUV(p types.Vec3) (u, v float32) {
	y := math.Max(-1, math.Min(1, float64(-p[1])))
	theta := math.Acos(y)
	phi := math.Atan2(float64(-p[2]), float64(p[0])) + math.Pi
	return float32(phi / (2 * math.Pi)), float32(theta / math.Pi)
}
