package scene

import (
	"fmt"
	"math"

	"github.com/pkeir/path-tracer/sampler"
	"github.com/pkeir/path-tracer/types"
)

// Precomputed viewport for a camera. All lanes share it read-only.
type Viewport struct {
	Origin     types.Vec3
	LowerLeft  types.Vec3
	Horizontal types.Vec3
	Vertical   types.Vec3

	// Orthonormal camera basis; W points away from the look direction.
	U types.Vec3
	V types.Vec3
	W types.Vec3

	LensRadius float32
}

func (vp Viewport) String() string {
	return fmt.Sprintf(
		"Viewport:\nOrigin : (%3.3f, %3.3f, %3.3f)\nLL     : (%3.3f, %3.3f, %3.3f)\nH      : (%3.3f, %3.3f, %3.3f)\nV      : (%3.3f, %3.3f, %3.3f)\nLens   : %3.3f",
		vp.Origin[0], vp.Origin[1], vp.Origin[2],
		vp.LowerLeft[0], vp.LowerLeft[1], vp.LowerLeft[2],
		vp.Horizontal[0], vp.Horizontal[1], vp.Horizontal[2],
		vp.Vertical[0], vp.Vertical[1], vp.Vertical[2],
		vp.LensRadius,
	)
}

// The camera type controls the scene camera.
type Camera struct {
	LookFrom types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3

	// Vertical camera FOV in degrees.
	FOV float32

	// Lens aperture and the distance to the plane in perfect focus.
	Aperture  float32
	FocusDist float32

	// Viewport aspect ratio (width / height).
	Aspect float32

	Viewport Viewport
}

func NewCamera(fov float32) *Camera {
	return &Camera{
		LookFrom:  types.Vec3{0, 0, 0},
		LookAt:    types.Vec3{0, 0, -1},
		Up:        types.Vec3{0, 1, 0},
		FOV:       fov,
		FocusDist: 1,
		Aspect:    1,
	}
}

// Setup camera aspect ratio and recalculate the viewport.
func (c *Camera) SetupProjection(aspect float32) {
	c.Aspect = aspect
	c.Update()
}

// Update camera viewport.
func (c *Camera) Update() {
	theta := float64(c.FOV) * math.Pi / 180.0
	viewportH := float32(2.0 * math.Tan(theta/2))
	viewportW := c.Aspect * viewportH

	focusDist := c.FocusDist
	if focusDist <= 0 {
		focusDist = 1
	}

	vp := &c.Viewport
	vp.W = c.LookFrom.Sub(c.LookAt).Normalize()
	vp.U = c.Up.Cross(vp.W).Normalize()
	vp.V = vp.W.Cross(vp.U)

	vp.Origin = c.LookFrom
	vp.Horizontal = vp.U.Mul(focusDist * viewportW)
	vp.Vertical = vp.V.Mul(focusDist * viewportH)
	vp.LowerLeft = vp.Origin.
		Sub(vp.Horizontal.Mul(0.5)).
		Sub(vp.Vertical.Mul(0.5)).
		Sub(vp.W.Mul(focusDist))
	vp.LensRadius = c.Aperture / 2
}

// Generate a ray through the normalized viewport coordinates (s, t) where
// (0, 0) is the lower-left corner. The ray origin is jittered inside the lens
// disk; two values are always drawn from src.
func (c *Camera) GetRay(s, t float32, src sampler.Source) types.Ray {
	vp := &c.Viewport
	rd := sampler.InUnitDisk(src).Mul(vp.LensRadius)
	offset := vp.U.Mul(rd[0]).Add(vp.V.Mul(rd[1]))

	origin := vp.Origin.Add(offset)
	dir := vp.LowerLeft.
		Add(vp.Horizontal.Mul(s)).
		Add(vp.Vertical.Mul(t)).
		Sub(origin)
	return types.NewRay(origin, dir)
}
