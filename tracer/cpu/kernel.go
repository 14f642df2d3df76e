package cpu

import (
	"math"

	"github.com/pkeir/path-tracer/frame"
	"github.com/pkeir/path-tracer/sampler"
	"github.com/pkeir/path-tracer/scene"
	"github.com/pkeir/path-tracer/tracer"
	"github.com/pkeir/path-tracer/types"
)

// Minimum ray parameter accepted for a hit. Avoids self-intersections caused
// by rounding errors when a scattered ray leaves a surface.
const TMin float32 = 0.001

var (
	skyHorizon = types.XYZ(1.0, 1.0, 1.0)
	skyZenith  = types.XYZ(0.5, 0.7, 1.0)
	black      = types.Vec3{}
	tMax       = float32(math.Inf(1))
)

// Background color for rays that escape the scene.
func SkyColor(dir types.Vec3) types.Vec3 {
	unit := dir.Normalize()
	t := 0.5 * (unit[1] + 1.0)
	return skyHorizon.Lerp(skyZenith, t)
}

// The per-lane rendering program. A kernel is immutable while lanes execute;
// every lane reads the same scene, camera and settings.
type Kernel struct {
	Scene  *scene.Scene
	Camera *scene.Camera

	FrameW uint32
	FrameH uint32

	SamplesPerPixel uint32
	MaxDepth        uint32

	Debug tracer.DebugFlag
}

// Compute the color of pixel (x, y) by averaging SamplesPerPixel jittered
// camera samples. All random values are drawn from src.
func (k *Kernel) TracePixel(x, y uint32, src sampler.Source) types.Vec3 {
	if k.SamplesPerPixel == 0 {
		return black
	}

	fw, fh := float32(k.FrameW), float32(k.FrameH)
	var color types.Vec3
	for s := uint32(0); s < k.SamplesPerPixel; s++ {
		u := (float32(x) + src.Float32()) / fw
		v := (float32(y) + src.Float32()) / fh
		r := k.Camera.GetRay(u, v, src)

		if k.Debug != tracer.Off {
			color = color.Add(k.debugColor(r))
			continue
		}
		color = color.Add(k.BounceColor(r, k.MaxDepth, src))
	}
	return color.Div(float32(k.SamplesPerPixel))
}

// Follow a ray through at most depth scattering events and return the light
// it carries back. Rays that are absorbed or run out of bounces contribute
// nothing.
func (k *Kernel) BounceColor(r types.Ray, depth uint32, src sampler.Source) types.Vec3 {
	var rec scene.HitRecord
	throughput := types.XYZ(1, 1, 1)

	for bounce := uint32(0); bounce < depth; bounce++ {
		if !k.Scene.Hit(r, TMin, tMax, &rec) {
			return throughput.MulVec(SkyColor(r.Dir))
		}

		attenuation, scattered, ok := rec.Material.Scatter(r, &rec, k.Scene.Images, src)
		if !ok {
			return black
		}
		throughput = throughput.MulVec(attenuation)
		r = scattered
	}

	return black
}

// Visualize the primary ray hit instead of shading it.
func (k *Kernel) debugColor(r types.Ray) types.Vec3 {
	var rec scene.HitRecord
	if !k.Scene.Hit(r, TMin, tMax, &rec) {
		return black
	}

	switch {
	case k.Debug&tracer.PrimaryRayNormals == tracer.PrimaryRayNormals:
		return rec.Normal.Add(types.XYZ(1, 1, 1)).Mul(0.5).Clamp(0, 1)
	case k.Debug&tracer.PrimaryRayDepth == tracer.PrimaryRayDepth:
		d := 1.0 / (1.0 + rec.T*r.Dir.Len())
		return types.XYZ(d, d, d)
	}
	return black
}

// Execute the kernel for every lane in nd and store the results in fb. Each
// compute unit reuses a single random stream which is reseeded per lane from
// (seed, frameCount, x, y) so output does not depend on scheduling.
func (k *Kernel) Run(fb *frame.Framebuffer, nd NDRange, computeUnits int, seed uint64, frameCount uint32) {
	if computeUnits < 1 {
		computeUnits = 1
	}
	lanes := make([]sampler.Lane, computeUnits)
	Dispatch(nd, computeUnits, func(unit int, x, y uint32) {
		lane := &lanes[unit]
		lane.Reset(seed, frameCount, x, y)
		fb.Pixels[fb.Index(x, y)] = k.TracePixel(x, y, lane)
	})
}
