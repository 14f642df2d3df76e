package cpu

import (
	"math"
	"testing"

	"github.com/pkeir/path-tracer/frame"
	"github.com/pkeir/path-tracer/sampler"
	"github.com/pkeir/path-tracer/scene"
	"github.com/pkeir/path-tracer/tracer"
	"github.com/pkeir/path-tracer/types"
)

func singleSphereKernel(t *testing.T, frameW, frameH, spp, depth uint32) *Kernel {
	sc, err := scene.Builtin("single", scene.BuiltinOptions{})
	if err != nil {
		t.Fatal(err)
	}
	return &Kernel{
		Scene:           sc,
		Camera:          sc.Camera,
		FrameW:          frameW,
		FrameH:          frameH,
		SamplesPerPixel: spp,
		MaxDepth:        depth,
	}
}

func TestSkyColor(t *testing.T) {
	type spec struct {
		dir types.Vec3
		exp types.Vec3
	}

	specs := []spec{
		{types.XYZ(0, 1, 0), types.XYZ(0.5, 0.7, 1.0)},
		{types.XYZ(0, -5, 0), types.XYZ(1, 1, 1)},
		{types.XYZ(1, 0, 0), types.XYZ(0.75, 0.85, 1.0)},
	}

	for index, s := range specs {
		got := SkyColor(s.dir)
		if !approxEqual(got, s.exp, 1e-6) {
			t.Errorf("[spec %d] expected sky color %v; got %v", index, s.exp, got)
		}
	}
}

func TestSkyColorBounds(t *testing.T) {
	const steps = 64
	for i := 0; i <= steps; i++ {
		// unit.y = 2t - 1 for the gradient parameter t
		y := 2*float32(i)/steps - 1
		dir := types.XYZ(float32(math.Sqrt(float64(1-y*y))), y, 0)

		got := SkyColor(dir)
		for c := 0; c < 3; c++ {
			lo, hi := skyZenith[c], skyHorizon[c]
			if lo > hi {
				lo, hi = hi, lo
			}
			if got[c] < lo-1e-6 || got[c] > hi+1e-6 {
				t.Fatalf("[step %d] expected channel %d in [%f, %f]; got %f", i, c, lo, hi, got[c])
			}
		}
	}
}

func TestBounceColorMetalAbsorption(t *testing.T) {
	metalSphere := func(fuzz float32) *Kernel {
		sc := scene.NewScene()
		mat := scene.NewMetal(scene.NewSolid(types.XYZ(0.8, 0.8, 0.8)), fuzz)
		if err := sc.AddPrimitive(scene.NewSphere(types.XYZ(0, 0, 0), 1, mat)); err != nil {
			t.Fatal(err)
		}
		return &Kernel{Scene: sc, MaxDepth: 4}
	}

	// Hits the sphere at (-0.6, 0.8, 0) and reflects towards (0.28, 0.96, 0).
	r := types.NewRay(types.XYZ(-5, 0.8, 0), types.XYZ(1, 0, 0))

	// A fuzz vector of roughly (0.6, -0.8, 0) pushes the reflection below
	// the surface.
	draws := []float32{0.5, 0.8524, 0.999}

	k := metalSphere(1)
	if got := k.BounceColor(r, k.MaxDepth, sampler.NewSequence(draws...)); got != (types.Vec3{}) {
		t.Fatalf("expected absorbed metal bounce to yield black; got %v", got)
	}

	k = metalSphere(0)
	got := k.BounceColor(r, k.MaxDepth, sampler.NewSequence(draws...))
	if got == (types.Vec3{}) {
		t.Fatal("expected mirror reflection to reach the sky")
	}
}

func TestBounceColorDepthBudget(t *testing.T) {
	k := singleSphereKernel(t, 4, 4, 1, 0)

	// Rays that miss still need a bounce to reach the sky.
	miss := types.NewRay(types.XYZ(0, 0, 3), types.XYZ(0, 1, 0))
	if got := k.BounceColor(miss, 0, sampler.NewSequence(0.5)); got != (types.Vec3{}) {
		t.Fatalf("expected zero depth to yield black; got %v", got)
	}
	if got := k.BounceColor(miss, 1, sampler.NewSequence(0.5)); !approxEqual(got, SkyColor(miss.Dir), 0) {
		t.Fatalf("expected escaping ray to yield the sky color; got %v", got)
	}

	hit := types.NewRay(types.XYZ(0, 0, 3), types.XYZ(0, 0, -1))
	if got := k.BounceColor(hit, 1, sampler.NewSequence(0.5)); got != (types.Vec3{}) {
		t.Fatalf("expected exhausted bounce budget to yield black; got %v", got)
	}
}

func TestBounceColorEnergy(t *testing.T) {
	k := singleSphereKernel(t, 4, 4, 1, 8)
	hit := types.NewRay(types.XYZ(0, 0, 3), types.XYZ(0, 0, -1))

	for i := uint32(0); i < 256; i++ {
		got := k.BounceColor(hit, k.MaxDepth, sampler.NewLane(42, 0, i, 0))
		for c := 0; c < 3; c++ {
			if got[c] < 0 || got[c] > 0.5+1e-6 {
				t.Fatalf("[lane %d] expected channel %d in [0, 0.5]; got %f", i, c, got[c])
			}
		}
	}
}

func TestTracePixelSingleSphere(t *testing.T) {
	k := singleSphereKernel(t, 4, 4, 1, 1)

	for y := uint32(0); y < 4; y++ {
		for x := uint32(0); x < 4; x++ {
			got := k.TracePixel(x, y, sampler.NewSequence(0.5))

			center := (x == 1 || x == 2) && (y == 1 || y == 2)
			if center {
				if got != (types.Vec3{}) {
					t.Errorf("expected pixel (%d, %d) covering the sphere to be black; got %v", x, y, got)
				}
				continue
			}

			if x == 0 || x == 3 {
				if y == 0 || y == 3 {
					ray := k.Camera.GetRay((float32(x)+0.5)/4, (float32(y)+0.5)/4, sampler.NewSequence(0.5))
					if exp := SkyColor(ray.Dir); got != exp {
						t.Errorf("expected corner pixel (%d, %d) to be %v; got %v", x, y, exp, got)
					}
				}
			}
		}
	}
}

func TestTracePixelAveragesSamples(t *testing.T) {
	values := []float32{0.1, 0.7, 0.3, 0.9, 0.45, 0.25, 0.6}

	multi := singleSphereKernel(t, 8, 8, 4, 4)
	got := multi.TracePixel(3, 4, sampler.NewSequence(values...))

	single := singleSphereKernel(t, 8, 8, 1, 4)
	src := sampler.NewSequence(values...)
	var sum types.Vec3
	for s := 0; s < 4; s++ {
		sum = sum.Add(single.TracePixel(3, 4, src))
	}
	exp := sum.Div(4)

	if !approxEqual(got, exp, 1e-6) {
		t.Fatalf("expected averaged color %v; got %v", exp, got)
	}
}

func TestTracePixelZeroSamples(t *testing.T) {
	k := singleSphereKernel(t, 4, 4, 0, 4)
	if got := k.TracePixel(0, 0, sampler.NewSequence(0.5)); got != (types.Vec3{}) {
		t.Fatalf("expected black for zero samples; got %v", got)
	}
}

func TestDebugNormals(t *testing.T) {
	k := singleSphereKernel(t, 4, 4, 1, 4)
	k.Debug = tracer.PrimaryRayNormals

	// Zero jitter sends the pixel (2, 2) ray through the viewport center.
	got := k.TracePixel(2, 2, sampler.NewSequence(0))
	for c := 0; c < 3; c++ {
		if got[c] < 0 || got[c] > 1 {
			t.Fatalf("expected normal colors in [0, 1]; got %v", got)
		}
	}
	if got[2] < 0.9 {
		t.Fatalf("expected a front facing normal to map to a blue-ish color; got %v", got)
	}

	k.Debug = tracer.PrimaryRayDepth
	got = k.TracePixel(2, 2, sampler.NewSequence(0))
	if got[0] <= 0 || got[0] >= 1 || got[0] != got[1] || got[1] != got[2] {
		t.Fatalf("expected a gray depth value in (0, 1); got %v", got)
	}

	if got = k.TracePixel(0, 0, sampler.NewSequence(0)); got != (types.Vec3{}) {
		t.Fatalf("expected debug miss to be black; got %v", got)
	}
}

func TestKernelRunMatchesLanes(t *testing.T) {
	const (
		seed       = 1234
		frameCount = 3
	)
	k := singleSphereKernel(t, 10, 6, 2, 3)
	nd := NDRange{GlobalW: 10, GlobalH: 6, LocalW: 8, LocalH: 8}

	fb1 := frame.New(10, 6)
	k.Run(fb1, nd, 1, seed, frameCount)

	fb4 := frame.New(10, 6)
	k.Run(fb4, nd, 4, seed, frameCount)

	for y := uint32(0); y < 6; y++ {
		for x := uint32(0); x < 10; x++ {
			exp := k.TracePixel(x, y, sampler.NewLane(seed, frameCount, x, y))
			if got := fb1.At(x, y); got != exp {
				t.Fatalf("[1 unit] expected pixel (%d, %d) to be %v; got %v", x, y, exp, got)
			}
			if got := fb4.At(x, y); got != exp {
				t.Fatalf("[4 units] expected pixel (%d, %d) to be %v; got %v", x, y, exp, got)
			}
		}
	}
}

func TestKernelRunBlockOffset(t *testing.T) {
	k := singleSphereKernel(t, 4, 8, 1, 2)
	fb := frame.New(4, 8)
	k.Run(fb, NDRange{GlobalW: 4, GlobalH: 2, OffsetY: 5}, 2, 7, 0)

	for y := uint32(0); y < 8; y++ {
		for x := uint32(0); x < 4; x++ {
			written := fb.At(x, y) != (types.Vec3{})
			if inBlock := y == 5 || y == 6; written != inBlock {
				t.Fatalf("expected pixel (%d, %d) written=%t; got %t", x, y, inBlock, written)
			}
		}
	}
}

func approxEqual(a, b types.Vec3, eps float64) bool {
	for i := 0; i < 3; i++ {
		if math.Abs(float64(a[i]-b[i])) > eps {
			return false
		}
	}
	return true
}
