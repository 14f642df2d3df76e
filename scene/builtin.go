package scene

import (
	"fmt"
	"sort"

	"github.com/pkeir/path-tracer/asset/texture"
	"github.com/pkeir/path-tracer/log"
	"github.com/pkeir/path-tracer/sampler"
	"github.com/pkeir/path-tracer/types"
)

var logger = log.New("scene")

// Options for building the reference scenes.
type BuiltinOptions struct {
	// Seed for the procedural placement of random scene spheres.
	Seed uint64

	// Image files for the textured primitives. When fewer paths than
	// textured primitives are given the last one is reused.
	Textures []string

	// Downsize textures larger than this (0 keeps original dimensions).
	MaxTextureDim uint

	// Image texture lookup filter.
	Filter Filter
}

type builderFn func(opts BuiltinOptions) (*Scene, error)

var builtins = map[string]builderFn{
	"random": randomScene,
	"single": singleSphereScene,
	"boxes":  boxesScene,
}

// Get the names of the available reference scenes.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build one of the reference scenes.
func Builtin(name string, opts BuiltinOptions) (*Scene, error) {
	builder, exists := builtins[name]
	if !exists {
		return nil, fmt.Errorf("scene: unknown builtin scene '%s'", name)
	}
	return builder(opts)
}

// Load the texture images into the scene. Images that cannot be loaded are
// replaced by empty placeholders so that textures referencing them sample the
// fallback color.
func loadImages(sc *Scene, opts BuiltinOptions, count int) []int {
	indices := make([]int, count)
	if len(opts.Textures) == 0 {
		logger.Warning("no texture images specified; textured surfaces will use the fallback color")
		index := sc.AddImage(texture.Image{Name: "missing"})
		for i := range indices {
			indices[i] = index
		}
		return indices
	}

	loaded := make(map[string]int)
	for i := range indices {
		path := opts.Textures[len(opts.Textures)-1]
		if i < len(opts.Textures) {
			path = opts.Textures[i]
		}

		if index, exists := loaded[path]; exists {
			indices[i] = index
			continue
		}

		img, err := texture.Load(path, opts.MaxTextureDim)
		if err != nil {
			logger.Warningf("could not load texture %s: %v; using fallback color", path, err)
			img = &texture.Image{Name: path}
		}
		indices[i] = sc.AddImage(*img)
		loaded[path] = indices[i]
	}
	return indices
}

// A checkered ground, a grid of small randomly placed spheres and three
// large spheres; one mirror and two image-textured.
func randomScene(opts BuiltinOptions) (*Scene, error) {
	sc := NewScene()
	rnd := sampler.NewLane(opts.Seed, 0, 0, 0)

	ground := NewLambertian(NewChecker(types.XYZ(0.2, 0.3, 0.1), types.XYZ(0.9, 0.9, 0.9)))
	if err := sc.AddPrimitive(NewSphere(types.XYZ(0, -1000, 0), 1000, ground)); err != nil {
		return nil, err
	}

	randomColor := func(lo, hi float32) types.Vec3 {
		return types.XYZ(sampler.Range(rnd, lo, hi), sampler.Range(rnd, lo, hi), sampler.Range(rnd, lo, hi))
	}

	exclude := types.XYZ(4, 0.2, 0)
	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			chooseMat := rnd.Float32()
			center := types.XYZ(float32(a)+0.9*rnd.Float32(), 0.2, float32(b)+0.9*rnd.Float32())
			if center.Sub(exclude).Len() <= 0.9 {
				continue
			}

			var mat Material
			switch {
			case chooseMat < 0.8:
				mat = NewLambertian(NewSolid(randomColor(0, 1).MulVec(randomColor(0, 1))))
			case chooseMat < 0.95:
				mat = NewMetal(NewSolid(randomColor(0.5, 1)), sampler.Range(rnd, 0, 0.5))
			default:
				continue
			}

			if err := sc.AddPrimitive(NewSphere(center, 0.2, mat)); err != nil {
				return nil, err
			}
		}
	}

	images := loadImages(sc, opts, 2)
	large := []Primitive{
		NewSphere(types.XYZ(4, 1, 2.25), 1, NewMetal(NewSolid(types.XYZ(0.7, 0.6, 0.5)), 0)),
		NewSphere(types.XYZ(4, 1, 0), 1, NewLambertian(NewImageTexture(images[0], opts.Filter))),
		NewSphere(types.XYZ(-4, 1, 0), 1, NewLambertian(NewImageTexture(images[1], opts.Filter))),
	}
	for _, prim := range large {
		if err := sc.AddPrimitive(prim); err != nil {
			return nil, err
		}
	}

	cam := NewCamera(20)
	cam.LookFrom = types.XYZ(13, 2, 3)
	cam.LookAt = types.XYZ(0, 0, 0)
	cam.Aperture = 0.1
	cam.FocusDist = 10
	cam.SetupProjection(16.0 / 9.0)
	sc.SetCamera(cam)

	return sc, nil
}

// A diffuse unit sphere at the origin viewed from a distance of 3.
func singleSphereScene(_ BuiltinOptions) (*Scene, error) {
	sc := NewScene()
	err := sc.AddPrimitive(NewSphere(types.XYZ(0, 0, 0), 1, NewLambertian(NewSolid(types.XYZ(0.5, 0.5, 0.5)))))
	if err != nil {
		return nil, err
	}

	cam := NewCamera(60)
	cam.LookFrom = types.XYZ(0, 0, 3)
	cam.LookAt = types.XYZ(0, 0, 0)
	cam.FocusDist = 3
	cam.SetupProjection(1)
	sc.SetCamera(cam)

	return sc, nil
}

// Boxes and rectangles on a checkered ground.
func boxesScene(opts BuiltinOptions) (*Scene, error) {
	sc := NewScene()
	images := loadImages(sc, opts, 1)

	prims := []Primitive{
		NewSphere(types.XYZ(0, -1000, 0), 1000, NewLambertian(NewChecker(types.XYZ(0.2, 0.3, 0.1), types.XYZ(0.9, 0.9, 0.9)))),
		NewBox(types.XYZ(-2.5, 0, -1), types.XYZ(-1, 1.5, 0.5), NewLambertian(NewSolid(types.XYZ(0.65, 0.05, 0.05)))),
		NewBox(types.XYZ(0.5, 0, -0.5), types.XYZ(1.5, 1, 0.5), NewMetal(NewSolid(types.XYZ(0.8, 0.8, 0.8)), 0.1)),
		NewXYRect(-3, 3, 0, 3, -2, NewLambertian(NewImageTexture(images[0], opts.Filter))),
		NewYZRect(0, 2, -2, 1, 3, NewMetal(NewSolid(types.XYZ(0.9, 0.9, 0.95)), 0)),
		NewXZRect(-0.5, 0.5, 1.5, 2.5, 0.01, NewLambertian(NewSolid(types.XYZ(0.12, 0.45, 0.15)))),
		NewSphere(types.XYZ(0, 0.5, 1.5), 0.5, NewLambertian(NewSolid(types.XYZ(0.1, 0.2, 0.5)))),
	}
	for _, prim := range prims {
		if err := sc.AddPrimitive(prim); err != nil {
			return nil, err
		}
	}

	cam := NewCamera(40)
	cam.LookFrom = types.XYZ(0, 2, 7)
	cam.LookAt = types.XYZ(0, 0.75, 0)
	cam.Aperture = 0.05
	cam.FocusDist = cam.LookFrom.Sub(cam.LookAt).Len()
	cam.SetupProjection(16.0 / 9.0)
	sc.SetCamera(cam)

	return sc, nil
}
