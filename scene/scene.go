package scene

import (
	"bytes"
	"fmt"
	"strings"
	"unsafe"

	"github.com/olekukonko/tablewriter"
	"github.com/pkeir/path-tracer/asset/texture"
	"github.com/pkeir/path-tracer/types"
)

type Scene struct {
	Camera *Camera

	Primitives []Primitive
	Images     []texture.Image
}

func NewScene() *Scene {
	return &Scene{
		Primitives: make([]Primitive, 0),
		Images:     make([]texture.Image, 0),
	}
}

// Attach a camera to the scene.
func (s *Scene) SetCamera(camera *Camera) {
	s.Camera = camera
}

// Add a primitive to the scene.
func (s *Scene) AddPrimitive(primitive Primitive) error {
	switch primitive.Type {
	case SpherePrimitive:
		if primitive.Radius <= 0 {
			return fmt.Errorf("scene: sphere radius must be positive; got %f", primitive.Radius)
		}
	case XYRectPrimitive, XZRectPrimitive, YZRectPrimitive:
		axis := rectAxis(primitive.Type)
		a, b := planeAxes[axis][0], planeAxes[axis][1]
		if primitive.Min[a] >= primitive.Max[a] || primitive.Min[b] >= primitive.Max[b] {
			return fmt.Errorf("scene: degenerate rectangle")
		}
	case BoxPrimitive:
		for axis := 0; axis < 3; axis++ {
			if primitive.Min[axis] >= primitive.Max[axis] {
				return fmt.Errorf("scene: degenerate box")
			}
		}
	default:
		return fmt.Errorf("scene: unknown primitive type %d", primitive.Type)
	}

	s.Primitives = append(s.Primitives, primitive)
	return nil
}

// Add a texture image to the scene and return its index. Images that failed
// to load may still be added so that textures referencing them fall back to
// a fixed color.
func (s *Scene) AddImage(img texture.Image) int {
	s.Images = append(s.Images, img)
	return len(s.Images) - 1
}

// Find the nearest intersection within (tMin, tMax) by scanning all
// primitives. Every hit narrows the upper bound for the rest of the scan.
func (s *Scene) Hit(r types.Ray, tMin, tMax float32, rec *HitRecord) bool {
	var tmp HitRecord
	hitAnything := false
	closestSoFar := tMax

	for i := range s.Primitives {
		if s.Primitives[i].Hit(r, tMin, closestSoFar, &tmp) {
			hitAnything = true
			closestSoFar = tmp.T
			*rec = tmp
		}
	}
	return hitAnything
}

// Generate a table with the scene contents.
func (s *Scene) Stats() string {
	var counts [5]int
	for _, prim := range s.Primitives {
		if int(prim.Type) < len(counts) {
			counts[prim.Type]++
		}
	}
	rects := counts[XYRectPrimitive] + counts[XZRectPrimitive] + counts[YZRectPrimitive]
	primBytes := int(unsafe.Sizeof(Primitive{}))

	texelBytes := 0
	validImages := 0
	for _, img := range s.Images {
		texelBytes += len(img.Pixels) * int(unsafe.Sizeof(types.Vec3{}))
		if img.Valid() {
			validImages++
		}
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Asset Type", "Asset", "Count", "Size"})
	table.Append([]string{"Geometry", "---", fmt.Sprint(len(s.Primitives)), fmtSize(len(s.Primitives) * primBytes)})
	table.Append([]string{"", "Spheres", fmt.Sprint(counts[SpherePrimitive]), fmtSize(counts[SpherePrimitive] * primBytes)})
	table.Append([]string{"", "Rectangles", fmt.Sprint(rects), fmtSize(rects * primBytes)})
	table.Append([]string{"", "Boxes", fmt.Sprint(counts[BoxPrimitive]), fmtSize(counts[BoxPrimitive] * primBytes)})
	table.Append([]string{" ", " ", " ", " "})
	table.Append([]string{"Textures", "---", fmt.Sprint(len(s.Images)), fmtSize(texelBytes)})
	table.Append([]string{"", "Loaded", fmt.Sprint(validImages), ""})
	table.Append([]string{"", "Missing", fmt.Sprint(len(s.Images) - validImages), ""})
	table.SetFooter([]string{"Total", " ", " ", strings.TrimLeft(fmtSize(len(s.Primitives)*primBytes + texelBytes), " ")})

	table.Render()
	return buf.String()
}

func rectAxis(t PrimitiveType) int {
	switch t {
	case XYRectPrimitive:
		return 2
	case XZRectPrimitive:
		return 1
	default:
		return 0
	}
}

// Format a byte count with the appropriate byte/kb/mb unit.
func fmtSize(totalBytes int) string {
	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", totalBytes)
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", float32(totalBytes)/1e3)
	}
	return fmt.Sprintf("%5.1f mb", float32(totalBytes)/1e6)
}
