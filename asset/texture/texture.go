package texture

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	"github.com/pkeir/path-tracer/asset"
	"github.com/pkeir/path-tracer/log"
	"github.com/pkeir/path-tracer/types"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var logger = log.New("texture")

// A decoded texture image. Texels are stored as linear [0, 1] rgb values in
// row-major order with row 0 at the top of the image.
type Image struct {
	Name   string
	Width  int
	Height int
	Pixels []types.Vec3
}

// Create a new texture from a Resource. Images whose width or height exceeds
// maxDim are downsized preserving their aspect ratio; a zero maxDim keeps the
// original dimensions.
func New(res *asset.Resource, maxDim uint) (*Image, error) {
	img, format, err := image.Decode(res)
	if err != nil {
		return nil, fmt.Errorf("texture: could not decode %s: %w", res.Path(), err)
	}

	bounds := img.Bounds()
	if maxDim > 0 && (uint(bounds.Dx()) > maxDim || uint(bounds.Dy()) > maxDim) {
		img = resize.Thumbnail(maxDim, maxDim, img, resize.Lanczos3)
		logger.Infof("downsized %s from %dx%d to %dx%d", res.Path(), bounds.Dx(), bounds.Dy(), img.Bounds().Dx(), img.Bounds().Dy())
	}

	tex := FromImage(img)
	tex.Name = res.Path()
	logger.Debugf("loaded %s texture %s (%dx%d)", format, res.Path(), tex.Width, tex.Height)
	return tex, nil
}

// Load a texture from a local path or a remote url.
func Load(path string, maxDim uint) (*Image, error) {
	res, err := asset.NewResource(path, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return New(res, maxDim)
}

// Convert a decoded image into a texture.
func FromImage(img image.Image) *Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	tex := &Image{
		Width:  width,
		Height: height,
		Pixels: make([]types.Vec3, width*height),
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// RGBA returns uint32 in [0, 65535]
			tex.Pixels[y*width+x] = types.XYZ(
				float32(r)/65535.0,
				float32(g)/65535.0,
				float32(b)/65535.0,
			)
		}
	}

	return tex
}

// Returns true if the image holds texel data that matches its dimensions.
func (img *Image) Valid() bool {
	return img != nil && img.Width > 0 && img.Height > 0 && len(img.Pixels) == img.Width*img.Height
}

// Get the texel at (x, y). Coordinates are clamped to the image bounds.
func (img *Image) At(x, y int) types.Vec3 {
	x = clampInt(x, 0, img.Width-1)
	y = clampInt(y, 0, img.Height-1)
	return img.Pixels[y*img.Width+x]
}

// Nearest texel lookup. u and v are clamped to [0, 1]; v = 0 selects the
// bottom row.
func (img *Image) Nearest(u, v float32) types.Vec3 {
	u = clamp01(u)
	v = 1 - clamp01(v)

	return img.At(int(u*float32(img.Width)), int(v*float32(img.Height)))
}

// Bilinearly filtered lookup between the four texels surrounding (u, v).
func (img *Image) Bilinear(u, v float32) types.Vec3 {
	x := clamp01(u) * float32(img.Width-1)
	y := (1 - clamp01(v)) * float32(img.Height-1)

	x0, y0 := int(x), int(y)
	fx, fy := x-float32(x0), y-float32(y0)

	top := img.At(x0, y0).Lerp(img.At(x0+1, y0), fx)
	bottom := img.At(x0, y0+1).Lerp(img.At(x0+1, y0+1), fx)
	return top.Lerp(bottom, fy)
}

func clamp01(f float32) float32 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
