package frame

import (
	"errors"
	"image"
	"image/color"

	"github.com/pkeir/path-tracer/types"
)

var ErrUnsupportedFormat = errors.New("frame: unsupported output format")

// A flat store of linear rgb colors. Pixel (x, y) lives at index
// y*Width + x and row 0 is the bottom row of the rendered image.
type Framebuffer struct {
	Width  uint32
	Height uint32
	Pixels []types.Vec3
}

// Allocate a framebuffer.
func New(width, height uint32) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]types.Vec3, width*height),
	}
}

// Get the linear index of pixel (x, y).
func (fb *Framebuffer) Index(x, y uint32) uint32 {
	return y*fb.Width + x
}

func (fb *Framebuffer) Set(x, y uint32, c types.Vec3) {
	fb.Pixels[y*fb.Width+x] = c
}

func (fb *Framebuffer) At(x, y uint32) types.Vec3 {
	return fb.Pixels[y*fb.Width+x]
}

// Reset all pixels to black.
func (fb *Framebuffer) Clear() {
	for i := range fb.Pixels {
		fb.Pixels[i] = types.Vec3{}
	}
}

// Convert a linear channel value to an 8-bit display value applying gamma 2.
func ToByte(c float32) int {
	return int(256 * clamp(sqrt(c), 0, 0.999))
}

// Convert the framebuffer into a gamma corrected image in display order.
func (fb *Framebuffer) Image() *image.RGBA {
	w, h := int(fb.Width), int(fb.Height)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := h - 1 - y
		for x := 0; x < w; x++ {
			c := fb.Pixels[y*w+x]
			img.SetRGBA(x, row, color.RGBA{
				R: uint8(ToByte(c[0])),
				G: uint8(ToByte(c[1])),
				B: uint8(ToByte(c[2])),
				A: 255,
			})
		}
	}
	return img
}
