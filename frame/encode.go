package frame

import (
	"bufio"
	"fmt"
	"image/png"
	"io"
	"math"
	"path/filepath"
	"strings"
)

// Write the framebuffer as a plain text PPM (P3) image. Rows are written
// top-to-bottom in display order, i.e. from row Height-1 down to row 0.
func WritePPM(w io.Writer, fb *Framebuffer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "P3\n%d %d\n255\n", fb.Width, fb.Height)
	for y := int(fb.Height) - 1; y >= 0; y-- {
		for x := uint32(0); x < fb.Width; x++ {
			c := fb.Pixels[uint32(y)*fb.Width+x]
			fmt.Fprintf(bw, "%d %d %d\n", ToByte(c[0]), ToByte(c[1]), ToByte(c[2]))
		}
	}
	return bw.Flush()
}

// Write the framebuffer as a png image.
func WritePNG(w io.Writer, fb *Framebuffer) error {
	return png.Encode(w, fb.Image())
}

// Encode the framebuffer using the format implied by the filename extension.
// It returns the content type of the encoded data.
func Encode(w io.Writer, fb *Framebuffer, filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".ppm":
		return "image/x-portable-pixmap", WritePPM(w, fb)
	case ".png":
		return "image/png", WritePNG(w, fb)
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
}

func sqrt(f float32) float32 {
	if f <= 0 {
		return 0
	}
	return float32(math.Sqrt(float64(f)))
}

func clamp(f, min, max float32) float32 {
	// NaN samples map to black
	if f != f || f < min {
		return min
	}
	if f > max {
		return max
	}
	return f
}
