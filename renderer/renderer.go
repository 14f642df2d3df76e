package renderer

import (
	"context"

	"github.com/pkeir/path-tracer/frame"
)

type Renderer interface {
	// Render the configured number of frames and accumulate them.
	Render(ctx context.Context) error

	// Get the accumulated frame.
	Frame() *frame.Framebuffer

	// Shutdown renderer and any attached tracer.
	Close()

	// Get render statistics.
	Stats() FrameStats
}
