package renderer

import "github.com/pkeir/path-tracer/tracer"

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Number of samples per pixel and frame.
	SamplesPerPixel uint32

	// Max number of bounces per sample.
	MaxDepth uint32

	// Work-group (tile) dims. Zero selects 8x8.
	TileW uint32
	TileH uint32

	// Seed for the per-lane random streams.
	Seed uint64

	// Number of frames to accumulate into the final image. Zero is treated
	// as a single frame.
	Frames uint32

	// Debug visualization flags.
	Debug tracer.DebugFlag
}
