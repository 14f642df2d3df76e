package tracer

import (
	"time"

	"github.com/pkeir/path-tracer/frame"
)

type UpdateType uint8

const (
	// Replace the scene (primitives and texture images).
	UpdateScene UpdateType = iota

	// Replace the camera.
	UpdateCamera
)

// Debug flags replace regular shading with a visualization of the primary
// ray hit.
type DebugFlag uint16

const (
	Off               DebugFlag = 0
	PrimaryRayNormals DebugFlag = 1 << iota
	PrimaryRayDepth
)

// A unit of work that is processed by a tracer.
type BlockRequest struct {
	// Frame dimensions.
	FrameW uint32
	FrameH uint32

	// Block start row and height.
	BlockY uint32
	BlockH uint32

	// Work-group (tile) dimensions used for dispatching lanes.
	TileW uint32
	TileH uint32

	// The number of emitted rays per traced pixel.
	SamplesPerPixel uint32

	// The maximum number of bounces per sample.
	MaxDepth uint32

	// A random seed value for the tracer's random number generator.
	Seed uint64

	// Number of sequential rendered frames from current camera position.
	FrameCount uint32

	// Debug visualization flags.
	Debug DebugFlag

	// A channel to signal on block completion with the number of completed rows.
	DoneChan chan<- uint32

	// A channel to signal if an error occurs.
	ErrChan chan<- error
}

// Tracer statistics.
type Stats struct {
	// The rendered block height
	BlockH uint32

	// The time for rendering this block
	RenderTime time.Duration
}

type Tracer interface {
	// Get tracer id.
	Id() string

	// Get the tracer's computation speed estimate. Higher is faster.
	Speed() uint32

	// Attach the framebuffer that receives rendered blocks.
	Init(fb *frame.Framebuffer) error

	// Shutdown and cleanup tracer.
	Close()

	// Enqueue block request.
	Enqueue(BlockRequest)

	// Append a change to the tracer's update buffer. Pending changes are
	// applied before the next block is rendered.
	Update(UpdateType, interface{})

	// Retrieve last frame statistics.
	Stats() *Stats
}
