package cpu

import "errors"

var (
	ErrNoSceneData      = errors.New("cpu tracer: no scene data uploaded")
	ErrNoCamera         = errors.New("cpu tracer: no camera defined")
	ErrNoFrameBuffer    = errors.New("cpu tracer: tracer not initialized with a framebuffer")
	ErrTracerClosed     = errors.New("cpu tracer: tracer is closed")
	ErrBlockOutOfBounds = errors.New("cpu tracer: block request exceeds framebuffer bounds")
)
