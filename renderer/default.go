package renderer

import (
	"context"
	"time"

	"github.com/pkeir/path-tracer/frame"
	"github.com/pkeir/path-tracer/log"
	"github.com/pkeir/path-tracer/scene"
	"github.com/pkeir/path-tracer/tracer"
)

// A renderer that splits each frame into row blocks, dispatches them to a set
// of tracers and averages successive frames into an output framebuffer.
type defaultRenderer struct {
	logger log.Logger

	options   Options
	scheduler tracer.BlockScheduler
	tracers   []tracer.Tracer

	// Rows assigned to each tracer for the last frame.
	blockAssignments []uint32

	// Tracers write the current frame into fb; accum holds the running
	// average of all rendered frames.
	fb    *frame.Framebuffer
	accum *frame.Framebuffer

	stats FrameStats

	// Replies still owed for blocks of an interrupted frame.
	inflight inflightBlocks
}

type inflightBlocks struct {
	doneChan <-chan uint32
	errChan  <-chan error
	pending  int
}

// Create a new renderer that drives the supplied tracers. The renderer takes
// ownership of the tracers and closes them when it is closed.
func NewDefault(sc *scene.Scene, scheduler tracer.BlockScheduler, tracers []tracer.Tracer, opts Options) (Renderer, error) {
	if len(tracers) == 0 {
		return nil, ErrNoTracers
	}
	if sc == nil {
		return nil, ErrSceneNotDefined
	}
	if sc.Camera == nil {
		return nil, ErrCameraNotDefined
	}
	if opts.FrameW == 0 || opts.FrameH == 0 {
		return nil, ErrInvalidFrameSize
	}
	if opts.Frames == 0 {
		opts.Frames = 1
	}

	r := &defaultRenderer{
		logger:    log.New("renderer"),
		options:   opts,
		scheduler: scheduler,
		tracers:   tracers,
		fb:        frame.New(opts.FrameW, opts.FrameH),
		accum:     frame.New(opts.FrameW, opts.FrameH),
	}

	// Match the camera to the frame aspect ratio
	sc.Camera.SetupProjection(float32(opts.FrameW) / float32(opts.FrameH))

	for _, tr := range tracers {
		if err := tr.Init(r.fb); err != nil {
			r.Close()
			return nil, err
		}
		tr.Update(tracer.UpdateScene, sc)
		tr.Update(tracer.UpdateCamera, sc.Camera)
	}

	return r, nil
}

// Shutdown renderer and any attached tracer.
func (r *defaultRenderer) Close() {
	for _, tr := range r.tracers {
		tr.Close()
	}
	r.tracers = nil
}

// Get render statistics.
func (r *defaultRenderer) Stats() FrameStats {
	return r.stats
}

// Get the accumulated frame.
func (r *defaultRenderer) Frame() *frame.Framebuffer {
	return r.accum
}

// Render the configured number of frames. Cancelling ctx aborts the render
// with ErrInterrupted without waiting for in-flight blocks; the next call
// waits for them before scheduling new rows.
func (r *defaultRenderer) Render(ctx context.Context) error {
	if len(r.tracers) == 0 {
		return ErrNoTracers
	}

	start := time.Now()
	r.accum.Clear()
	r.stats = FrameStats{}

	for frameCount := uint32(0); frameCount < r.options.Frames; frameCount++ {
		if err := r.renderFrame(ctx, frameCount); err != nil {
			return err
		}
		r.accumulate(frameCount)
		r.stats.Frames = frameCount + 1
		r.logger.Debugf("rendered frame %d/%d", frameCount+1, r.options.Frames)
	}

	r.stats.RenderTime = time.Since(start)
	return nil
}

// Fold the current frame into the running average.
func (r *defaultRenderer) accumulate(frameCount uint32) {
	scale := 1.0 / float32(frameCount+1)
	for i, c := range r.fb.Pixels {
		acc := r.accum.Pixels[i]
		r.accum.Pixels[i] = acc.Add(c.Sub(acc).Mul(scale))
	}
}

// Render a single frame by distributing row blocks to the tracers and wait
// for all of them to complete.
func (r *defaultRenderer) renderFrame(ctx context.Context, frameCount uint32) error {
	if err := r.drainInflight(ctx); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ErrInterrupted
	}

	numTracers := len(r.tracers)
	r.blockAssignments = r.scheduler.Schedule(r.tracers, r.options.FrameH)

	// Buffered so that tracers never block when a render is abandoned
	doneChan := make(chan uint32, numTracers)
	errChan := make(chan error, numTracers)

	var blockY uint32
	pending := 0
	for idx, tr := range r.tracers {
		blockH := r.blockAssignments[idx]
		if blockH == 0 {
			continue
		}

		tr.Enqueue(tracer.BlockRequest{
			FrameW:          r.options.FrameW,
			FrameH:          r.options.FrameH,
			BlockY:          blockY,
			BlockH:          blockH,
			TileW:           r.options.TileW,
			TileH:           r.options.TileH,
			SamplesPerPixel: r.options.SamplesPerPixel,
			MaxDepth:        r.options.MaxDepth,
			Seed:            r.options.Seed,
			FrameCount:      frameCount,
			Debug:           r.options.Debug,
			DoneChan:        doneChan,
			ErrChan:         errChan,
		})
		blockY += blockH
		pending++
	}

	for ; pending > 0; pending-- {
		select {
		case <-doneChan:
		case err := <-errChan:
			r.inflight = inflightBlocks{doneChan, errChan, pending - 1}
			return err
		case <-ctx.Done():
			r.inflight = inflightBlocks{doneChan, errChan, pending}
			return ErrInterrupted
		}
	}

	// Collect stats
	r.stats.Tracers = make([]TracerStat, 0, numTracers)
	for idx, tr := range r.tracers {
		blockH := r.blockAssignments[idx]
		if blockH == 0 {
			continue
		}
		r.stats.Tracers = append(r.stats.Tracers, TracerStat{
			Id:           tr.Id(),
			IsPrimary:    idx == 0,
			BlockH:       blockH,
			FramePercent: 100.0 * float32(blockH) / float32(r.options.FrameH),
			RenderTime:   tr.Stats().RenderTime,
		})
	}

	return nil
}

// Wait for the tracers to finish any blocks of an interrupted frame so that
// every framebuffer row has a single writer.
func (r *defaultRenderer) drainInflight(ctx context.Context) error {
	for ; r.inflight.pending > 0; r.inflight.pending-- {
		select {
		case <-r.inflight.doneChan:
		case err := <-r.inflight.errChan:
			r.logger.Warningf("discarding error from interrupted block: %v", err)
		case <-ctx.Done():
			return ErrInterrupted
		}
	}
	return nil
}
