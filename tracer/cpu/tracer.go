package cpu

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkeir/path-tracer/frame"
	"github.com/pkeir/path-tracer/log"
	"github.com/pkeir/path-tracer/scene"
	"github.com/pkeir/path-tracer/tracer"
)

type cpuTracer struct {
	logger log.Logger

	sync.Mutex
	wg sync.WaitGroup

	// The device associated with this tracer instance.
	device Device

	// The tracer id.
	id string

	// A buffer for queuing updates. Updates are grouped by type and
	// latest updates always overwrite the previous ones.
	updateBuffer map[tracer.UpdateType]interface{}

	// A channel for receiving block requests from the renderer.
	blockReqChan chan tracer.BlockRequest

	// A channel for signaling the worker to exit.
	closeChan chan struct{}

	// Closed by the worker when it exits.
	stoppedChan chan struct{}

	// Statistics for last rendered frame.
	stats *tracer.Stats

	// The framebuffer receiving rendered blocks.
	fb *frame.Framebuffer

	// The uploaded scene and camera.
	sceneData *scene.Scene
	camera    *scene.Camera
}

// Create a new cpu tracer.
func NewTracer(id string, device Device) (tracer.Tracer, error) {
	if device.ComputeUnits == 0 {
		return nil, fmt.Errorf("cpu tracer: device %s has no compute units", device.Name)
	}

	tr := &cpuTracer{
		logger:       log.New(fmt.Sprintf("cpu tracer (%s)", device.Name)),
		device:       device,
		id:           id,
		blockReqChan: make(chan tracer.BlockRequest),
		updateBuffer: make(map[tracer.UpdateType]interface{}),
		stats:        &tracer.Stats{},
	}

	return tr, nil
}

// Get tracer id.
func (tr *cpuTracer) Id() string {
	return tr.id
}

// Get the computation speed estimate.
func (tr *cpuTracer) Speed() uint32 {
	return tr.device.Speed
}

// Attach the framebuffer and start the worker.
func (tr *cpuTracer) Init(fb *frame.Framebuffer) error {
	if fb == nil {
		return ErrNoFrameBuffer
	}

	tr.Lock()
	defer tr.Unlock()

	tr.fb = fb
	tr.startWorker()
	return nil
}

// Shutdown and cleanup tracer.
func (tr *cpuTracer) Close() {
	// The worker may need the lock to commit updates so it must not be
	// held while waiting for the close ack.
	tr.Lock()
	closeChan := tr.closeChan
	tr.closeChan = nil
	tr.Unlock()

	// If the worker is running shut it down
	if closeChan != nil {
		closeChan <- struct{}{}

		// wait for worker to ack close
		<-closeChan
		tr.wg.Wait()
		close(closeChan)
	}

	tr.Lock()
	defer tr.Unlock()
	tr.stoppedChan = nil
	tr.fb = nil
	tr.sceneData = nil
	tr.camera = nil
}

// Enqueue block request. The call blocks until the worker accepts the
// request. Requests sent to a tracer that is not running are rejected with
// ErrTracerClosed.
func (tr *cpuTracer) Enqueue(blockReq tracer.BlockRequest) {
	tr.Lock()
	stoppedChan := tr.stoppedChan
	tr.Unlock()

	if stoppedChan == nil {
		tr.reject(blockReq)
		return
	}

	select {
	case tr.blockReqChan <- blockReq:
	case <-stoppedChan:
		tr.reject(blockReq)
	}
}

func (tr *cpuTracer) reject(blockReq tracer.BlockRequest) {
	tr.logger.Error("rejecting block request; tracer is not running")
	go func() { blockReq.ErrChan <- ErrTracerClosed }()
}

// Append a change to the tracer's update buffer.
func (tr *cpuTracer) Update(updateType tracer.UpdateType, data interface{}) {
	tr.Lock()
	defer tr.Unlock()

	tr.updateBuffer[updateType] = data
}

// Retrieve a copy of the last block statistics.
func (tr *cpuTracer) Stats() *tracer.Stats {
	tr.Lock()
	defer tr.Unlock()

	stats := *tr.stats
	return &stats
}

// Commit queued changes.
func (tr *cpuTracer) commitUpdates() error {
	tr.Lock()
	updates := tr.updateBuffer
	tr.updateBuffer = make(map[tracer.UpdateType]interface{})
	tr.Unlock()

	for updateType, data := range updates {
		switch updateType {
		case tracer.UpdateScene:
			sc, ok := data.(*scene.Scene)
			if !ok {
				return fmt.Errorf("cpu tracer: unsupported scene update data %T", data)
			}
			tr.sceneData = sc
		case tracer.UpdateCamera:
			camera, ok := data.(*scene.Camera)
			if !ok {
				return fmt.Errorf("cpu tracer: unsupported camera update data %T", data)
			}
			tr.camera = camera
		default:
			return fmt.Errorf("cpu tracer: unsupported update type %d", updateType)
		}
	}

	return nil
}

// Spawn a go-routine to process block render requests.
func (tr *cpuTracer) startWorker() {
	// Worker already running
	if tr.closeChan != nil {
		return
	}

	tr.closeChan = make(chan struct{})
	tr.stoppedChan = make(chan struct{})
	closeChan, stoppedChan := tr.closeChan, tr.stoppedChan
	fb := tr.fb

	readyChan := make(chan struct{})
	tr.wg.Add(1)
	go func() {
		defer tr.wg.Done()
		defer close(stoppedChan)
		var blockReq tracer.BlockRequest
		var startTime time.Time
		var err error
		close(readyChan)
		for {
			select {
			case blockReq = <-tr.blockReqChan:
				startTime = time.Now()

				// Apply any pending changes
				err = tr.commitUpdates()
				if err != nil {
					blockReq.ErrChan <- err
					continue
				}

				// Render block and reply with our completion status
				err = tr.renderBlock(fb, &blockReq)
				if err != nil {
					blockReq.ErrChan <- err
					continue
				}

				// Update stats
				tr.Lock()
				tr.stats.BlockH = blockReq.BlockH
				tr.stats.RenderTime = time.Since(startTime)
				tr.Unlock()

				blockReq.DoneChan <- blockReq.BlockH
			case <-closeChan:
				// Ack close
				closeChan <- struct{}{}
				return
			}
		}
	}()

	// Wait for go-routine to start
	<-readyChan
}

// Render block.
func (tr *cpuTracer) renderBlock(fb *frame.Framebuffer, blockReq *tracer.BlockRequest) error {
	if tr.sceneData == nil {
		return ErrNoSceneData
	}

	camera := tr.camera
	if camera == nil {
		camera = tr.sceneData.Camera
	}
	if camera == nil {
		return ErrNoCamera
	}

	if fb == nil {
		return ErrNoFrameBuffer
	}
	if blockReq.FrameW != fb.Width || blockReq.FrameH != fb.Height || blockReq.BlockY+blockReq.BlockH > fb.Height {
		return ErrBlockOutOfBounds
	}

	kernel := &Kernel{
		Scene:           tr.sceneData,
		Camera:          camera,
		FrameW:          blockReq.FrameW,
		FrameH:          blockReq.FrameH,
		SamplesPerPixel: blockReq.SamplesPerPixel,
		MaxDepth:        blockReq.MaxDepth,
		Debug:           blockReq.Debug,
	}
	nd := NDRange{
		GlobalW: blockReq.FrameW,
		GlobalH: blockReq.BlockH,
		LocalW:  blockReq.TileW,
		LocalH:  blockReq.TileH,
		OffsetY: blockReq.BlockY,
	}

	tr.logger.Debugf("rendering rows [%d, %d) with %d compute units", blockReq.BlockY, blockReq.BlockY+blockReq.BlockH, tr.device.ComputeUnits)
	kernel.Run(fb, nd, int(tr.device.ComputeUnits), blockReq.Seed, blockReq.FrameCount)
	return nil
}
