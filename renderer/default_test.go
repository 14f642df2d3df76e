package renderer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkeir/path-tracer/frame"
	"github.com/pkeir/path-tracer/sampler"
	"github.com/pkeir/path-tracer/scene"
	"github.com/pkeir/path-tracer/tracer"
	"github.com/pkeir/path-tracer/tracer/cpu"
)

func cpuTracers(t *testing.T, count int) []tracer.Tracer {
	tracers := make([]tracer.Tracer, count)
	for idx := range tracers {
		tr, err := cpu.NewTracer(
			fmt.Sprintf("cpu%d", idx),
			cpu.Device{Name: "test", ComputeUnits: 2, Speed: uint32(idx + 1)},
		)
		if err != nil {
			t.Fatal(err)
		}
		tracers[idx] = tr
	}
	return tracers
}

func singleSphere(t *testing.T) *scene.Scene {
	sc, err := scene.Builtin("single", scene.BuiltinOptions{})
	if err != nil {
		t.Fatal(err)
	}
	return sc
}

func TestNewDefaultErrors(t *testing.T) {
	opts := Options{FrameW: 8, FrameH: 8, SamplesPerPixel: 1, MaxDepth: 1}

	if _, err := NewDefault(singleSphere(t), tracer.NaiveScheduler(), nil, opts); err != ErrNoTracers {
		t.Fatalf("expected ErrNoTracers; got %v", err)
	}
	if _, err := NewDefault(nil, tracer.NaiveScheduler(), cpuTracers(t, 1), opts); err != ErrSceneNotDefined {
		t.Fatalf("expected ErrSceneNotDefined; got %v", err)
	}
	if _, err := NewDefault(scene.NewScene(), tracer.NaiveScheduler(), cpuTracers(t, 1), opts); err != ErrCameraNotDefined {
		t.Fatalf("expected ErrCameraNotDefined; got %v", err)
	}

	opts.FrameH = 0
	if _, err := NewDefault(singleSphere(t), tracer.NaiveScheduler(), cpuTracers(t, 1), opts); err != ErrInvalidFrameSize {
		t.Fatalf("expected ErrInvalidFrameSize; got %v", err)
	}
}

func TestRenderSingleFrame(t *testing.T) {
	sc := singleSphere(t)
	opts := Options{FrameW: 16, FrameH: 12, SamplesPerPixel: 2, MaxDepth: 3, Seed: 5}

	r, err := NewDefault(sc, tracer.PerfectScheduler(), cpuTracers(t, 2), opts)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if err = r.Render(context.Background()); err != nil {
		t.Fatal(err)
	}

	k := &cpu.Kernel{Scene: sc, Camera: sc.Camera, FrameW: 16, FrameH: 12, SamplesPerPixel: 2, MaxDepth: 3}
	fb := r.Frame()
	for y := uint32(0); y < 12; y++ {
		for x := uint32(0); x < 16; x++ {
			exp := k.TracePixel(x, y, sampler.NewLane(5, 0, x, y))
			if got := fb.At(x, y); got != exp {
				t.Fatalf("expected pixel (%d, %d) to be %v; got %v", x, y, exp, got)
			}
		}
	}

	stats := r.Stats()
	if stats.Frames != 1 {
		t.Fatalf("expected 1 frame; got %d", stats.Frames)
	}
	var rows uint32
	for _, stat := range stats.Tracers {
		rows += stat.BlockH
	}
	if rows != 12 {
		t.Fatalf("expected tracer blocks to cover 12 rows; got %d", rows)
	}
	if table := stats.Table(); !strings.Contains(table, "TOTAL") {
		t.Fatalf("expected stats table footer; got\n%s", table)
	}
}

func TestRenderAccumulatesFrames(t *testing.T) {
	sc := singleSphere(t)
	opts := Options{FrameW: 8, FrameH: 8, SamplesPerPixel: 1, MaxDepth: 2, Seed: 11, Frames: 3}

	r, err := NewDefault(sc, tracer.NaiveScheduler(), cpuTracers(t, 1), opts)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if err = r.Render(context.Background()); err != nil {
		t.Fatal(err)
	}

	k := &cpu.Kernel{Scene: sc, Camera: sc.Camera, FrameW: 8, FrameH: 8, SamplesPerPixel: 1, MaxDepth: 2}
	fb := r.Frame()
	for y := uint32(0); y < 8; y++ {
		for x := uint32(0); x < 8; x++ {
			var exp = k.TracePixel(x, y, sampler.NewLane(11, 0, x, y))
			for f := uint32(1); f < 3; f++ {
				c := k.TracePixel(x, y, sampler.NewLane(11, f, x, y))
				exp = exp.Add(c.Sub(exp).Mul(1.0 / float32(f+1)))
			}
			if got := fb.At(x, y); got != exp {
				t.Fatalf("expected pixel (%d, %d) to be %v; got %v", x, y, exp, got)
			}
		}
	}

	if got := r.Stats().Frames; got != 3 {
		t.Fatalf("expected 3 accumulated frames; got %d", got)
	}
}

func TestRenderInterrupted(t *testing.T) {
	opts := Options{FrameW: 8, FrameH: 8, SamplesPerPixel: 1, MaxDepth: 1}
	r, err := NewDefault(singleSphere(t), tracer.NaiveScheduler(), cpuTracers(t, 1), opts)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err = r.Render(ctx); err != ErrInterrupted {
		t.Fatalf("expected ErrInterrupted; got %v", err)
	}
}

type failingTracer struct {
	err error
}

func (tr *failingTracer) Id() string { return "failing" }
func (tr *failingTracer) Speed() uint32 { return 1 }
func (tr *failingTracer) Init(_ *frame.Framebuffer) error { return nil }
func (tr *failingTracer) Close() {}
func (tr *failingTracer) Update(_ tracer.UpdateType, _ interface{}) {}
func (tr *failingTracer) Stats() *tracer.Stats { return &tracer.Stats{} }
func (tr *failingTracer) Enqueue(blockReq tracer.BlockRequest) {
	blockReq.ErrChan <- tr.err
}

func TestRenderTracerError(t *testing.T) {
	expErr := errors.New("device lost")
	tracers := append(cpuTracers(t, 1), &failingTracer{err: expErr})

	opts := Options{FrameW: 8, FrameH: 8, SamplesPerPixel: 1, MaxDepth: 1}
	r, err := NewDefault(singleSphere(t), tracer.NaiveScheduler(), tracers, opts)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if err = r.Render(context.Background()); err != expErr {
		t.Fatalf("expected tracer error to abort the render; got %v", err)
	}
}

func TestInitErrorClosesTracers(t *testing.T) {
	expErr := errors.New("init failed")
	tracers := []tracer.Tracer{&initFailTracer{failingTracer: failingTracer{err: expErr}}}

	opts := Options{FrameW: 8, FrameH: 8}
	if _, err := NewDefault(singleSphere(t), tracer.NaiveScheduler(), tracers, opts); err != expErr {
		t.Fatalf("expected init error; got %v", err)
	}
	if !tracers[0].(*initFailTracer).closed {
		t.Fatal("expected tracer to be closed after init failure")
	}
}

type initFailTracer struct {
	failingTracer
	closed bool
}

func (tr *initFailTracer) Init(_ *frame.Framebuffer) error { return tr.err }
func (tr *initFailTracer) Close() { tr.closed = true }

// A tracer whose blocks complete only after release is closed. It records
// whether a block was enqueued while an earlier one was still running.
type gatedTracer struct {
	failingTracer
	release     chan struct{}
	onEnqueue   func()
	outstanding int32
	overlapped  int32
}

func (tr *gatedTracer) Enqueue(blockReq tracer.BlockRequest) {
	if atomic.AddInt32(&tr.outstanding, 1) > 1 {
		atomic.StoreInt32(&tr.overlapped, 1)
	}
	if tr.onEnqueue != nil {
		tr.onEnqueue()
	}
	go func() {
		<-tr.release
		atomic.AddInt32(&tr.outstanding, -1)
		blockReq.DoneChan <- blockReq.BlockH
	}()
}

func TestRenderWaitsForInterruptedBlocks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gated := &gatedTracer{release: make(chan struct{}), onEnqueue: cancel}

	opts := Options{FrameW: 8, FrameH: 8, SamplesPerPixel: 1, MaxDepth: 1}
	r, err := NewDefault(singleSphere(t), tracer.NaiveScheduler(), []tracer.Tracer{gated}, opts)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if err = r.Render(ctx); err != ErrInterrupted {
		t.Fatalf("expected ErrInterrupted; got %v", err)
	}

	gated.onEnqueue = nil
	time.AfterFunc(20*time.Millisecond, func() { close(gated.release) })
	if err = r.Render(context.Background()); err != nil {
		t.Fatal(err)
	}
	if atomic.LoadInt32(&gated.overlapped) != 0 {
		t.Fatal("expected the interrupted block to complete before new rows were scheduled")
	}
}

func TestRenderAfterInterrupt(t *testing.T) {
	sc := singleSphere(t)
	opts := Options{FrameW: 32, FrameH: 24, SamplesPerPixel: 4, MaxDepth: 4, Seed: 3}

	r, err := NewDefault(sc, tracer.PerfectScheduler(), cpuTracers(t, 2), opts)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	if err = r.Render(ctx); err != nil && err != ErrInterrupted {
		t.Fatalf("expected ErrInterrupted or success; got %v", err)
	}

	if err = r.Render(context.Background()); err != nil {
		t.Fatal(err)
	}

	k := &cpu.Kernel{Scene: sc, Camera: sc.Camera, FrameW: 32, FrameH: 24, SamplesPerPixel: 4, MaxDepth: 4}
	fb := r.Frame()
	for y := uint32(0); y < 24; y++ {
		for x := uint32(0); x < 32; x++ {
			exp := k.TracePixel(x, y, sampler.NewLane(3, 0, x, y))
			if got := fb.At(x, y); got != exp {
				t.Fatalf("expected pixel (%d, %d) to be %v; got %v", x, y, exp, got)
			}
		}
	}
}
