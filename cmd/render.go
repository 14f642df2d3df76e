package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/pkeir/path-tracer/asset"
	"github.com/pkeir/path-tracer/frame"
	"github.com/pkeir/path-tracer/renderer"
	"github.com/pkeir/path-tracer/tracer"
	"github.com/pkeir/path-tracer/tracer/cpu"
	"github.com/urfave/cli"
)

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	debug, err := debugFlag(ctx.String("debug"))
	if err != nil {
		return err
	}

	opts := renderer.Options{
		FrameW:          uint32(ctx.Int("width")),
		FrameH:          uint32(ctx.Int("height")),
		SamplesPerPixel: uint32(ctx.Int("spp")),
		MaxDepth:        uint32(ctx.Int("bounces")),
		TileW:           uint32(ctx.Int("tile-w")),
		TileH:           uint32(ctx.Int("tile-h")),
		Seed:            ctx.Uint64("seed"),
		Frames:          uint32(ctx.Int("frames")),
		Debug:           debug,
	}

	// Load scene
	if ctx.NArg() != 1 {
		return errors.New("missing scene argument")
	}

	sc, err := loadScene(ctx, ctx.Args().First())
	if err != nil {
		return err
	}

	scheduler, err := selectScheduler(ctx.String("scheduler"))
	if err != nil {
		return err
	}

	tracers, err := createTracers(ctx.Int("devices"), ctx.StringSlice("blacklist"))
	if err != nil {
		return err
	}

	// Create renderer
	r, err := renderer.NewDefault(sc, scheduler, tracers, opts)
	if err != nil {
		closeTracers(tracers)
		return err
	}
	defer r.Close()

	renderCtx, cancel := renderContext(ctx.Duration("timeout"))
	defer cancel()

	logger.Noticef("rendering %dx%d frame (%d spp, %d bounces, %d frame(s))", opts.FrameW, opts.FrameH, opts.SamplesPerPixel, opts.MaxDepth, opts.Frames)
	err = r.Render(renderCtx)
	if err != nil {
		return err
	}

	// Display stats
	logger.Noticef("frame statistics\n%s", r.Stats().Table())

	return saveFrame(renderCtx, r.Frame(), ctx.String("out"))
}

// Encode the frame based on the output extension and write it to a local
// file or a remote location.
func saveFrame(ctx context.Context, fb *frame.Framebuffer, out string) error {
	var buf bytes.Buffer
	start := time.Now()
	contentType, err := frame.Encode(&buf, fb, out)
	if err != nil {
		return err
	}

	err = asset.WriteResource(ctx, out, buf.Bytes(), contentType)
	if err != nil {
		return err
	}

	logger.Noticef("wrote frame to %s in %d ms", out, time.Since(start).Nanoseconds()/1000000)
	return nil
}

// Create a tracer for each selected cpu device.
func createTracers(count int, blackList []string) ([]tracer.Tracer, error) {
	devices := cpu.SelectDevices(count, blackList)
	if len(devices) == 0 {
		return nil, errors.New("no available cpu devices")
	}

	tracers := make([]tracer.Tracer, 0, len(devices))
	for idx, device := range devices {
		tr, err := cpu.NewTracer(fmt.Sprintf("tr-%d (%s)", idx, device.Name), device)
		if err != nil {
			logger.Warningf("skipping device %s due to init error: %v", device.Name, err)
			continue
		}
		logger.Infof(`attaching tracer for device "%s" with %d compute units`, device.Name, device.ComputeUnits)
		tracers = append(tracers, tr)
	}

	if len(tracers) == 0 {
		return nil, renderer.ErrNoTracers
	}
	return tracers, nil
}

func closeTracers(tracers []tracer.Tracer) {
	for _, tr := range tracers {
		tr.Close()
	}
}

func selectScheduler(name string) (tracer.BlockScheduler, error) {
	switch name {
	case "", "naive":
		return tracer.NaiveScheduler(), nil
	case "perfect":
		return tracer.PerfectScheduler(), nil
	}
	return nil, fmt.Errorf("unsupported block scheduler '%s'", name)
}

func debugFlag(name string) (tracer.DebugFlag, error) {
	switch name {
	case "", "off":
		return tracer.Off, nil
	case "normals":
		return tracer.PrimaryRayNormals, nil
	case "depth":
		return tracer.PrimaryRayDepth, nil
	}
	return tracer.Off, fmt.Errorf("unsupported debug mode '%s'", name)
}

// Get a context that is cancelled on interrupt or when the timeout expires.
func renderContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	if timeout <= 0 {
		return ctx, stop
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}
