package cmd

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/pkeir/path-tracer/renderer"
	"github.com/pkeir/path-tracer/tracer"
	"github.com/urfave/cli"
)

// Render primary ray visualizations (surface normals and hit depth) for a
// scene. Each visualization is written next to the output prefix.
func Debug(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene argument")
	}

	out := ctx.String("out")
	ext := filepath.Ext(out)
	prefix := strings.TrimSuffix(out, ext)

	for _, mode := range []struct {
		name string
		flag tracer.DebugFlag
	}{
		{"normals", tracer.PrimaryRayNormals},
		{"depth", tracer.PrimaryRayDepth},
	} {
		sc, err := loadScene(ctx, ctx.Args().First())
		if err != nil {
			return err
		}

		tracers, err := createTracers(1, nil)
		if err != nil {
			return err
		}

		r, err := renderer.NewDefault(sc, tracer.NaiveScheduler(), tracers, renderer.Options{
			FrameW:          uint32(ctx.Int("width")),
			FrameH:          uint32(ctx.Int("height")),
			SamplesPerPixel: 1,
			MaxDepth:        1,
			Debug:           mode.flag,
		})
		if err != nil {
			closeTracers(tracers)
			return err
		}

		renderCtx, cancel := renderContext(0)
		err = r.Render(renderCtx)
		if err == nil {
			err = saveFrame(renderCtx, r.Frame(), prefix+"-"+mode.name+ext)
		}
		cancel()
		r.Close()
		if err != nil {
			logger.Error(err)
			return err
		}
	}

	return nil
}
