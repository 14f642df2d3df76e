package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkeir/path-tracer/scene"
	"github.com/pkeir/path-tracer/scene/reader"
	"github.com/pkeir/path-tracer/scene/writer"
	"github.com/urfave/cli"
)

// Build the builtin scene options from the command flags.
func builtinOptions(ctx *cli.Context) (scene.BuiltinOptions, error) {
	opts := scene.BuiltinOptions{
		Seed:          ctx.Uint64("seed"),
		Textures:      ctx.StringSlice("texture"),
		MaxTextureDim: uint(ctx.Int("max-tex-dim")),
	}

	switch filter := ctx.String("filter"); filter {
	case "", "nearest":
		opts.Filter = scene.NearestFilter
	case "bilinear":
		opts.Filter = scene.BilinearFilter
	default:
		return opts, fmt.Errorf("unsupported texture filter '%s'", filter)
	}

	return opts, nil
}

// Load a compiled scene or build one of the builtin scenes.
func loadScene(ctx *cli.Context, name string) (*scene.Scene, error) {
	if strings.HasSuffix(strings.ToLower(name), ".zip") {
		logger.Noticef("reading compiled scene: %s", name)
		return reader.ReadScene(name)
	}

	opts, err := builtinOptions(ctx)
	if err != nil {
		return nil, err
	}

	logger.Noticef("building scene: %s", name)
	return scene.Builtin(name, opts)
}

// Compile builtin scenes to binary format.
func CompileScene(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() == 0 {
		return fmt.Errorf("missing scene name argument; available scenes: %s", strings.Join(scene.BuiltinNames(), ", "))
	}

	outDir := ctx.String("out-dir")
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return err
		}
	}

	opts, err := builtinOptions(ctx)
	if err != nil {
		return err
	}

	for idx := 0; idx < ctx.NArg(); idx++ {
		name := ctx.Args().Get(idx)

		logger.Noticef("compiling scene: %s", name)
		sc, err := scene.Builtin(name, opts)
		if err != nil {
			return err
		}

		// Display compiled scene info
		logger.Noticef("scene information:\n%s", sc.Stats())

		zipFile := filepath.Join(outDir, name+".zip")
		err = writer.WriteScene(sc, zipFile)
		if err != nil {
			return err
		}
		logger.Noticef("wrote compiled scene to %s", zipFile)
	}

	return nil
}

// Display compiled scene info.
func ShowSceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing compiled scene zip file")
	}

	sceneFile := ctx.Args().First()
	if !strings.HasSuffix(sceneFile, ".zip") {
		return errors.New("only compiled scene files with a .zip extension are supported")
	}

	sc, err := reader.ReadScene(sceneFile)
	if err != nil {
		return err
	}

	// Display compiled scene info
	logger.Noticef("scene information:\n%s", sc.Stats())
	if sc.Camera != nil {
		logger.Infof("camera %s", sc.Camera.Viewport)
	}

	return nil
}
