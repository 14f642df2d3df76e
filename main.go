package main

import (
	"fmt"
	"os"

	"github.com/pkeir/path-tracer/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	sceneFlags := []cli.Flag{
		cli.Uint64Flag{
			Name:   "seed",
			Value:  1,
			Usage:  "seed for random sampling and procedural scene placement",
			EnvVar: "PT_SEED",
		},
		cli.StringSliceFlag{
			Name:   "texture, t",
			Value:  &cli.StringSlice{},
			Usage:  "image file (local path, http(s):// or s3:// url) for textured surfaces of builtin scenes",
			EnvVar: "PT_TEXTURES",
		},
		cli.IntFlag{
			Name:   "max-tex-dim",
			Value:  1024,
			Usage:  "downsize textures whose width or height exceeds this value (0 disables)",
			EnvVar: "PT_MAX_TEX_DIM",
		},
		cli.StringFlag{
			Name:   "filter",
			Value:  "nearest",
			Usage:  "image texture filter (nearest, bilinear)",
			EnvVar: "PT_FILTER",
		},
	}

	deviceFlags := []cli.Flag{
		cli.IntFlag{
			Name:   "devices",
			Value:  1,
			Usage:  "split the host cpus into this many devices",
			EnvVar: "PT_DEVICES",
		},
		cli.StringSliceFlag{
			Name:  "blacklist, b",
			Value: &cli.StringSlice{},
			Usage: "blacklist devices whose names contain this value",
		},
	}

	frameFlags := []cli.Flag{
		cli.IntFlag{
			Name:   "width",
			Value:  400,
			Usage:  "frame width",
			EnvVar: "PT_WIDTH",
		},
		cli.IntFlag{
			Name:   "height",
			Value:  225,
			Usage:  "frame height",
			EnvVar: "PT_HEIGHT",
		},
	}

	renderFlags := []cli.Flag{
		cli.IntFlag{
			Name:   "spp",
			Value:  16,
			Usage:  "samples per pixel",
			EnvVar: "PT_SPP",
		},
		cli.IntFlag{
			Name:   "bounces",
			Value:  8,
			Usage:  "max number of bounces per sample",
			EnvVar: "PT_BOUNCES",
		},
		cli.IntFlag{
			Name:  "tile-w",
			Value: 8,
			Usage: "work-group width",
		},
		cli.IntFlag{
			Name:  "tile-h",
			Value: 8,
			Usage: "work-group height",
		},
		cli.IntFlag{
			Name:   "frames",
			Value:  1,
			Usage:  "number of frames to render and average",
			EnvVar: "PT_FRAMES",
		},
		cli.StringFlag{
			Name:   "scheduler",
			Value:  "naive",
			Usage:  "block scheduler (naive, perfect)",
			EnvVar: "PT_SCHEDULER",
		},
		cli.StringFlag{
			Name:  "debug",
			Value: "off",
			Usage: "replace shading with a primary ray visualization (off, normals, depth)",
		},
		cli.DurationFlag{
			Name:   "timeout",
			Usage:  "abort rendering after this duration (0 waits forever)",
			EnvVar: "PT_TIMEOUT",
		},
		cli.StringFlag{
			Name:   "out, o",
			Value:  "frame.ppm",
			Usage:  "output file (.ppm or .png); local path or s3://bucket/key",
			EnvVar: "PT_OUT",
		},
	}

	app := cli.NewApp()
	app.Name = "path-tracer"
	app.Usage = "render scenes using monte-carlo path tracing"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:   "log-level",
			Usage:  "set log level (debug, info, notice, warning, error)",
			EnvVar: "PT_LOG_LEVEL",
		},
		cli.StringFlag{
			Name:  "env-file",
			Value: ".env",
			Usage: "load environment variables from this file",
		},
	}
	app.Before = cmd.LoadEnv
	app.Commands = []cli.Command{
		{
			Name:  "compile",
			Usage: "compile builtin scenes into a binary compressed format",
			Description: `
Build one or more of the builtin scenes, load any referenced texture images
and package the scene in a zip archive which can be supplied as an argument
to the render command.`,
			ArgsUsage: "scene_name1 scene_name2 ...",
			Flags: concatFlags(sceneFlags, []cli.Flag{
				cli.StringFlag{
					Name:  "out-dir",
					Value: ".",
					Usage: "directory for the compiled scene archives",
				},
			}),
			Action: cmd.CompileScene,
		},
		{
			Name:      "scene-info",
			Usage:     "print the contents of a compiled scene",
			ArgsUsage: "scene.zip",
			Action:    cmd.ShowSceneInfo,
		},
		{
			Name:   "list-devices",
			Usage:  "list available cpu devices",
			Flags:  deviceFlags,
			Action: cmd.ListDevices,
		},
		{
			Name:  "render",
			Usage: "render a single frame",
			Description: `
Render a builtin scene (random, single, boxes) or a compiled .zip scene and
write the frame as a PPM or PNG image.`,
			ArgsUsage: "scene_name|scene.zip",
			Flags:     concatFlags(frameFlags, renderFlags, sceneFlags, deviceFlags),
			Action:    cmd.RenderFrame,
		},
		{
			Name:      "debug",
			Usage:     "render primary ray normal and depth visualizations",
			ArgsUsage: "scene_name|scene.zip",
			Flags: concatFlags(frameFlags, sceneFlags, []cli.Flag{
				cli.StringFlag{
					Name:  "out, o",
					Value: "debug.png",
					Usage: "output file prefix; the mode name is appended before the extension",
				},
			}),
			Action: cmd.Debug,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func concatFlags(sets ...[]cli.Flag) []cli.Flag {
	flags := make([]cli.Flag, 0)
	for _, set := range sets {
		flags = append(flags, set...)
	}
	return flags
}
