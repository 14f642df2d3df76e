package cmd

import (
	"github.com/pkeir/path-tracer/tracer/cpu"
	"github.com/urfave/cli"
)

// List available cpu devices.
func ListDevices(ctx *cli.Context) error {
	setupLogging(ctx)

	devices := cpu.SelectDevices(ctx.Int("devices"), ctx.StringSlice("blacklist"))
	logger.Noticef("system provides %d cpu device(s):\n%s", len(devices), devices.Table())
	return nil
}
