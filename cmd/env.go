package cmd

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/urfave/cli"
)

// Load variables from the env file selected by the global --env-file flag.
// Variables that are already set are not overridden. A missing file is only
// an error when the flag was explicitly set.
func LoadEnv(ctx *cli.Context) error {
	envFile := ctx.GlobalString("env-file")
	if envFile == "" {
		return nil
	}

	err := godotenv.Load(envFile)
	if err != nil && errors.Is(err, fs.ErrNotExist) && !ctx.GlobalIsSet("env-file") {
		return nil
	}
	return err
}
