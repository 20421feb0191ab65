package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/clientpack/cmd/clientpack/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug   bool `help:"Enable debug mode."`
		Version kong.VersionFlag
		Config  commands.ConfigCmd `cmd:"" help:"Print the resolved pipeline configuration as YAML"`
		Build   commands.BuildCmd  `cmd:"" help:"Bundle the client application"`
		Serve   commands.ServeCmd  `cmd:"" help:"Build in hot mode and serve the bundles"`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("clientpack"),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
