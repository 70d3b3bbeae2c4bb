package main

import (
	"context"
	"os"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/bundlekit/cmd/bundlekit/internal/commands"
	"github.com/wolfeidau/bundlekit/internal/logger"
)

var (
	version = "dev"
	cli     struct {
		Resolve commands.ResolveCmd `cmd:"" help:"Validate a build configuration and print it normalized"`
		Match   commands.MatchCmd   `cmd:"" help:"Show the rules and handler chain selected for files"`
		Build   commands.BuildCmd   `cmd:"" help:"Bundle a build configuration with esbuild"`
		Schema  commands.SchemaCmd  `cmd:"" help:"Print the configuration JSON schema"`
		Debug   bool                `help:"Enable debug mode." env:"BUNDLEKIT_DEBUG"`
		Version kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Description("Resolve and build webpack style bundler configurations."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	logger.SetupGlobal(cli.Debug)
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version, Out: os.Stdout})
	cmd.FatalIfErrorf(err)
}
