package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/parcelreg/parcel/cmd/parcel/internal/commands"
	"github.com/parcelreg/parcel/internal/logger"
)

var (
	version = "dev"
	cli     struct {
		Account commands.AccountCmd `cmd:"" help:"Manage your registry account"`
		Org     commands.OrgCmd     `cmd:"" help:"Manage organizations"`
		Team    commands.TeamCmd    `cmd:"" help:"Manage organization teams"`
		Package commands.PackageCmd `cmd:"" help:"Publish and unpublish packages"`

		Registry   string `help:"Registry API endpoint." env:"PARCEL_REGISTRY"`
		Profile    string `help:"Named session profile." env:"PARCEL_PROFILE"`
		ConfigDir  string `help:"Configuration directory." env:"PARCEL_HOME"`
		JSONOutput bool   `help:"Emit machine-readable JSON."`
		Debug      bool   `help:"Enable debug logging."`
		Version    kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("parcel"),
		kong.Description("Client for the parcel package registry."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))

	logger.Setup(cli.Debug)

	err := cmd.Run(&commands.Globals{
		Debug:      cli.Debug,
		JSONOutput: cli.JSONOutput,
		Registry:   cli.Registry,
		Profile:    cli.Profile,
		ConfigDir:  cli.ConfigDir,
		Version:    version,
	})
	if err != nil && cli.JSONOutput {
		enc := json.NewEncoder(os.Stdout)
		_ = enc.Encode(map[string]string{"status": "error", "message": err.Error()})
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cmd.FatalIfErrorf(err)
}
