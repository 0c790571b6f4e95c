package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docserve/cmd/docserve/commands"
	derrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("docserve"),
		kong.Description("Development server for Docusaurus style documentation sites."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	err := ctx.Run(&commands.Global{Logger: slog.Default(), Stdout: os.Stdout}, &cli)
	if err != nil {
		os.Exit(derrors.NewCLIErrorAdapter(slog.Default()).Report(err))
	}
}
