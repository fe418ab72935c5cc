package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pacpan/cmd/pacpan/commands"
	perrors "git.home.luguber.info/inful/pacpan/internal/errors"
	"git.home.luguber.info/inful/pacpan/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("pacpan"),
		kong.Description("Bundle a Panels app for production, or rebuild and serve it while you work."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	if err := parser.Run(&commands.Global{Logger: slog.Default()}, cli); err != nil {
		perrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
