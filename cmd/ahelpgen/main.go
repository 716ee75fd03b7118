package main

import (
	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/ahelpgen/cmd/ahelpgen/commands"
	"git.home.luguber.info/inful/ahelpgen/internal/version"
)

func main() {
	cli := &commands.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("ahelpgen"),
		kong.Description("Convert entity documentation into ahelp XML help documents"),
		kong.Vars{"version": version.Version},
	)
	err := ctx.Run(&commands.Global{}, cli)
	ctx.FatalIfErrorf(err)
}
