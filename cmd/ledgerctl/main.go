package main

import (
	"fmt"
	_ "time/tzdata"

	"github.com/alecthomas/kong"
	"github.com/jhoicas/agencia-ledger/internal/interfaces/cli"
)

var (
	// Version se define por ldflags al compilar.
	Version = ""

	// CommitSHA commit del que se compiló. Se define por ldflags.
	CommitSHA = ""

	app struct {
		Version kong.VersionFlag `help:"Mostrar la versión."`
		cli.Commands
	}
)

func main() {
	ctx := kong.Parse(&app,
		kong.Vars{
			"version": buildVersion(),
		},
		kong.Name("ledgerctl"),
		kong.Description("Administración del libro contable multimoneda."),
		kong.UsageOnError(),
		kong.Bind(&app.Globals),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

func buildVersion() string {
	if Version == "" {
		Version = "dev"
	}
	if CommitSHA == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, CommitSHA)
}
