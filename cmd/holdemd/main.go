package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Serve    ServeCmd         `cmd:"" help:"Run the table server"`
	Simulate SimulateCmd      `cmd:"" help:"Play bots against each other on local tables"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("holdemd"),
		kong.Description("Authoritative Texas Hold'em table server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version":    version,
			"strategies": strategiesHelp(),
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
