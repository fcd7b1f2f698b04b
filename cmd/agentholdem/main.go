package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Serve    ServeCmd         `cmd:"" help:"Run tables with agents behind the HTTP and WebSocket API"`
	Simulate SimulateCmd      `cmd:"" help:"Play agents against each other and report results"`
	History  HistoryCmd       `cmd:"" help:"Render stored PHH hand histories"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("agentholdem"),
		kong.Description("Texas Hold'em tables played by personality-driven agents"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
