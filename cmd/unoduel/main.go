package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Server  ServerCmd        `cmd:"" help:"Run the game server"`
	Client  ClientCmd        `cmd:"" help:"Play interactively in the terminal"`
	Bot     BotCmd           `cmd:"" help:"Run a built-in bot for one game"`
	Spawn   SpawnCmd         `cmd:"" help:"Run a server with two bots playing each other"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("unoduel"),
		kong.Description("Two-player card game server over WebSocket"),
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
