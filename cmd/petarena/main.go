package main

import (
	"github.com/alecthomas/kong"

	"github.com/NexxxT-x/TamagotchPy/internal/constants"
	"github.com/NexxxT-x/TamagotchPy/internal/logging"
)

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name(constants.ServiceName),
		kong.Description("Real-time pet combat server."),
		kong.UsageOnError(),
	)
	if err := kctx.Run(&cli); err != nil {
		logging.Fatal("command failed", err, logging.Fields{"command": kctx.Command()})
	}
}
