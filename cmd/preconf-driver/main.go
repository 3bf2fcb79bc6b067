package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/taikoxyz/surge-preconf-client/cmd/flags"
	"github.com/taikoxyz/surge-preconf-client/cmd/utils"
)

func main() {
	app := cli.NewApp()

	log.SetOutput(os.Stdout)

	envFile := os.Getenv("PRECONF_DRIVER_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)

	app.Name = "Surge Preconfirmation Driver"
	app.Usage = "L2 preconfirmation client core: event sync, production routing, P2P gossip, and the operator REST/WS surface"
	app.Description = "Derives canonical L2 blocks from L1 proposals and applies gossiped preconfirmations ahead of them"
	app.EnableBashCompletion = true

	app.Commands = []*cli.Command{
		{
			Name:        "start",
			Flags:       flags.DriverFlags,
			Usage:       "Starts the preconfirmation driver",
			Description: "Runs event sync, preconfirmation ingress, P2P networking, and the operator REST/WS server",
			Action:      utils.SubcommandAction(new(App)),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
