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

	envFile := os.Getenv("BLOB_INDEXER_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)

	app.Name = "Surge Blob Indexer"
	app.Usage = "Reorg-aware beacon block and blob indexer for the Surge preconfirmation client"
	app.Description = "Backfills and reconciles beacon blocks and blobs into a queryable MySQL index"
	app.EnableBashCompletion = true

	app.Commands = []*cli.Command{
		{
			Name:        "index",
			Flags:       flags.IndexerFlags,
			Usage:       "Starts the blob indexer",
			Description: "Backfills beacon blocks/blobs and reconciles reorgs against the index",
			Action:      utils.SubcommandAction(new(App)),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
