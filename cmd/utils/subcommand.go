// Package utils holds the small conventions shared by every cmd/ entrypoint:
// the subcommand lifecycle wrapper and its companion app interface.
package utils

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
)

// closeTimeout bounds how long Close is given to drain in-flight work
// before the process exits anyway.
const closeTimeout = 10 * time.Second

// SubcommandApplication is the lifecycle every cmd/ subcommand implements:
// parse its own flags, start, run until told to stop, then shut down.
type SubcommandApplication interface {
	InitFromCli(ctx context.Context, c *cli.Context) error
	Name() string
	Start() error
	Close(ctx context.Context)
}

// SubcommandAction wraps a SubcommandApplication into a cli.ActionFunc:
// init, start, block until SIGINT/SIGTERM, then close.
func SubcommandAction(app SubcommandApplication) cli.ActionFunc {
	return func(c *cli.Context) error {
		ctx, cancel := context.WithCancel(c.Context)
		defer cancel()

		if err := app.InitFromCli(ctx, c); err != nil {
			return err
		}

		if err := app.Start(); err != nil {
			return err
		}

		quitCh := make(chan os.Signal, 1)
		signal.Notify(quitCh, os.Interrupt, syscall.SIGTERM)
		<-quitCh
		signal.Stop(quitCh)

		closeCtx, closeCancel := context.WithTimeout(context.Background(), closeTimeout)
		defer closeCancel()

		app.Close(closeCtx)

		return nil
	}
}
