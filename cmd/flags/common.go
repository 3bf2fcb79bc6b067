// Package flags declares the cli.Flag values shared across cmd/ entrypoints,
// grouped by category the way blob-aggregator/cmd/flags does.
package flags

import (
	"github.com/urfave/cli/v2"
)

var (
	commonCategory = "COMMON"
	driverCategory = "DRIVER"
	p2pCategory    = "P2P"
	restCategory   = "REST"
	indexerCategory = "INDEXER"
)

var (
	LogLevel = &cli.StringFlag{
		Name:     "log.level",
		Usage:    "Log level (trace|debug|info|warn|error)",
		Value:    "info",
		Category: commonCategory,
		EnvVars:  []string{"LOG_LEVEL"},
	}
	QueueUsername = &cli.StringFlag{
		Name:     "queue.username",
		Usage:    "Notification queue connection username",
		Category: commonCategory,
		EnvVars:  []string{"QUEUE_USER"},
	}
	QueuePassword = &cli.StringFlag{
		Name:     "queue.password",
		Usage:    "Notification queue connection password",
		Category: commonCategory,
		EnvVars:  []string{"QUEUE_PASSWORD"},
	}
	QueueHost = &cli.StringFlag{
		Name:     "queue.host",
		Usage:    "Notification queue connection host",
		Category: commonCategory,
		EnvVars:  []string{"QUEUE_HOST"},
	}
	QueuePort = &cli.StringFlag{
		Name:     "queue.port",
		Usage:    "Notification queue connection port",
		Category: commonCategory,
		EnvVars:  []string{"QUEUE_PORT"},
	}
)

// CommonFlags apply to every subcommand.
var CommonFlags = []cli.Flag{
	LogLevel,
}

// NotifierFlags configure the optional rabbitmq end-of-sequencing mirror.
var NotifierFlags = []cli.Flag{
	QueueUsername,
	QueuePassword,
	QueueHost,
	QueuePort,
}

// MergeFlags merges the given flag slices.
func MergeFlags(groups ...[]cli.Flag) []cli.Flag {
	var merged []cli.Flag
	for _, group := range groups {
		merged = append(merged, group...)
	}
	return merged
}
