package flags

import (
	"time"

	"github.com/urfave/cli/v2"
)

var (
	IndexerBeaconEndpoint = &cli.StringFlag{
		Name:     "beacon.endpoint",
		Usage:    "Beacon node REST endpoint to backfill and reconcile against",
		Required: true,
		Category: indexerCategory,
		EnvVars:  []string{"BEACON_ENDPOINT"},
	}
	IndexerDatabaseDSN = &cli.StringFlag{
		Name:     "db.dsn",
		Usage:    "MySQL DSN for the block/blob index storage",
		Required: true,
		Category: indexerCategory,
		EnvVars:  []string{"INDEXER_DB_DSN"},
	}
	IndexerPollInterval = &cli.DurationFlag{
		Name:     "pollInterval",
		Usage:    "How often to tick the backfill/reorg-reconcile loop",
		Value:    12 * time.Second,
		Category: indexerCategory,
		EnvVars:  []string{"INDEXER_POLL_INTERVAL"},
	}
	IndexerBackfillBatch = &cli.Uint64Flag{
		Name:     "backfillBatch",
		Usage:    "Max slots processed per tick while catching up to head",
		Value:    32,
		Category: indexerCategory,
		EnvVars:  []string{"INDEXER_BACKFILL_BATCH"},
	}
	IndexerReorgLookback = &cli.Uint64Flag{
		Name:     "reorgLookback",
		Usage:    "Number of recent slots reconciled against the live chain on every tick",
		Value:    64,
		Category: indexerCategory,
		EnvVars:  []string{"INDEXER_REORG_LOOKBACK"},
	}
	IndexerStartSlot = &cli.Uint64Flag{
		Name:     "startSlot",
		Usage:    "Slot to cold-start backfill from when no cursor is stored yet (unset means head-ReorgLookback)",
		Category: indexerCategory,
		EnvVars:  []string{"INDEXER_START_SLOT"},
	}
	IndexerWatchAddresses = &cli.StringFlag{
		Name:     "watchAddresses",
		Usage:    "Comma-separated list of blob target addresses to index; empty means watch everything",
		Category: indexerCategory,
		EnvVars:  []string{"INDEXER_WATCH_ADDRESSES"},
	}
)

// IndexerFlags is the full flag set for cmd/blob-indexer.
var IndexerFlags = MergeFlags(CommonFlags, []cli.Flag{
	IndexerBeaconEndpoint,
	IndexerDatabaseDSN,
	IndexerPollInterval,
	IndexerBackfillBatch,
	IndexerReorgLookback,
	IndexerStartSlot,
	IndexerWatchAddresses,
})
