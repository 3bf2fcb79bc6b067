package main

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"github.com/taikoxyz/surge-preconf-client/cmd/flags"
)

// Config holds the parsed flags for the blob indexer.
type Config struct {
	BeaconEndpoint string
	DatabaseDSN    string
	PollInterval   time.Duration
	BackfillBatch  uint64
	ReorgLookback  uint64
	StartSlot      *uint64
	WatchAddresses map[common.Address]struct{}
}

// NewConfigFromCliContext builds a Config from parsed command-line flags.
func NewConfigFromCliContext(c *cli.Context) (*Config, error) {
	cfg := &Config{
		BeaconEndpoint: c.String(flags.IndexerBeaconEndpoint.Name),
		DatabaseDSN:    c.String(flags.IndexerDatabaseDSN.Name),
		PollInterval:   c.Duration(flags.IndexerPollInterval.Name),
		BackfillBatch:  c.Uint64(flags.IndexerBackfillBatch.Name),
		ReorgLookback:  c.Uint64(flags.IndexerReorgLookback.Name),
	}

	if c.IsSet(flags.IndexerStartSlot.Name) {
		slot := c.Uint64(flags.IndexerStartSlot.Name)
		cfg.StartSlot = &slot
	}

	if raw := c.String(flags.IndexerWatchAddresses.Name); raw != "" {
		cfg.WatchAddresses = make(map[common.Address]struct{})
		for _, addr := range strings.Split(raw, ",") {
			addr = strings.TrimSpace(addr)
			if addr == "" {
				continue
			}
			cfg.WatchAddresses[common.HexToAddress(addr)] = struct{}{}
		}
	}

	return cfg, nil
}
