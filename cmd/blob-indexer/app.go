package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/taikoxyz/surge-preconf-client/pkg/indexer"
)

// beaconClientTimeout bounds every single request the indexer's beacon
// client issues; retries and pacing are the indexer's own concern.
const beaconClientTimeout = 10 * time.Second

// App owns the reorg-aware blob/block indexer's lifecycle.
type App struct {
	idx    *indexer.Indexer
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func (a *App) Name() string { return "blob-indexer" }

// InitFromCli parses flags, opens and migrates the database, and wires the
// indexer ready to run.
func (a *App) InitFromCli(ctx context.Context, c *cli.Context) error {
	cfg, err := NewConfigFromCliContext(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg.DatabaseDSN)
	if err != nil {
		return err
	}

	if err := migrateDatabase(ctx, db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	storage := indexer.NewStorage(db)
	beacon := indexer.NewBeaconClient(cfg.BeaconEndpoint, beaconClientTimeout)

	a.idx = indexer.New(indexer.Config{
		PollInterval:   cfg.PollInterval,
		BackfillBatch:  cfg.BackfillBatch,
		ReorgLookback:  cfg.ReorgLookback,
		StartSlot:      cfg.StartSlot,
		WatchAddresses: cfg.WatchAddresses,
	}, storage, beacon)

	return nil
}

// Start runs the indexer's poll loop in the background.
func (a *App) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.idx.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("indexer run exited", "error", err)
		}
	}()

	return nil
}

// Close stops the poll loop and waits for it to drain.
func (a *App) Close(context.Context) {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()
}

func openDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func migrateDatabase(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("unwrap sql.DB: %w", err)
	}
	return indexer.Migrate(ctx, sqlDB)
}
