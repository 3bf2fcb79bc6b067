package indexer

import (
	"context"
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate brings db up to the latest schema version using the embedded
// goose migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectMySQL, db, migrationFS)
	if err != nil {
		return err
	}
	_, err = provider.Up(ctx)
	return err
}
