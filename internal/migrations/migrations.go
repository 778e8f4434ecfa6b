package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Migrations is the registry every schema migration adds itself to.
var Migrations = migrate.NewMigrations()

// Apply initialises the migration tables and runs every pending migration.
// It returns the ID of the applied group, or 0 when nothing was pending.
func Apply(ctx context.Context, db *bun.DB) (int64, error) {
	migrator := migrate.NewMigrator(db, Migrations)
	if err := migrator.Init(ctx); err != nil {
		return 0, fmt.Errorf("initialize migrator: %w", err)
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return 0, fmt.Errorf("migrate: %w", err)
	}
	return group.ID, nil
}
