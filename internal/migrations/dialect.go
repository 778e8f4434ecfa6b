package migrations

import (
	"context"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// IsSQLite checks if the database is SQLite
func IsSQLite(db bun.IDB) bool {
	return db.Dialect().Name() == dialect.SQLite
}

// IsPostgreSQL checks if the database is PostgreSQL
func IsPostgreSQL(db bun.IDB) bool {
	return db.Dialect().Name() == dialect.PG
}

// errForeignKeysDisabled is returned when SQLite would silently skip the
// ON DELETE actions the schema declares.
var errForeignKeysDisabled = errors.New("sqlite foreign key enforcement is disabled (PRAGMA foreign_keys = OFF)")

// requireForeignKeys checks that the SQLite connection enforces foreign keys.
func requireForeignKeys(ctx context.Context, db *bun.DB) error {
	var enabled int
	if err := db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&enabled); err != nil {
		return fmt.Errorf("failed to read foreign_keys pragma: %w", err)
	}
	if enabled != 1 {
		return errForeignKeysDisabled
	}
	return nil
}
