package database

import (
	"database/sql"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/extra/bundebug"
)

// NewBunDB creates a Bun DB instance from an existing sql.DB connection.
// verbose enables per-query logging, intended for development only.
func NewBunDB(sqlDB *sql.DB, verbose bool) *bun.DB {
	db := bun.NewDB(sqlDB, pgdialect.New())
	if verbose {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}
