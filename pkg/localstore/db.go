// Package localstore is a SQLite-backed implementation of the store boundary
// for local projects, fixtures and integration tests. It answers aggregation
// queries by running the same filter and metrics code a client would run
// locally, so filtering locally then aggregating equals requesting the
// aggregate with the same filter.
package localstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver
)

// openDB opens a SQLite database at path with production-safe defaults: WAL
// journal mode and a 5-second busy timeout. It pings before returning to
// catch unusable paths early.
func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	ctx := context.Background()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode on %s: %w", path, err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout on %s: %w", path, err)
	}

	return db, nil
}

// createTables applies the schema. Statements are idempotent.
func createTables(db *sql.DB) error {
	ctx := context.Background()
	for _, stmt := range []string{
		CreateProjectsTable,
		CreateEventDefinitionsTable,
		CreateTasksTable,
		CreateEventsTable,
		CreateEventsTaskIndex,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
