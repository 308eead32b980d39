package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// migration is one schema step. Steps run in order, each in its own
// transaction, and are recorded in the migrations table.
type migration struct {
	version    int
	name       string
	statements []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "drafts",
		// One draft per template; saving again replaces it.
		statements: []string{
			`CREATE TABLE drafts (
				template_id TEXT PRIMARY KEY,
				graph_json TEXT NOT NULL,
				node_count INTEGER NOT NULL DEFAULT 0,
				connection_count INTEGER NOT NULL DEFAULT 0,
				saved_at TIMESTAMP NOT NULL
			)`,
			`CREATE INDEX idx_drafts_saved_at ON drafts(saved_at DESC)`,
		},
	},
}

// MigrationVersion is the schema version a fully migrated database has.
var MigrationVersion = migrations[len(migrations)-1].version

// InitializeDatabase brings the drafts database up to MigrationVersion.
func InitializeDatabase(ctx context.Context, db *sql.DB) error {
	const bookkeeping = `
	CREATE TABLE IF NOT EXISTS migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.ExecContext(ctx, bookkeeping); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM migrations").Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := apply(ctx, db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
	}
	return nil
}

func apply(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range m.statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO migrations (version, name) VALUES (?, ?)", m.version, m.name); err != nil {
		return err
	}
	return tx.Commit()
}
