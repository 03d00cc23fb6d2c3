package archive

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the current schema version.
const SchemaVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    case_id TEXT NOT NULL DEFAULT '',
    param TEXT NOT NULL DEFAULT '',
    value REAL NOT NULL DEFAULT 0,
    seed TEXT NOT NULL,  -- decimal uint64, exceeds INTEGER range

    length INTEGER NOT NULL,
    particles INTEGER NOT NULL,
    hop_a REAL NOT NULL,
    convert_ab REAL NOT NULL,
    hop_b REAL NOT NULL,
    convert_ba REAL NOT NULL,
    alpha REAL NOT NULL,
    beta REAL NOT NULL,
    steps INTEGER NOT NULL,
    warmup INTEGER NOT NULL,

    proposed INTEGER NOT NULL DEFAULT 0,
    accepted INTEGER NOT NULL DEFAULT 0,
    dropped INTEGER NOT NULL DEFAULT 0,
    injected INTEGER NOT NULL DEFAULT 0,
    extracted INTEGER NOT NULL DEFAULT 0,

    mean_a REAL NOT NULL DEFAULT 0,
    mean_b REAL NOT NULL DEFAULT 0,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_case ON runs(case_id, value);

CREATE TABLE IF NOT EXISTS densities (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    lane TEXT NOT NULL,  -- 'A' or 'B'
    site INTEGER NOT NULL,
    rho REAL NOT NULL,
    PRIMARY KEY (run_id, lane, site)
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`

// InitSchema creates the tables on a fresh database and refuses databases
// written by a newer schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	var version int
	err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&version)
	if err == nil {
		if version > SchemaVersion {
			return fmt.Errorf("archive schema version %d is newer than supported version %d", version, SchemaVersion)
		}
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return tx.Commit()
}
