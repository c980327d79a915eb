package database

import (
	"context"
	"fmt"

	"github.com/yourusername/skycast/internal/config"
)

// schema holds the tables the service persists into. Kept as idempotent
// statements so startup can run them unconditionally.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS calibrations (
		id            UUID PRIMARY KEY,
		run_id        UUID NOT NULL,
		condition     TEXT NOT NULL,
		threshold     DOUBLE PRECISION NOT NULL,
		accuracy      DOUBLE PRECISION NOT NULL,
		precision     DOUBLE PRECISION NOT NULL,
		recall        DOUBLE PRECISION NOT NULL,
		f1            DOUBLE PRECISION NOT NULL,
		train_size    INTEGER NOT NULL,
		eval_size     INTEGER NOT NULL,
		positives     INTEGER NOT NULL,
		calibrated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_calibrations_condition_time
		ON calibrations (condition, calibrated_at DESC)`,
	`CREATE TABLE IF NOT EXISTS predictions (
		id           UUID PRIMARY KEY,
		condition    TEXT NOT NULL,
		probability  DOUBLE PRECISION NOT NULL,
		predicted    BOOLEAN NOT NULL,
		threshold    DOUBLE PRECISION NOT NULL,
		confidence   DOUBLE PRECISION NOT NULL,
		latitude     DOUBLE PRECISION NOT NULL,
		longitude    DOUBLE PRECISION NOT NULL,
		year         INTEGER NOT NULL,
		month        INTEGER NOT NULL,
		day          INTEGER NOT NULL,
		predicted_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_predictions_condition_time
		ON predictions (condition, predicted_at DESC)`,
}

// Initialize creates a database connection pool and applies the schema.
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate applies the schema statements in order.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
