package migration

import (
	"context"

	"textattack/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the augmentation run schema.
// Statements stay within the subset PostgreSQL and SQLite share.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createRunsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create augmentation_runs table")
	}

	if err := r.createResultsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create augmentation_results table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

// created_at is a fixed-width UTC string so ordering works the same on both drivers.
func (r *MigrationRunner) createRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS augmentation_runs (
			id VARCHAR(36) PRIMARY KEY,
			recipe VARCHAR(64) NOT NULL,
			params TEXT NOT NULL,
			summary TEXT,
			created_at VARCHAR(40) NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createResultsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS augmentation_results (
			run_id VARCHAR(36) NOT NULL REFERENCES augmentation_runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			input TEXT NOT NULL,
			input_hash VARCHAR(64) NOT NULL,
			outputs TEXT NOT NULL,
			candidate_count INTEGER NOT NULL DEFAULT 0,
			word_count INTEGER NOT NULL DEFAULT 0,
			words_to_swap INTEGER NOT NULL DEFAULT 0,
			dropped TEXT,
			PRIMARY KEY (run_id, position)
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_augmentation_runs_created_at ON augmentation_runs(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_augmentation_runs_recipe ON augmentation_runs(recipe)`,
		`CREATE INDEX IF NOT EXISTS idx_augmentation_results_input_hash ON augmentation_results(input_hash)`,
	}

	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
