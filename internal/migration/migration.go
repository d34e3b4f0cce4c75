package migration

import (
	"context"
	"time"

	"glmdesign/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations. Every statement is
// idempotent and valid on both PostgreSQL and SQLite.
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
	if err := r.createSchemaMigrationsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create schema_migrations table")
	}

	if err := r.createDesignRunsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create design_runs table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	if err := r.recordVersion(ctx, db); err != nil {
		return errors.Wrap(err, "failed to record schema version")
	}

	return nil
}

func (r *MigrationRunner) createSchemaMigrationsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(32) PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createDesignRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS design_runs (
			id VARCHAR(36) PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			fingerprint VARCHAR(64) NOT NULL,
			input_hash VARCHAR(64) NOT NULL,
			options_hash VARCHAR(64) NOT NULL,
			options TEXT NOT NULL,
			result TEXT NOT NULL,
			diagnostics TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_design_runs_fingerprint ON design_runs(fingerprint)`,
		`CREATE INDEX IF NOT EXISTS idx_design_runs_created_at ON design_runs(created_at)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *MigrationRunner) recordVersion(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, db.Rebind(`
		INSERT INTO schema_migrations (version, applied_at)
		VALUES (?, ?)
		ON CONFLICT (version) DO NOTHING
	`), r.version, time.Now().UTC())
	return err
}
