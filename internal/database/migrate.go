package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// MigrationState is one row of `migrate status`.
type MigrationState struct {
	Version int64
	Source  string
	Applied bool
}

func (db *DB) provider() (*goose.Provider, error) {
	dialect, dir := goose.DialectPostgres, "migrations/postgres"
	if db.Driver == DriverSQLite {
		dialect, dir = goose.DialectSQLite3, "migrations/sqlite"
	}

	fsys, err := fs.Sub(migrations, dir)
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}

	provider, err := goose.NewProvider(dialect, db.SQL, fsys)
	if err != nil {
		return nil, fmt.Errorf("create migration provider: %w", err)
	}

	return provider, nil
}

// EnsureSchema applies every pending migration.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if db == nil || db.SQL == nil {
		return fmt.Errorf("database is not initialized")
	}

	provider, err := db.provider()
	if err != nil {
		return err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	for _, result := range results {
		slog.Info("migration applied", "version", result.Source.Version, "duration", result.Duration)
	}

	slog.Info("database schema ensured", "applied", len(results))
	return nil
}

// RollbackOne reverts the most recently applied migration.
func (db *DB) RollbackOne(ctx context.Context) error {
	provider, err := db.provider()
	if err != nil {
		return err
	}

	result, err := provider.Down(ctx)
	if err != nil {
		return fmt.Errorf("rollback migration: %w", err)
	}

	slog.Info("migration rolled back", "version", result.Source.Version)
	return nil
}

func (db *DB) MigrationStatus(ctx context.Context) ([]MigrationState, error) {
	provider, err := db.provider()
	if err != nil {
		return nil, err
	}

	statuses, err := provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("read migration status: %w", err)
	}

	out := make([]MigrationState, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, MigrationState{
			Version: status.Source.Version,
			Source:  status.Source.Path,
			Applied: status.State == goose.StateApplied,
		})
	}

	return out, nil
}
