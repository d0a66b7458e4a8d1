package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newMemoryDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(context.Background(), DriverSQLite, ":memory:", 4, 2)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	return db
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), "mysql", "whatever", 1, 1)
	require.ErrorContains(t, err, "unsupported database driver")
}

func TestEnsureSchemaCreatesTables(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newMemoryDB(t)

	require.NoError(t, db.EnsureSchema(ctx))
	require.NoError(t, db.Health(ctx))

	for _, table := range []string{"users", "topics", "posts", "audit_entries"} {
		var name string
		err := db.SQL.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = $1`, table).Scan(&name)
		require.NoError(t, err, table)
		require.Equal(t, table, name)
	}

	// Re-running is a no-op.
	require.NoError(t, db.EnsureSchema(ctx))
}

func TestMigrationStatusAndRollback(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newMemoryDB(t)

	states, err := db.MigrationStatus(ctx)
	require.NoError(t, err)
	require.Len(t, states, 2)
	for _, state := range states {
		require.False(t, state.Applied)
	}

	require.NoError(t, db.EnsureSchema(ctx))

	states, err = db.MigrationStatus(ctx)
	require.NoError(t, err)
	for _, state := range states {
		require.True(t, state.Applied, state.Source)
	}

	require.NoError(t, db.RollbackOne(ctx))

	states, err = db.MigrationStatus(ctx)
	require.NoError(t, err)
	require.True(t, states[0].Applied)
	require.False(t, states[1].Applied)
	require.Equal(t, int64(2), states[1].Version)
}
