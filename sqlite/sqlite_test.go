package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fwojciec/ragdoc/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB_Open(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("migrates a fresh database", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(sqlite.MemoryPath)
		require.NoError(t, db.Open())
		t.Cleanup(func() { _ = db.Close() })

		version, err := db.SchemaVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, version)

		var n int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n))
		assert.Zero(t, n)
	})

	t.Run("missing directory", func(t *testing.T) {
		t.Parallel()

		assert.Error(t, sqlite.NewDB(filepath.Join(t.TempDir(), "absent", "ragdoc.db")).Open())
	})

	t.Run("file database uses WAL", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(filepath.Join(t.TempDir(), "ragdoc.db"))
		require.NoError(t, db.Open())
		t.Cleanup(func() { _ = db.Close() })

		var mode string
		require.NoError(t, db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
		assert.Equal(t, "wal", mode)
	})

	t.Run("reopen keeps rows and skips applied migrations", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "ragdoc.db")

		db := sqlite.NewDB(path)
		require.NoError(t, db.Open())
		_, err := db.ExecContext(ctx, `INSERT INTO chunks (id, url, text, text_hash, embedding, run_id) VALUES ('a', 'u', 't', 'h', x'', 'r')`)
		require.NoError(t, err)
		require.NoError(t, db.Close())

		db = sqlite.NewDB(path)
		require.NoError(t, db.Open())
		t.Cleanup(func() { _ = db.Close() })

		var n int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n))
		assert.Equal(t, 1, n)
	})

	t.Run("rejects a newer schema", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "ragdoc.db")

		db := sqlite.NewDB(path)
		require.NoError(t, db.Open())
		_, err := db.ExecContext(ctx, "PRAGMA user_version = 99")
		require.NoError(t, err)
		require.NoError(t, db.Close())

		assert.ErrorContains(t, sqlite.NewDB(path).Open(), "newer than supported")
	})

	t.Run("close before open", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, sqlite.NewDB(sqlite.MemoryPath).Close())
	})
}
