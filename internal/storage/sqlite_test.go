package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finflow/internal/common"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestMigrate_IsIdempotent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))

	var version int
	require.NoError(t, store.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version))
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestKV_SetGetDelete(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.Get(ctx, "token")
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, store.SetMany(ctx, map[string]string{
		"token": "abc",
		"user":  `{"email":"ana@example.com"}`,
	}))

	got, err := store.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	require.NoError(t, store.Set(ctx, "token", "def"))
	got, err = store.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "def", got)

	require.NoError(t, store.Delete(ctx, "token", "user", "missing"))
	_, err = store.Get(ctx, "user")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestKV_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "session.db")

	store, err := Open(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "token", "persisted"))
	require.NoError(t, store.Close())

	reopened, err := Open(ctx, dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "persisted", got)
}

func TestKV_RejectsEmptyKey(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	err := store.Set(context.Background(), "", "x")
	assert.ErrorIs(t, err, ErrEmptyString)
}
