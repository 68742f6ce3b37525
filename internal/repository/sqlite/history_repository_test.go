package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gigfinder/internal/repository/sqlite"
)

func TestHistoryRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "gigfinder.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := sqlite.NewHistoryRepository(db, "gigfinder-job-history")

	data, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, data, "missing record must load as nil")

	require.NoError(t, repo.Save(ctx, []byte(`[{"id":"1"}]`)))
	require.NoError(t, repo.Save(ctx, []byte(`[{"id":"2"},{"id":"1"}]`)))

	data, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"2"},{"id":"1"}]`, string(data))
}

func TestHistoryRepository_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "gigfinder.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	a := sqlite.NewHistoryRepository(db, "a")
	b := sqlite.NewHistoryRepository(db, "b")
	require.NoError(t, a.Save(ctx, []byte(`["a"]`)))

	data, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)
}
