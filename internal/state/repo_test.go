package state

import (
	"context"
	"testing"

	pkgerrors "github.com/premiumstore/premiumstore-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSnapshotTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS store_snapshots (
  session_id TEXT NOT NULL,
  key TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  PRIMARY KEY (session_id, key)
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func TestRepositorySaveLoadRoundTrip(t *testing.T) {
	db := setupSnapshotTestDB(t)
	repo := NewRepository(db, nil)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "sess-1", KeyCart, []byte(`{"items":[]}`)))

	payload, err := repo.Load(ctx, "sess-1", KeyCart)
	require.NoError(t, err)
	assert.Equal(t, `{"items":[]}`, string(payload))
}

func TestRepositorySaveReplacesWholesale(t *testing.T) {
	db := setupSnapshotTestDB(t)
	repo := NewRepository(db, nil)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "sess-1", KeyWishlist, []byte(`[1,2,3]`)))
	require.NoError(t, repo.Save(ctx, "sess-1", KeyWishlist, []byte(`[7]`)))

	payload, err := repo.Load(ctx, "sess-1", KeyWishlist)
	require.NoError(t, err)
	assert.Equal(t, `[7]`, string(payload))

	var count int64
	require.NoError(t, db.Table("store_snapshots").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRepositoryLoadMissing(t *testing.T) {
	db := setupSnapshotTestDB(t)
	repo := NewRepository(db, nil)

	_, err := repo.Load(context.Background(), "sess-1", KeyTheme)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound), "expected not-found, got %v", err)
}

func TestRepositorySessionsIsolated(t *testing.T) {
	db := setupSnapshotTestDB(t)
	repo := NewRepository(db, nil)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "sess-a", KeyCart, []byte(`a`)))
	require.NoError(t, repo.Save(ctx, "sess-b", KeyCart, []byte(`b`)))

	payload, err := repo.Load(ctx, "sess-a", KeyCart)
	require.NoError(t, err)
	assert.Equal(t, "a", string(payload))
}

func TestRepositoryDelete(t *testing.T) {
	db := setupSnapshotTestDB(t)
	repo := NewRepository(db, nil)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "sess-1", KeyCart, []byte(`x`)))
	require.NoError(t, repo.Delete(ctx, "sess-1", KeyCart))
	require.NoError(t, repo.Delete(ctx, "sess-1", KeyCart), "deleting an absent row is a no-op")

	_, err := repo.Load(ctx, "sess-1", KeyCart)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}

func TestRepositoryValidation(t *testing.T) {
	repo := NewRepository(setupSnapshotTestDB(t), nil)

	err := repo.Save(context.Background(), "", KeyCart, nil)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	err = repo.Save(context.Background(), "sess-1", " ", nil)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess-1", KeyCart, []byte(`{"v":1}`)))
	payload, err := store.Load(ctx, "sess-1", KeyCart)
	require.NoError(t, err)
	assert.Equal(t, `{"v":1}`, string(payload))

	payload[0] = 'x'
	again, err := store.Load(ctx, "sess-1", KeyCart)
	require.NoError(t, err)
	assert.Equal(t, `{"v":1}`, string(again), "stored payload must not alias caller slices")

	require.NoError(t, store.Delete(ctx, "sess-1", KeyCart))
	_, err = store.Load(ctx, "sess-1", KeyCart)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}
