package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_KV_SetAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, KeySeedNames, []byte(`["urease"]`)))
	v, ok, err := st.Get(ctx, KeySeedNames)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `["urease"]`, string(v))
}

func TestSQLite_KV_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	v, ok, err := st.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestSQLite_KV_Overwrite(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, "k", []byte("one")))
	require.NoError(t, st.Set(ctx, "k", []byte("two")))
	v, _, err := st.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "two", string(v))

	require.NoError(t, st.Delete(ctx, "k"))
	_, ok, err := st.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	require.NoError(t, st.Migrate(context.Background()))
}

func TestSQLite_PageCache(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SetCachedPage(ctx, "hash123", []byte("page content"), time.Hour))
	data, err := st.GetCachedPage(ctx, "hash123")
	require.NoError(t, err)
	assert.Equal(t, "page content", string(data))

	data, err = st.GetCachedPage(ctx, "other")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestSQLite_PageCache_Expired(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SetCachedPage(ctx, "old", []byte("stale"), -time.Minute))
	data, err := st.GetCachedPage(ctx, "old")
	require.NoError(t, err)
	assert.Nil(t, data)

	n, err := st.DeleteExpiredPages(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
