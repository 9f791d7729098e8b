package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noor/habit-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_GetAbsentKey(t *testing.T) {
	store := newTestStore(t)

	_, found, err := store.Get(context.Background(), "cache:user-profile")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_SetGetDelete_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Set(ctx, "cache:user-profile", `{"name":"x"}`))

	value, found, err := store.Get(ctx, "cache:user-profile")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, `{"name":"x"}`, value)

	require.NoError(t, store.Delete(ctx, "cache:user-profile"))
	_, found, err = store.Get(ctx, "cache:user-profile")
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting an absent key is not an error
	require.NoError(t, store.Delete(ctx, "cache:user-profile"))
}

func TestStore_Set_OverwritesExisting(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Set(ctx, "k", "v1"))
	require.NoError(t, store.Set(ctx, "k", "v2"))

	value, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "v2", value)
}

func TestStore_Keys_PrefixFilteredAndSorted(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, k := range []string{"ledger:fasting-days", "cache:quran-progress", "cache:last-sync", "ledger:activity"} {
		require.NoError(t, store.Set(ctx, k, "{}"))
	}

	keys, err := store.Keys(ctx, "cache:")
	require.NoError(t, err)
	assert.Equal(t, []string{"cache:last-sync", "cache:quran-progress"}, keys)

	keys, err = store.Keys(ctx, "ledger:")
	require.NoError(t, err)
	assert.Equal(t, []string{"ledger:activity", "ledger:fasting-days"}, keys)
}

func TestStore_SurvivesReopen(t *testing.T) {
	// GIVEN: A value written to a file-backed database
	// WHEN: Closing and reopening the same file
	// THEN: The value is still there

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "habits.db")

	s1, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, s1.Set(ctx, "cache:offline-queue", "[]"))
	require.NoError(t, s1.Close())

	s2, err := sqlite.New(path)
	require.NoError(t, err)
	defer s2.Close()

	value, found, err := s2.Get(ctx, "cache:offline-queue")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "[]", value)
}
