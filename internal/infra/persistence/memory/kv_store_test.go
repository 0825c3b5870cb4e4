package memory

import (
	"context"
	"testing"

	"campus/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewKVStore()

	_, err := store.Get(ctx, repository.KeyUser)
	require.ErrorIs(t, err, repository.ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, repository.KeyUser, `{"username":"alice"}`))
	got, err := store.Get(ctx, repository.KeyUser)
	require.NoError(t, err)
	assert.Equal(t, `{"username":"alice"}`, got)

	require.NoError(t, store.Remove(ctx, repository.KeyUser))
	require.NoError(t, store.Remove(ctx, repository.KeyUser), "removing an absent key is not an error")
	_, err = store.Get(ctx, repository.KeyUser)
	require.ErrorIs(t, err, repository.ErrKeyNotFound)
}

func TestKVStore_Clear(t *testing.T) {
	ctx := context.Background()
	store := NewKVStore()

	require.NoError(t, store.Set(ctx, repository.KeyPosts, "[]"))
	require.NoError(t, store.Set(ctx, repository.KeyUsers, "[]"))
	require.NoError(t, store.Clear(ctx))

	assert.Empty(t, store.Dump())
}
