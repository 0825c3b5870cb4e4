package bucket

import (
	"context"
	"path/filepath"
	"testing"

	"campus/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVStore_MemBucket(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, "mem://", "campus/")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.Get(ctx, repository.KeyUser)
	require.ErrorIs(t, err, repository.ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, repository.KeyUser, `{"username":"alice"}`))
	require.NoError(t, store.Set(ctx, repository.KeyPosts, `[]`))

	got, err := store.Get(ctx, repository.KeyUser)
	require.NoError(t, err)
	assert.Equal(t, `{"username":"alice"}`, got)

	require.NoError(t, store.Remove(ctx, repository.KeyUser))
	require.NoError(t, store.Remove(ctx, repository.KeyUser))

	require.NoError(t, store.Clear(ctx))
	_, err = store.Get(ctx, repository.KeyPosts)
	require.ErrorIs(t, err, repository.ErrKeyNotFound)
}

func TestKVStore_FileBucketSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	bucketURL := "file://" + filepath.ToSlash(t.TempDir())

	store, err := Open(ctx, bucketURL, "")
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, repository.KeyPosts, `[{"id":"p1"}]`))
	require.NoError(t, store.Close())

	reopened, err := Open(ctx, bucketURL, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.Get(ctx, repository.KeyPosts)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"p1"}]`, got)
}
