package persistence

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"campus/config"
	domainerrors "campus/internal/domain/errors"
	"campus/internal/domain/repository"
	mockRepo "campus/internal/mocks/repository"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

func newParams(t *testing.T, cfg *config.Config) (KVStoreParams, *fxtest.Lifecycle) {
	t.Helper()

	lc := fxtest.NewLifecycle(t)

	return KVStoreParams{
		Lc:     lc,
		Ctx:    context.Background(),
		Config: cfg,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, lc
}

func TestNewKVStore_Drivers(t *testing.T) {
	tests := []struct {
		name    string
		storage config.StorageConfig
	}{
		{name: "memory", storage: config.StorageConfig{Driver: config.StorageDriverMemory}},
		{name: "sqlite", storage: config.StorageConfig{
			Driver:     config.StorageDriverSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "campus.db"),
		}},
		{name: "blob", storage: config.StorageConfig{Driver: config.StorageDriverBlob, BucketURL: "mem://"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Storage: tt.storage}
			params, lc := newParams(t, cfg)

			store, err := NewKVStore(params)
			require.NoError(t, err)

			lc.RequireStart()

			ctx := context.Background()
			require.NoError(t, store.Set(ctx, repository.KeyPosts, "[]"))
			got, err := store.Get(ctx, repository.KeyPosts)
			require.NoError(t, err)
			assert.Equal(t, "[]", got)

			_, err = store.Get(ctx, repository.KeyUser)
			assert.ErrorIs(t, err, repository.ErrKeyNotFound)

			lc.RequireStop()
		})
	}
}

func TestNewKVStore_UnknownDriver(t *testing.T) {
	params, _ := newParams(t, &config.Config{Storage: config.StorageConfig{Driver: "floppy"}})

	_, err := NewKVStore(params)
	assert.Error(t, err)
}

func TestGuard_WrapsDriverErrors(t *testing.T) {
	ctx := context.Background()
	driverErr := errors.New("connection reset")

	inner := mockRepo.NewMockKVStore(t)
	inner.EXPECT().Get(mock.Anything, repository.KeyUser).Return("", repository.ErrKeyNotFound).Once()
	inner.EXPECT().Get(mock.Anything, repository.KeyPosts).Return("", driverErr).Once()
	inner.EXPECT().Set(mock.Anything, repository.KeyUsers, "[]").Return(driverErr).Once()
	inner.EXPECT().Remove(mock.Anything, repository.KeyUser).Return(nil).Once()
	inner.EXPECT().Clear(mock.Anything).Return(driverErr).Once()

	store := Guard(inner)

	_, err := store.Get(ctx, repository.KeyUser)
	require.ErrorIs(t, err, repository.ErrKeyNotFound)
	assert.NotErrorIs(t, err, domainerrors.ErrPersistenceFailed, "absence is not a storage fault")

	_, err = store.Get(ctx, repository.KeyPosts)
	require.ErrorIs(t, err, domainerrors.ErrPersistenceFailed)
	assert.ErrorIs(t, err, driverErr)

	err = store.Set(ctx, repository.KeyUsers, "[]")
	require.ErrorIs(t, err, domainerrors.ErrPersistenceFailed)

	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "PERSISTENCE_FAILED", appErr.ErrorCode())

	assert.NoError(t, store.Remove(ctx, repository.KeyUser))
	assert.ErrorIs(t, store.Clear(ctx), domainerrors.ErrPersistenceFailed)
}
