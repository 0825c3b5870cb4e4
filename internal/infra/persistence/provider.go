// Package persistence selects the durable KVStore driver from configuration.
package persistence

import (
	"context"
	"log/slog"

	"campus/config"
	domainerrors "campus/internal/domain/errors"
	"campus/internal/domain/repository"
	"campus/internal/infra/persistence/bucket"
	"campus/internal/infra/persistence/gormkv"
	"campus/internal/infra/persistence/memory"
	"campus/internal/infra/persistence/rediskv"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// KVStoreParams holds dependencies for the KVStore, injected by Fx
type KVStoreParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewKVStore opens the driver named by storage.driver and closes it on shutdown.
func NewKVStore(params KVStoreParams) (repository.KVStore, error) {
	cfg := params.Config
	logger := params.Logger

	var (
		store repository.KVStore
		err   error
	)

	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		logger.Warn("Using in-memory storage, nothing will survive a restart")
		store = memory.NewKVStore()

	case config.StorageDriverSQLite, config.StorageDriverPostgres:
		logger.Info("Using relational storage", slog.String("driver", cfg.Storage.Driver))
		db, openErr := gormkv.Open(cfg, logger)
		if openErr != nil {
			return nil, openErr
		}
		store = gormkv.NewKVStore(db)

	case config.StorageDriverBlob:
		logger.Info("Using bucket storage", slog.String("bucketUrl", cfg.Storage.BucketURL))
		store, err = bucket.Open(params.Ctx, cfg.Storage.BucketURL, cfg.Storage.KeyPrefix)

	case config.StorageDriverRedis:
		logger.Info("Using redis storage", slog.String("addr", cfg.Redis.Addr))
		store, err = rediskv.Open(params.Ctx, cfg.Redis, cfg.Storage.KeyPrefix)

	default:
		return nil, errors.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, err
	}

	guarded := Guard(store)

	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing storage")

			return guarded.Close()
		},
	})

	return guarded, nil
}

// guardedKVStore converts driver failures into PersistenceErrors so callers
// can tell storage faults from domain rejections.
type guardedKVStore struct {
	next repository.KVStore
}

// Guard wraps store so every failure except ErrKeyNotFound surfaces as a PersistenceError.
func Guard(store repository.KVStore) repository.KVStore {
	return &guardedKVStore{next: store}
}

func (s *guardedKVStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.next.Get(ctx, key)
	if err != nil && !errors.Is(err, repository.ErrKeyNotFound) {
		return "", domainerrors.NewPersistenceError(err, "get "+key)
	}

	return value, err
}

func (s *guardedKVStore) Set(ctx context.Context, key, value string) error {
	return persistenceError(s.next.Set(ctx, key, value), "set "+key)
}

func (s *guardedKVStore) Remove(ctx context.Context, key string) error {
	return persistenceError(s.next.Remove(ctx, key), "remove "+key)
}

func (s *guardedKVStore) Clear(ctx context.Context) error {
	return persistenceError(s.next.Clear(ctx), "clear")
}

func (s *guardedKVStore) Close() error {
	return persistenceError(s.next.Close(), "close")
}

func persistenceError(err error, details string) error {
	if err == nil {
		return nil
	}

	return domainerrors.NewPersistenceError(err, details)
}
