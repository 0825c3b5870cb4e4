// Package rediskv implements the KVStore on a Redis server using plain string keys.
package rediskv

import (
	"context"

	"campus/config"
	"campus/internal/domain/lifecycle"
	"campus/internal/domain/repository"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "campus:"
	scanBatchSize    = 100
)

type kvStore struct {
	client redis.UniversalClient
	prefix string
}

// Open connects to the configured Redis server and pings it.
func Open(ctx context.Context, cfg *config.RedisConfig, prefix string) (repository.KVStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()

		return nil, errors.Wrapf(err, "failed to ping redis at %s", cfg.Addr)
	}

	return NewKVStore(client, prefix), nil
}

// NewKVStore wraps an existing client. Keys are namespaced under prefix so Clear only touches this store.
func NewKVStore(client redis.UniversalClient, prefix string) repository.KVStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}

	return &kvStore{client: client, prefix: prefix}
}

func (s *kvStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", repository.ErrKeyNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to get %s", key)
	}

	return value, nil
}

func (s *kvStore) Set(ctx context.Context, key, value string) error {
	return errors.Wrapf(s.client.Set(ctx, s.prefix+key, value, 0).Err(), "failed to set %s", key)
}

func (s *kvStore) Remove(ctx context.Context, key string) error {
	return errors.Wrapf(s.client.Del(ctx, s.prefix+key).Err(), "failed to delete %s", key)
}

func (s *kvStore) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", scanBatchSize).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return errors.Wrapf(err, "failed to delete %s", iter.Val())
		}
	}

	return errors.Wrap(iter.Err(), "failed to scan keys")
}

func (s *kvStore) Close() error {
	return errors.Wrap(s.client.Close(), "failed to close redis client")
}
