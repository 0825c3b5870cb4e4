// Package bucket implements the KVStore on a gocloud.dev bucket: one object per key.
// A file:// bucket keeps each key as a file in a local directory.
package bucket

import (
	"context"
	"io"

	"campus/internal/domain/repository"

	"github.com/pkg/errors"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// buckets
	_ "gocloud.dev/blob/memblob"  // mem:// buckets
	"gocloud.dev/gcerrors"
)

const contentType = "application/json"

type kvStore struct {
	bucket *blob.Bucket
}

// Open opens bucketURL and optionally scopes every key under prefix.
func Open(ctx context.Context, bucketURL, prefix string) (repository.KVStore, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bucket %s", bucketURL)
	}

	if prefix != "" {
		bucket = blob.PrefixedBucket(bucket, prefix)
	}

	return &kvStore{bucket: bucket}, nil
}

func (s *kvStore) Get(ctx context.Context, key string) (string, error) {
	data, err := s.bucket.ReadAll(ctx, key)
	if gcerrors.Code(err) == gcerrors.NotFound {
		return "", repository.ErrKeyNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to read object %s", key)
	}

	return string(data), nil
}

func (s *kvStore) Set(ctx context.Context, key, value string) error {
	err := s.bucket.WriteAll(ctx, key, []byte(value), &blob.WriterOptions{ContentType: contentType})

	return errors.Wrapf(err, "failed to write object %s", key)
}

func (s *kvStore) Remove(ctx context.Context, key string) error {
	err := s.bucket.Delete(ctx, key)
	if err == nil || gcerrors.Code(err) == gcerrors.NotFound {
		return nil
	}

	return errors.Wrapf(err, "failed to delete object %s", key)
}

func (s *kvStore) Clear(ctx context.Context) error {
	iter := s.bucket.List(nil)
	for {
		obj, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "failed to list objects")
		}
		if obj.IsDir {
			continue
		}
		if err := s.Remove(ctx, obj.Key); err != nil {
			return err
		}
	}
}

func (s *kvStore) Close() error {
	return errors.Wrap(s.bucket.Close(), "failed to close bucket")
}
