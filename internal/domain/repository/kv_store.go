// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"
)

// Storage keys used by the content store.
const (
	KeyUser  = "user"  // The logged-in user record.
	KeyPosts = "posts" // The full post collection, comments included.
	KeyUsers = "users" // The signup catalog consulted by login and signup.
)

// ErrKeyNotFound is returned by KVStore.Get when nothing is stored under the key.
var ErrKeyNotFound = errors.New("key not found")

// KVStore is the durable key/value storage the content store is mirrored into.
// Values are serialized strings; implementations do not interpret them.
type KVStore interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Clear deletes every key owned by this store.
	Clear(ctx context.Context) error

	// Close releases the underlying driver.
	Close() error
}
