package service

import "context"

// PersistEffect is one pending write to durable storage: the full serialized
// snapshot for Key, or its removal.
type PersistEffect struct {
	Key    string
	Value  string
	Remove bool
}

// SnapshotWriter applies persistence effects in the background.
// The store enqueues an effect after every mutation and never waits for it.
type SnapshotWriter interface {
	// Enqueue schedules effect. A newer effect for a key still pending replaces the older one.
	Enqueue(effect PersistEffect)

	// Flush blocks until every effect enqueued before the call has been applied or ctx ends.
	Flush(ctx context.Context) error

	// Close drains pending effects and stops the writer.
	Close(ctx context.Context) error
}
