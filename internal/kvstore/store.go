// Package kvstore provides the narrow key-value persistence abstraction the
// domain runs on: string keys to string blobs, nothing more. Keeping the
// surface this small lets the storage service run unchanged on an in-memory
// map, SQLite, Postgres, or Redis.
package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been set or has been
// removed.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is the persistence contract. Each call is atomic on its own, but
// sequences of calls are not transactional; callers that read-modify-write
// must serialize themselves.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set writes value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
