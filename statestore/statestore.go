// Package statestore defines the remote key/value abstraction shared by the
// session store and the cross-instance chat data store. Implementations wrap
// an already-consistent, already-durable backing service with per-key expiry;
// this package deliberately provides no replication or transaction semantics
// of its own.
package statestore

import (
	"context"
	"time"
)

// Store is the primary interface for shared key/value state.
//
// Absence and failure are distinct: Get returns a nil Item when the key does
// not exist (or its TTL has elapsed), and a non-nil error only for legitimate
// backend or connectivity failures. Callers must never conflate the two.
type Store interface {
	// Get retrieves the item stored at key.
	// Returns nil if the key doesn't exist or has expired.
	Get(ctx context.Context, key string) (*Item, error)

	// Set stores data at key. Without WithTTL the key is durable until
	// explicitly deleted; with WithTTL it expires autonomously, measured
	// from the call.
	Set(ctx context.Context, key string, data []byte, opts ...Option) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Size reports the approximate count of all keys in the shared
	// namespace. This counts every key the backing service holds, not only
	// keys written through this store, and must not be treated as
	// authoritative accounting.
	Size(ctx context.Context) (int64, error)

	// Close releases the backing connection.
	Close() error
}

// Item is a stored value with expiry metadata.
type Item struct {
	Data      []byte
	CreatedAt time.Time
	ExpiresAt *time.Time // nil = no expiration
}

// IsExpired reports whether the item's TTL has elapsed.
func (it *Item) IsExpired() bool {
	return it.ExpiresAt != nil && time.Now().After(*it.ExpiresAt)
}

// Option configures a Set operation.
type Option func(*Options)

// Options holds per-operation configuration.
type Options struct {
	TTL *time.Duration
}

// WithTTL sets a time-to-live for the stored data.
func WithTTL(ttl time.Duration) Option {
	return func(opts *Options) {
		opts.TTL = &ttl
	}
}
