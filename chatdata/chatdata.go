// Package chatdata is the shared data cache realtime connection handlers use
// to exchange ephemeral room/presence state across horizontally scaled chat
// instances. Without it, a client reconnecting to a different instance would
// lose room and presence bookkeeping; the store is the seam that makes any
// instance interchangeable for any client.
//
// Values are JSON-encoded and not strongly typed. Readers request a concrete
// type via the generic Get; a stored value whose shape does not decode into
// the requested type reads as absent rather than failing, because
// heterogeneous callers share the namespace.
package chatdata

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ktb-chat/chat-state-go/statestore"
)

// Store is a typed get/set/delete façade over the shared state store. Keys
// are caller-chosen strings with no TTL; lifetime is caller-managed.
type Store struct {
	kv statestore.Store
}

// New builds a chat data store on top of the given state store.
func New(kv statestore.Store) *Store {
	return &Store{kv: kv}
}

// Get decodes the value at key into T. The second return is false when the
// key is absent or the stored shape does not match T; errors are backend
// failures only.
func Get[T any](ctx context.Context, s *Store, key string) (T, bool, error) {
	var zero T

	item, err := s.kv.Get(ctx, key)
	if err != nil {
		return zero, false, fmt.Errorf("chatdata: get %s: %w", key, err)
	}
	if item == nil {
		return zero, false, nil
	}

	var value T
	if err := json.Unmarshal(item.Data, &value); err != nil {
		// Wrong shape for the requested type; treated as absent, never an
		// error, because the store is not strongly typed.
		return zero, false, nil
	}
	return value, true, nil
}

// Set stores value at key with no TTL.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("chatdata: marshal %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("chatdata: set %s: %w", key, err)
	}
	return nil
}

// Delete removes the key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.kv.Delete(ctx, key); err != nil {
		return fmt.Errorf("chatdata: delete %s: %w", key, err)
	}
	return nil
}

// Size reports the approximate total key count across the whole shared
// namespace. This counts every key in the backing store, not only
// chat-related ones; use it for coarse capacity diagnostics, never for
// precise accounting.
func (s *Store) Size(ctx context.Context) (int64, error) {
	n, err := s.kv.Size(ctx)
	if err != nil {
		return 0, fmt.Errorf("chatdata: size: %w", err)
	}
	return n, nil
}
