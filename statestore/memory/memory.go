// Package memory provides an in-memory implementation of statestore.Store
// using github.com/hashicorp/golang-lru/v2. It is suitable for tests and
// single-process deployments; state is not shared across instances.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ktb-chat/chat-state-go/statestore"
)

// Store implements statestore.Store with a bounded LRU cache.
type Store struct {
	mu    sync.RWMutex
	cache *lru.Cache[string, *statestore.Item]

	stopSweep chan struct{}
	stopOnce  sync.Once
}

// New creates an in-memory store bounded to maxItems entries.
func New(maxItems int) (*Store, error) {
	cache, err := lru.New[string, *statestore.Item](maxItems)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}

	s := &Store{
		cache:     cache,
		stopSweep: make(chan struct{}),
	}

	// Background cleanup of expired items; reads also expire lazily.
	go s.sweepExpired()

	return s, nil
}

// Get retrieves the item stored at key. Expired items read as absent and are
// removed on the way out.
func (s *Store) Get(ctx context.Context, key string) (*statestore.Item, error) {
	s.mu.RLock()
	item, exists := s.cache.Get(key)
	s.mu.RUnlock()

	if !exists {
		return nil, nil
	}

	if item.IsExpired() {
		s.mu.Lock()
		s.cache.Remove(key)
		s.mu.Unlock()
		return nil, nil
	}

	return item, nil
}

// Set stores data at key, with an optional TTL.
func (s *Store) Set(ctx context.Context, key string, data []byte, opts ...statestore.Option) error {
	options := &statestore.Options{}
	for _, opt := range opts {
		opt(options)
	}

	now := time.Now()
	item := &statestore.Item{
		Data:      append([]byte(nil), data...),
		CreatedAt: now,
	}
	if options.TTL != nil {
		expiresAt := now.Add(*options.TTL)
		item.ExpiresAt = &expiresAt
	}

	s.mu.Lock()
	s.cache.Add(key, item)
	s.mu.Unlock()

	return nil
}

// Delete removes the key.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	s.cache.Remove(key)
	s.mu.Unlock()
	return nil
}

// Size reports the count of live (non-expired) entries.
func (s *Store) Size(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var n int64
	for _, key := range s.cache.Keys() {
		if item, ok := s.cache.Peek(key); ok {
			if item.ExpiresAt != nil && now.After(*item.ExpiresAt) {
				s.cache.Remove(key)
				continue
			}
			n++
		}
	}
	return n, nil
}

// Close stops the expiry sweeper and drops all entries.
func (s *Store) Close() error {
	s.stopOnce.Do(func() { close(s.stopSweep) })
	s.mu.Lock()
	s.cache.Purge()
	s.mu.Unlock()
	return nil
}

func (s *Store) sweepExpired() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopSweep:
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		now := time.Now()
		for _, key := range s.cache.Keys() {
			if item, ok := s.cache.Peek(key); ok {
				if item.ExpiresAt != nil && now.After(*item.ExpiresAt) {
					s.cache.Remove(key)
				}
			}
		}
		s.mu.Unlock()
	}
}

// Compile-time interface check
var _ statestore.Store = (*Store)(nil)
