// Package redis implements statestore.Store on top of a shared Redis
// deployment, single-node or clustered. It is the implementation that makes
// horizontally scaled chat instances interchangeable: any instance with store
// access can read any key.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/ktb-chat/chat-state-go/statestore"
	"github.com/redis/go-redis/v9"
)

// Config for the Redis-backed store. Defaults can be loaded via envdecode.
type Config struct {
	// Addr like "localhost:6379". ENV: REDIS_ADDR
	Addr string `env:"REDIS_ADDR,default=localhost:6379"`
	// Password, empty for unauthenticated deployments. ENV: REDIS_PASSWORD
	Password string `env:"REDIS_PASSWORD,default="`
	// DB is the logical database index. Ignored in cluster mode. ENV: REDIS_DB
	DB int `env:"REDIS_DB,default=0"`
	// ClusterNodes is a comma-separated node list. When non-empty the store
	// addresses a Redis cluster instead of a single server.
	// ENV: REDIS_CLUSTER_NODES
	ClusterNodes string `env:"REDIS_CLUSTER_NODES,default="`
	// KeyPrefix for all keys written through this store.
	// ENV: STATE_KEY_PREFIX
	KeyPrefix string `env:"STATE_KEY_PREFIX,default=chatapp:"`
	// DialTimeout bounds the initial connectivity probe. ENV: REDIS_DIAL_TIMEOUT
	DialTimeout time.Duration `env:"REDIS_DIAL_TIMEOUT,default=2s"`
}

// Store implements statestore.Store using Redis.
type Store struct {
	client    redis.UniversalClient
	keyPrefix string
}

// storedItem is the JSON envelope persisted for each key. Expiry metadata is
// carried alongside the Redis TTL so readers can reject items a lagging
// server has not evicted yet.
type storedItem struct {
	Data      []byte     `json:"data"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// New connects to the configured Redis deployment and verifies connectivity
// before returning.
func New(cfg Config) (*Store, error) {
	client := newClient(cfg)

	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "chatapp:"
	}
	return &Store{client: client, keyPrefix: prefix}, nil
}

// NewFromEnv builds a Store using envdecode to populate Config.
func NewFromEnv() (*Store, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode redis config: %w", err)
	}
	return New(cfg)
}

func newClient(cfg Config) redis.UniversalClient {
	if nodes := splitNodes(cfg.ClusterNodes); len(nodes) > 0 {
		return redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:    nodes,
			Password: cfg.Password,
		})
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func splitNodes(nodes string) []string {
	var out []string
	for _, n := range strings.Split(nodes, ",") {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Get retrieves the item stored at key. Returns nil for an absent or expired
// key; errors are backend failures only.
func (s *Store) Get(ctx context.Context, key string) (*statestore.Item, error) {
	redisKey := s.keyPrefix + key

	result := s.client.Get(ctx, redisKey)
	if err := result.Err(); err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get key %s: %w", redisKey, err)
	}

	var item storedItem
	if err := json.Unmarshal([]byte(result.Val()), &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored data: %w", err)
	}

	out := &statestore.Item{
		Data:      item.Data,
		CreatedAt: item.CreatedAt,
		ExpiresAt: item.ExpiresAt,
	}
	if out.IsExpired() {
		// Redis will evict it on its own schedule; readers see it gone now.
		s.client.Del(ctx, redisKey)
		return nil, nil
	}
	return out, nil
}

// Set stores data at key, with an optional TTL.
func (s *Store) Set(ctx context.Context, key string, data []byte, opts ...statestore.Option) error {
	options := &statestore.Options{}
	for _, opt := range opts {
		opt(options)
	}

	redisKey := s.keyPrefix + key

	now := time.Now()
	item := storedItem{
		Data:      data,
		CreatedAt: now,
	}

	var redisTTL time.Duration
	if options.TTL != nil {
		expiresAt := now.Add(*options.TTL)
		item.ExpiresAt = &expiresAt
		redisTTL = *options.TTL
	}

	itemData, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal storage item: %w", err)
	}

	if err := s.client.Set(ctx, redisKey, itemData, redisTTL).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", redisKey, err)
	}
	return nil
}

// Delete removes the key. Absent keys are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	redisKey := s.keyPrefix + key
	if err := s.client.Del(ctx, redisKey).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", redisKey, err)
	}
	return nil
}

// Size reports the key count of the whole logical database, not just keys
// written through this store.
func (s *Store) Size(ctx context.Context) (int64, error) {
	n, err := s.client.DBSize(ctx).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count keys: %w", err)
	}
	return n, nil
}

// Close closes the underlying Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Compile-time interface check
var _ statestore.Store = (*Store)(nil)
