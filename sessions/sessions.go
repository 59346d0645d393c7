package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joeshaw/envdecode"
	"github.com/ktb-chat/chat-state-go/statestore"
)

// DefaultKeyPrefix is the namespace prefix for per-user session buckets.
const DefaultKeyPrefix = "chatapp:session:user:"

// DefaultTTL is the session lifetime applied when Config leaves it unset.
// Every Save resets the clock.
const DefaultTTL = time.Hour

// ErrMissingUserID is returned by Save when the session has no user id.
var ErrMissingUserID = errors.New("sessions: missing user id")

// Session is the single active session bucket for a user. Exactly one Session
// exists per user at any instant; saving a new one replaces any prior session
// for that user (last-writer-wins, no merge).
type Session struct {
	UserID    string         `json:"userId"`
	SessionID string         `json:"sessionId"`
	CreatedAt time.Time      `json:"createdAt"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewSession mints a session for userID with a fresh random session id.
func NewSession(userID string) *Session {
	return &Session{
		UserID:    userID,
		SessionID: uuid.NewString(),
		CreatedAt: time.Now(),
	}
}

// Config for the session store. Defaults can be loaded via envdecode.
type Config struct {
	// TTL is the session lifetime; refreshed on every Save. ENV: SESSION_TTL
	TTL time.Duration `env:"SESSION_TTL,default=1h"`
	// KeyPrefix for per-user session buckets. ENV: SESSION_KEY_PREFIX
	KeyPrefix string `env:"SESSION_KEY_PREFIX,default=chatapp:session:user:"`
}

// ConfigFromEnv populates a Config using envdecode.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode session config: %w", err)
	}
	return cfg, nil
}

// Store keeps one session bucket per user in the shared state store, expiring
// after the configured TTL unless refreshed by Save.
type Store struct {
	kv        statestore.Store
	ttl       time.Duration
	keyPrefix string
}

// NewStore builds a session store on top of the given state store.
func NewStore(kv statestore.Store, cfg Config) *Store {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Store{kv: kv, ttl: ttl, keyPrefix: prefix}
}

func (s *Store) key(userID string) string {
	return s.keyPrefix + userID
}

// FindByUserID returns the user's current session, or nil when none exists or
// the previous one has expired.
func (s *Store) FindByUserID(ctx context.Context, userID string) (*Session, error) {
	if userID == "" {
		return nil, nil
	}

	item, err := s.kv.Get(ctx, s.key(userID))
	if err != nil {
		return nil, fmt.Errorf("sessions: get bucket for user %s: %w", userID, err)
	}
	if item == nil {
		return nil, nil
	}

	var sess Session
	if err := json.Unmarshal(item.Data, &sess); err != nil {
		return nil, fmt.Errorf("sessions: unmarshal session for user %s: %w", userID, err)
	}
	return &sess, nil
}

// Save writes the session into the user's bucket with the configured TTL.
// Each call extends the session's life and replaces any prior session for the
// same user. Concurrent saves race at the store's last-writer-wins
// granularity; no read-modify-write atomicity is provided.
func (s *Store) Save(ctx context.Context, sess *Session) (*Session, error) {
	if sess == nil || sess.UserID == "" {
		return nil, ErrMissingUserID
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("sessions: marshal session for user %s: %w", sess.UserID, err)
	}
	if err := s.kv.Set(ctx, s.key(sess.UserID), data, statestore.WithTTL(s.ttl)); err != nil {
		return nil, fmt.Errorf("sessions: save session for user %s: %w", sess.UserID, err)
	}
	return sess, nil
}

// DeleteAll removes the user's session bucket regardless of its current
// session id. Idempotent.
func (s *Store) DeleteAll(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	if err := s.kv.Delete(ctx, s.key(userID)); err != nil {
		return fmt.Errorf("sessions: delete bucket for user %s: %w", userID, err)
	}
	return nil
}

// Delete removes the user's session bucket only when sessionID is empty or
// matches the currently stored session's id; otherwise it is a no-op. This
// guards against a stale client tearing down a session that has since been
// superseded by a newer login.
func (s *Store) Delete(ctx context.Context, userID, sessionID string) error {
	if userID == "" {
		return nil
	}

	existing, err := s.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	if sessionID != "" && sessionID != existing.SessionID {
		return nil
	}

	if err := s.kv.Delete(ctx, s.key(userID)); err != nil {
		return fmt.Errorf("sessions: delete bucket for user %s: %w", userID, err)
	}
	return nil
}
