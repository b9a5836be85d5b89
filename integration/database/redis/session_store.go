package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/playsquare/authkit/core/session"
)

// UserLoader hydrates identity fields (username, role, flags) for a newly
// created session. Redis holds no user table, so the caller supplies the
// lookup against their user store.
type UserLoader func(ctx context.Context, userID uuid.UUID) (*session.Session, error)

// SessionStore is a Redis-backed session.Store. Session records are stored
// as JSON under a key prefix with Redis-native expiration, so DeleteExpired
// has nothing to do.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	loader UserLoader
}

// SessionStoreOption configures a SessionStore.
type SessionStoreOption func(*SessionStore)

// WithKeyPrefix overrides the key prefix (default: "session:").
func WithKeyPrefix(prefix string) SessionStoreOption {
	return func(s *SessionStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithUserLoader sets the lookup used to hydrate identity fields on
// CreateSession. Without one, new sessions carry only the user ID.
func WithUserLoader(loader UserLoader) SessionStoreOption {
	return func(s *SessionStore) {
		s.loader = loader
	}
}

// NewSessionStore creates a session store over client. ttl is the lifetime
// of newly created sessions; values <= 0 fall back to 24 hours.
func NewSessionStore(client *redis.Client, ttl time.Duration, opts ...SessionStoreOption) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	s := &SessionStore{
		client: client,
		ttl:    ttl,
		prefix: "session:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SessionStore) key(id string) string {
	return s.prefix + id
}

// ValidateSession loads a session record. Returns session.ErrNotFound for
// unknown or expired identifiers; Redis expiry makes the two
// indistinguishable.
func (s *SessionStore) ValidateSession(ctx context.Context, id string) (*session.Session, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, session.ErrNotFound
		}
		return nil, err
	}

	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	if sess.IsExpired() {
		_ = s.client.Del(ctx, s.key(id)).Err()
		return nil, session.ErrNotFound
	}
	return &sess, nil
}

// CreateSession issues a fresh identifier and persists a session record with
// native TTL, returning the identifier for use as the cookie value.
func (s *SessionStore) CreateSession(ctx context.Context, userID uuid.UUID) (string, error) {
	id, err := session.NewID()
	if err != nil {
		return "", err
	}

	now := time.Now()
	sess := &session.Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if s.loader != nil {
		loaded, err := s.loader(ctx, userID)
		if err != nil {
			return "", errors.Join(session.ErrCreateSession, err)
		}
		loaded.ID = id
		loaded.UserID = userID
		loaded.CreatedAt = now
		loaded.ExpiresAt = now.Add(s.ttl)
		sess = loaded
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return "", errors.Join(session.ErrCreateSession, err)
	}
	if err := s.client.Set(ctx, s.key(id), data, s.ttl).Err(); err != nil {
		return "", errors.Join(session.ErrCreateSession, err)
	}
	return id, nil
}

// DestroySession removes the session record. Returns session.ErrNotFound
// when no record matched, which callers may treat as already destroyed.
func (s *SessionStore) DestroySession(ctx context.Context, id string) error {
	removed, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return errors.Join(session.ErrDestroySession, err)
	}
	if removed == 0 {
		return session.ErrNotFound
	}
	return nil
}

// DeleteExpired is a no-op: Redis evicts expired keys natively.
func (s *SessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}
