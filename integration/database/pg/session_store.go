package pg

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/playsquare/authkit/core/session"
)

// querier is the subset of pgx operations shared by pools and transactions,
// so stores can participate in a caller-managed transaction via WithTx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// SessionStore is the PostgreSQL-backed authoritative session store.
type SessionStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

// NewSessionStore creates a session store over pool. ttl is the lifetime of
// newly created sessions; values <= 0 fall back to 24 hours.
func NewSessionStore(pool *pgxpool.Pool, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{pool: pool, ttl: ttl}
}

func (s *SessionStore) db(ctx context.Context) querier {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return s.pool
}

// ValidateSession loads an unexpired session together with the owning user's
// identity and role flags. Returns session.ErrNotFound for unknown or
// expired identifiers.
func (s *SessionStore) ValidateSession(ctx context.Context, id string) (*session.Session, error) {
	const q = `
		SELECT s.id, s.user_id, u.username, u.role_id, r.is_admin,
		       u.default_password, s.created_at, s.expires_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		JOIN roles r ON r.id = u.role_id
		WHERE s.id = $1 AND s.expires_at > now()`

	var sess session.Session
	err := s.db(ctx).QueryRow(ctx, q, id).Scan(
		&sess.ID, &sess.UserID, &sess.Username, &sess.RoleID, &sess.IsAdmin,
		&sess.DefaultPassword, &sess.CreatedAt, &sess.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrNotFound
		}
		return nil, err
	}
	return &sess, nil
}

// CreateSession issues a fresh identifier and persists a session row for the
// user, returning the identifier for use as the cookie value.
func (s *SessionStore) CreateSession(ctx context.Context, userID uuid.UUID) (string, error) {
	id, err := session.NewID()
	if err != nil {
		return "", err
	}

	const q = `
		INSERT INTO sessions (id, user_id, created_at, expires_at)
		VALUES ($1, $2, now(), $3)`

	if _, err := s.db(ctx).Exec(ctx, q, id, userID, time.Now().Add(s.ttl)); err != nil {
		return "", errors.Join(session.ErrCreateSession, err)
	}
	return id, nil
}

// DestroySession removes the session row. Returns session.ErrNotFound when
// no row matched, which callers may treat as already destroyed.
func (s *SessionStore) DestroySession(ctx context.Context, id string) error {
	tag, err := s.db(ctx).Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return errors.Join(session.ErrDestroySession, err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrNotFound
	}
	return nil
}

// DestroyUserSessions removes every session belonging to the user. Used on
// credential rotation so stolen cookies die with the old password.
func (s *SessionStore) DestroyUserSessions(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := s.db(ctx).Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, errors.Join(session.ErrDestroySession, err)
	}
	return tag.RowsAffected(), nil
}

// DeleteExpired removes all expired session rows and reports how many were
// deleted. Intended for a periodic janitor.
func (s *SessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := s.db(ctx).Exec(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
