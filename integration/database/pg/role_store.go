package pg

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/playsquare/authkit/core/authz"
)

// RoleStore resolves user role assignments and permission sets from
// PostgreSQL. It implements authz.Resolver.
type RoleStore struct {
	pool *pgxpool.Pool
}

// NewRoleStore creates a role store over pool.
func NewRoleStore(pool *pgxpool.Pool) *RoleStore {
	return &RoleStore{pool: pool}
}

func (s *RoleStore) db(ctx context.Context) querier {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return s.pool
}

// ResolveUserRole loads the user's role and its permission set. Returns
// authz.ErrNotFound when the user has no role assignment.
func (s *RoleStore) ResolveUserRole(ctx context.Context, userID uuid.UUID) (*authz.Grant, error) {
	var roleID uuid.UUID
	err := s.db(ctx).QueryRow(ctx,
		`SELECT role_id FROM users WHERE id = $1`, userID).Scan(&roleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, authz.ErrNotFound
		}
		return nil, err
	}

	rows, err := s.db(ctx).Query(ctx,
		`SELECT permission FROM role_permissions WHERE role_id = $1 ORDER BY permission`, roleID)
	if err != nil {
		return nil, err
	}
	permissions, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}

	return &authz.Grant{RoleID: roleID, Permissions: permissions}, nil
}
