package authz

import (
	"slices"

	"github.com/google/uuid"
)

// Grant is a user's resolved authorization: the role they hold and the
// permission set that role carries.
type Grant struct {
	RoleID      uuid.UUID
	Permissions []string
}

// Has reports whether the grant carries the given permission.
func (g Grant) Has(permission string) bool {
	return slices.Contains(g.Permissions, permission)
}

// HasAny reports whether the grant carries at least one of the given
// permissions. An empty argument list yields false.
func (g Grant) HasAny(permissions ...string) bool {
	for _, p := range permissions {
		if g.Has(p) {
			return true
		}
	}
	return false
}

// HasAll reports whether the grant carries every given permission. An empty
// argument list is vacuously true.
func (g Grant) HasAll(permissions ...string) bool {
	for _, p := range permissions {
		if !g.Has(p) {
			return false
		}
	}
	return true
}
