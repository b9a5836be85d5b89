package authz_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/playsquare/authkit/core/authz"
)

func TestGrantHas(t *testing.T) {
	t.Parallel()

	grant := authz.Grant{
		RoleID:      uuid.New(),
		Permissions: []string{"forum.post", "tickets.view"},
	}

	assert.True(t, grant.Has("forum.post"))
	assert.False(t, grant.Has("tickets.manage"))
	assert.False(t, authz.Grant{}.Has("forum.post"))
}

func TestGrantHasAny(t *testing.T) {
	t.Parallel()

	grant := authz.Grant{Permissions: []string{"forum.post"}}

	assert.True(t, grant.HasAny("tickets.manage", "forum.post"))
	assert.False(t, grant.HasAny("tickets.manage", "users.edit"))
	assert.False(t, grant.HasAny(), "any of an empty set is false")
}

func TestGrantHasAll(t *testing.T) {
	t.Parallel()

	grant := authz.Grant{Permissions: []string{"forum.post", "tickets.view"}}

	assert.True(t, grant.HasAll("forum.post", "tickets.view"))
	assert.False(t, grant.HasAll("forum.post", "tickets.manage"))
	assert.True(t, grant.HasAll(), "all of an empty set is vacuously true")
}
