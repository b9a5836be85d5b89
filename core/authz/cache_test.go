package authz_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/playsquare/authkit/core/authz"
)

// mockResolver implements authz.Resolver for testing.
type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) ResolveUserRole(ctx context.Context, userID uuid.UUID) (*authz.Grant, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authz.Grant), args.Error(1)
}

func TestCacheGet(t *testing.T) {
	t.Parallel()

	t.Run("resolves on miss and caches the grant", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		grant := &authz.Grant{RoleID: uuid.New(), Permissions: []string{"forum.post"}}

		resolver := &mockResolver{}
		resolver.On("ResolveUserRole", mock.Anything, userID).Return(grant, nil).Once()

		cache := authz.NewCache(resolver)

		got, ok := cache.Get(context.Background(), userID)
		require.True(t, ok)
		assert.True(t, got.Has("forum.post"))

		// Served from cache; the Once expectation fails on a second lookup.
		got, ok = cache.Get(context.Background(), userID)
		require.True(t, ok)
		assert.Equal(t, grant.RoleID, got.RoleID)

		resolver.AssertExpectations(t)
	})

	t.Run("does not cache missing role assignments", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		resolver := &mockResolver{}
		resolver.On("ResolveUserRole", mock.Anything, userID).Return(nil, authz.ErrNotFound).Once()

		cache := authz.NewCache(resolver)

		_, ok := cache.Get(context.Background(), userID)
		assert.False(t, ok)

		// A role assigned after the first lookup must be visible immediately.
		grant := &authz.Grant{RoleID: uuid.New(), Permissions: []string{"tickets.view"}}
		resolver.On("ResolveUserRole", mock.Anything, userID).Return(grant, nil).Once()

		got, ok := cache.Get(context.Background(), userID)
		require.True(t, ok)
		assert.True(t, got.Has("tickets.view"))
	})

	t.Run("treats resolver failure as miss without caching", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		resolver := &mockResolver{}
		resolver.On("ResolveUserRole", mock.Anything, userID).Return(nil, errors.New("connection refused"))

		cache := authz.NewCache(resolver)

		_, ok := cache.Get(context.Background(), userID)
		assert.False(t, ok)
		assert.Equal(t, 0, cache.Stats().Size)
	})

	t.Run("rejects nil user id", func(t *testing.T) {
		t.Parallel()

		resolver := &mockResolver{}
		cache := authz.NewCache(resolver)

		_, ok := cache.Get(context.Background(), uuid.Nil)
		assert.False(t, ok)
		resolver.AssertNotCalled(t, "ResolveUserRole")
	})

	t.Run("re-resolves after ttl expiry", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		grant := &authz.Grant{RoleID: uuid.New(), Permissions: []string{"forum.post"}}

		resolver := &mockResolver{}
		resolver.On("ResolveUserRole", mock.Anything, userID).Return(grant, nil).Twice()

		cache := authz.NewCache(resolver, authz.WithTTL(50*time.Millisecond))

		_, ok := cache.Get(context.Background(), userID)
		require.True(t, ok)

		time.Sleep(80 * time.Millisecond)

		_, ok = cache.Get(context.Background(), userID)
		require.True(t, ok)
		resolver.AssertExpectations(t)
	})
}

func TestCacheInvalidateUser(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	grant := &authz.Grant{RoleID: uuid.New(), Permissions: []string{"forum.post"}}

	resolver := &mockResolver{}
	resolver.On("ResolveUserRole", mock.Anything, userID).Return(grant, nil).Twice()

	cache := authz.NewCache(resolver)

	_, ok := cache.Get(context.Background(), userID)
	require.True(t, ok)

	cache.InvalidateUser(userID)

	// Next lookup hits the resolver again.
	_, ok = cache.Get(context.Background(), userID)
	require.True(t, ok)
	resolver.AssertExpectations(t)
}

func TestCacheInvalidateRole(t *testing.T) {
	t.Parallel()

	editedRole := uuid.New()
	otherRole := uuid.New()

	users := map[uuid.UUID]*authz.Grant{
		uuid.New(): {RoleID: editedRole, Permissions: []string{"forum.post"}},
		uuid.New(): {RoleID: editedRole, Permissions: []string{"forum.post"}},
		uuid.New(): {RoleID: otherRole, Permissions: []string{"tickets.view"}},
	}

	resolver := &mockResolver{}
	for userID, grant := range users {
		resolver.On("ResolveUserRole", mock.Anything, userID).Return(grant, nil)
	}

	cache := authz.NewCache(resolver)
	for userID := range users {
		_, ok := cache.Get(context.Background(), userID)
		require.True(t, ok)
	}
	require.Equal(t, 3, cache.Stats().Size)

	removed := cache.InvalidateRole(editedRole)

	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, cache.Stats().Size, "grants for other roles stay cached")
}

func TestCacheCleanup(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	grant := &authz.Grant{RoleID: uuid.New()}

	resolver := &mockResolver{}
	resolver.On("ResolveUserRole", mock.Anything, userID).Return(grant, nil)

	cache := authz.NewCache(resolver, authz.WithTTL(30*time.Millisecond))

	_, ok := cache.Get(context.Background(), userID)
	require.True(t, ok)

	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, 1, cache.Cleanup())
	assert.Equal(t, 0, cache.Stats().Size)
}

func TestCacheLifecycle(t *testing.T) {
	t.Parallel()

	t.Run("background sweep removes idle expired grants", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		resolver := &mockResolver{}
		resolver.On("ResolveUserRole", mock.Anything, userID).Return(&authz.Grant{RoleID: uuid.New()}, nil)

		cache := authz.NewCache(resolver,
			authz.WithTTL(30*time.Millisecond),
			authz.WithCleanupInterval(20*time.Millisecond),
		)

		go func() { _ = cache.Start(context.Background()) }()
		t.Cleanup(func() { _ = cache.Stop() })

		_, ok := cache.Get(context.Background(), userID)
		require.True(t, ok)

		assert.Eventually(t, func() bool {
			return cache.Stats().Size == 0
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("stop without start fails", func(t *testing.T) {
		t.Parallel()

		cache := authz.NewCache(&mockResolver{})
		assert.Error(t, cache.Stop())
	})

	t.Run("run stops cleanly on context cancel", func(t *testing.T) {
		t.Parallel()

		cache := authz.NewCache(&mockResolver{})
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() { done <- cache.Run(ctx)() }()

		cancel()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("Run did not return after context cancellation")
		}
	})
}
