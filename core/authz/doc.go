// Package authz provides the permission fast-path: a TTL-bounded cache of
// user → role → permission resolutions filled cache-aside from the
// persistent store.
//
// A miss triggers a single Resolver lookup; only successful resolutions are
// cached, so a user who just received a role assignment is never masked by a
// cached negative. Write paths invalidate explicitly: InvalidateUser when a
// user's assignment changes, InvalidateRole when a role's permission set
// itself is edited.
//
//	cache := authz.NewCache(roleStore, authz.WithTTL(5 * time.Minute))
//	g.Go(cache.Run(ctx))
//
//	grant, ok := cache.Get(ctx, userID)
//	if !ok || !grant.Has("tickets.manage") {
//		// forbidden
//	}
//
// Grant predicates are pure: HasAll of an empty set is vacuously true,
// HasAny of an empty set is false.
package authz
