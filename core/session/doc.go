// Package session provides the in-process fast-path for session resolution:
// a TTL- and capacity-bounded cache in front of the persistent session store,
// and a cache-aside manager that every authenticated request flows through.
//
// # Architecture
//
// The Cache owns a single map from session ID to a previously validated
// record. Entries expire after a TTL (default 5 minutes), are evicted
// least-recently-used past a capacity bound (default 1000), and are swept
// periodically (default every minute) so idle entries do not linger. The
// Manager layers cache-aside resolution over a Store implementation: cache
// hit, or store lookup with write-back on success.
//
// # Usage
//
//	cache := session.NewCache(session.WithTTL(5 * time.Minute))
//	manager := session.NewManager(store, cache)
//
//	// Background sweep, typically supervised with errgroup:
//	g.Go(cache.Run(ctx))
//
//	sess, ok := manager.Resolve(ctx, sessionID)
//	if !ok {
//		// unauthenticated
//	}
//
// # Failure Semantics
//
// Absence is a value, not an error: Resolve returns false for missing,
// expired, and unresolvable sessions alike. Store errors are logged and
// collapse to a miss so a degraded backend produces unauthenticated
// requests rather than request failures. Write paths that mutate the
// backing record must call Invalidate (or Manager.Destroy) to bound
// staleness below the TTL.
package session
