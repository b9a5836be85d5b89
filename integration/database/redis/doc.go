// Package redis provides Redis client initialization, health checking, and a
// Redis-backed session store.
//
// Connect validates the connection URL, establishes the client with retry
// logic, and verifies connectivity with a ping before returning. Both
// redis:// and rediss:// (TLS) URL schemes are supported.
//
//	cfg := redis.Config{ConnectionURL: os.Getenv("REDIS_URL")}
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
// SessionStore implements session.Store over JSON values with Redis-native
// expiration, so it drops in wherever the PostgreSQL store does:
//
//	store := redis.NewSessionStore(client, 24*time.Hour,
//		redis.WithUserLoader(loadUser))
//	sessions := session.NewManager(store, session.NewCache())
//
// Redis holds no user table, so WithUserLoader supplies the lookup that
// hydrates username and role fields when a session is created. DeleteExpired
// is a no-op because Redis evicts expired keys itself.
//
// Healthcheck returns a probe function for readiness endpoints, and the
// sentinel errors (ErrRedisNotReady, ErrHealthcheckFailed, ...) are checked
// with errors.Is.
package redis
