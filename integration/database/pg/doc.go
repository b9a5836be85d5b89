// Package pg provides PostgreSQL connection management, schema migrations,
// and the persistent stores backing the authentication fast-path.
//
// Connect creates a pgx connection pool with retry logic and verifies
// connectivity before returning; Migrate applies the embedded goose
// migrations (or an on-disk directory via PG_MIGRATIONS_PATH); Healthcheck
// returns a probe function for readiness endpoints.
//
//	cfg := pg.Config{ConnectionString: os.Getenv("PG_CONN_URL")}
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, logger); err != nil {
//		log.Fatal(err)
//	}
//
//	sessions := pg.NewSessionStore(pool, 24*time.Hour)
//	roles := pg.NewRoleStore(pool)
//
// SessionStore implements session.Store and RoleStore implements
// authz.Resolver, so both plug directly into the in-process caches.
//
// # Transactions
//
// WithTx attaches a pgx.Tx to a context and TxFromContext retrieves it. The
// stores check the context before touching the pool, so a caller-managed
// transaction spans session and role writes:
//
//	tx, err := pool.Begin(ctx)
//	if err != nil {
//		return err
//	}
//	defer tx.Rollback(ctx) // Safe even after commit
//
//	ctx = pg.WithTx(ctx, tx)
//	if _, err := sessions.DestroyUserSessions(ctx, userID); err != nil {
//		return err
//	}
//	// ... other writes in the same transaction ...
//	return tx.Commit(ctx)
//
// # Error Handling
//
// The package defines sentinel errors (ErrFailedToOpenDBConnection,
// ErrHealthcheckFailed, ErrFailedToApplyMigrations, ...) checked with
// errors.Is, plus classification helpers for common PostgreSQL failures:
//
//	pg.IsNotFoundError(err)            // pgx.ErrNoRows
//	pg.IsDuplicateKeyError(err)        // unique constraint violation
//	pg.IsForeignKeyViolationError(err) // referential integrity violation
//	pg.IsTxClosedError(err)            // finished transaction reuse
package pg
