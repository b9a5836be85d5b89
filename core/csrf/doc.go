// Package csrf implements the anti-forgery token protocol: signed,
// session-bound, time-limited tokens that clients must echo back on
// state-changing requests.
//
// # Token Format
//
// Tokens are two hex segments joined by a dot:
//
//	<64 hex chars random>.<64 hex chars HMAC-SHA256(secret, random:sessionID)>
//
// Validity requires both server-side state and the signature: the token must
// be present, unexpired, and bound to the presented session in the store,
// and its signature must re-verify against the secret. Multiple live tokens
// may exist per session.
//
// # Secret Validation
//
// The signing secret is process-wide configuration validated once at
// construction: it must be present, must not equal the shipped placeholder,
// and must be at least 32 characters in production. Failing any of these is
// a startup error, never a silent downgrade.
//
//	store, err := csrf.New(cfg)
//	if err != nil {
//		log.Fatal(err) // deployment is misconfigured
//	}
//	g.Go(store.Run(ctx))
//
//	token, err := store.Generate(sessionID)
//	// later, on a state-changing request:
//	if !store.Validate(token, sessionID) {
//		// reject with a generic error; no failure cause is exposed
//	}
//
// Validation failures all collapse to false by design, so callers cannot
// leak why a token was rejected.
package csrf
