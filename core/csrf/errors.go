package csrf

import "errors"

var (
	// ErrMissingSecret is returned when no signing secret is configured.
	// Startup must abort; the store never degrades to an unsigned mode.
	ErrMissingSecret = errors.New("csrf signing secret is required")
	// ErrPlaceholderSecret is returned when the configured secret still
	// equals the shipped placeholder value.
	ErrPlaceholderSecret = errors.New("csrf signing secret is still the placeholder value")
	// ErrSecretTooShort is returned in production when the secret is below
	// the minimum length.
	ErrSecretTooShort = errors.New("csrf signing secret is too short")
	// ErrEmptySessionID is returned when generating a token without a
	// session to bind it to.
	ErrEmptySessionID = errors.New("session id is required to generate a csrf token")
	// ErrTokenGeneration is returned when reading random bytes fails.
	ErrTokenGeneration = errors.New("failed to generate csrf token")
)
