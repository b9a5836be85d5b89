package csrf

import (
	"time"
)

const (
	// PlaceholderSecret ships in example configuration. A deployment that
	// never replaced it is treated the same as one with no secret at all.
	PlaceholderSecret = "insecure-csrf-secret-change-me"

	// minSecretLength is enforced in production deployments.
	minSecretLength = 32
)

// Config provides environment-based configuration for the token store.
type Config struct {
	// Secret signs every issued token. Required; validated by New.
	Secret string `env:"CSRF_SECRET"`

	// TTL bounds token lifetime.
	TTL time.Duration `env:"CSRF_TOKEN_TTL" envDefault:"1h"`

	// CleanupInterval controls the periodic sweep of expired tokens.
	CleanupInterval time.Duration `env:"CSRF_CLEANUP_INTERVAL" envDefault:"10m"`

	// Environment selects validation strictness; the minimum secret length
	// is only enforced when it equals "production".
	Environment string `env:"APP_ENV" envDefault:"development"`
}

// DefaultConfig returns a Config with default timing and no secret; the
// secret must always come from the environment.
func DefaultConfig() Config {
	return Config{
		TTL:             time.Hour,
		CleanupInterval: 10 * time.Minute,
		Environment:     "development",
	}
}

// IsProduction reports whether production validation rules apply.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// validate checks the signing secret. A missing, placeholder, or (in
// production) short secret is a fatal startup condition, not a runtime
// error.
func (c Config) validate() error {
	if c.Secret == "" {
		return ErrMissingSecret
	}
	if c.Secret == PlaceholderSecret {
		return ErrPlaceholderSecret
	}
	if c.IsProduction() && len(c.Secret) < minSecretLength {
		return ErrSecretTooShort
	}
	return nil
}
