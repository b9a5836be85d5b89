package authz

import (
	"time"
)

// Config provides environment-based configuration for the permission cache.
type Config struct {
	TTL             time.Duration `env:"PERMISSION_CACHE_TTL" envDefault:"5m"`
	CleanupInterval time.Duration `env:"PERMISSION_CACHE_CLEANUP_INTERVAL" envDefault:"1m"`
}

// DefaultConfig returns a Config with the default bounds.
func DefaultConfig() Config {
	return Config{
		TTL:             5 * time.Minute,
		CleanupInterval: time.Minute,
	}
}

// NewCacheFromConfig creates a Cache from configuration. Only positive config
// values override defaults; additional options take precedence over config.
func NewCacheFromConfig(resolver Resolver, cfg Config, opts ...CacheOption) *Cache {
	configOpts := make([]CacheOption, 0, len(opts)+2)

	if cfg.TTL > 0 {
		configOpts = append(configOpts, WithTTL(cfg.TTL))
	}
	if cfg.CleanupInterval > 0 {
		configOpts = append(configOpts, WithCleanupInterval(cfg.CleanupInterval))
	}

	configOpts = append(configOpts, opts...)

	return NewCache(resolver, configOpts...)
}
