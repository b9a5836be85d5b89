package session

import (
	"time"
)

// Config provides environment-based configuration for the session cache.
type Config struct {
	TTL             time.Duration `env:"SESSION_CACHE_TTL" envDefault:"5m"`
	Capacity        int           `env:"SESSION_CACHE_CAPACITY" envDefault:"1000"`
	CleanupInterval time.Duration `env:"SESSION_CACHE_CLEANUP_INTERVAL" envDefault:"1m"`
}

// DefaultConfig returns a Config with the default bounds.
func DefaultConfig() Config {
	return Config{
		TTL:             5 * time.Minute,
		Capacity:        1000,
		CleanupInterval: time.Minute,
	}
}

// NewCacheFromConfig creates a Cache from configuration. Only positive config
// values override defaults; additional options take precedence over config.
func NewCacheFromConfig(cfg Config, opts ...CacheOption) *Cache {
	configOpts := make([]CacheOption, 0, len(opts)+3)

	if cfg.TTL > 0 {
		configOpts = append(configOpts, WithTTL(cfg.TTL))
	}
	if cfg.Capacity > 0 {
		configOpts = append(configOpts, WithCapacity(cfg.Capacity))
	}
	if cfg.CleanupInterval > 0 {
		configOpts = append(configOpts, WithCleanupInterval(cfg.CleanupInterval))
	}

	configOpts = append(configOpts, opts...)

	return NewCache(configOpts...)
}
