package config

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// cache stores one parsed value per configuration type.
	cache sync.Map // reflect.Type -> any

	// loadDotEnv loads .env files once per process, before the first parse.
	loadDotEnv sync.Once
)

// Load parses environment variables into cfg. Each configuration type is
// parsed once per process; subsequent calls for the same type return the
// cached value, so different parts of the application can load the same
// config independently without re-reading the environment.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return fmt.Errorf("config: nil pointer passed to Load")
	}

	loadDotEnv.Do(func() {
		// Missing .env files are expected outside local development.
		_ = godotenv.Load()
	})

	t := reflect.TypeOf(*cfg)
	if cached, ok := cache.Load(t); ok {
		*cfg = cached.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: failed to parse %s: %w", t.String(), err)
	}

	// LoadOrStore keeps the first successfully parsed value if two
	// goroutines race on the same type.
	actual, _ := cache.LoadOrStore(t, *cfg)
	*cfg = actual.(T)
	return nil
}

// MustLoad is like Load but panics on failure. Intended for application
// startup where a missing required variable should abort the process.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
