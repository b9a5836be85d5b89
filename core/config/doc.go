// Package config provides type-safe environment variable loading with caching
// using Go generics. Each configuration type is loaded once and cached for
// subsequent calls.
//
// The package automatically loads .env files on first use and uses the
// caarlos0/env library for parsing environment variables into struct fields.
//
// Basic usage:
//
//	import "github.com/playsquare/authkit/core/config"
//
//	type CSRFConfig struct {
//		Secret string        `env:"CSRF_SECRET,required"`
//		TTL    time.Duration `env:"CSRF_TOKEN_TTL" envDefault:"1h"`
//	}
//
//	func main() {
//		var cfg CSRFConfig
//
//		// Load with error handling
//		if err := config.Load(&cfg); err != nil {
//			log.Fatal(err)
//		}
//
//		// Or panic on failure (useful for startup)
//		config.MustLoad(&cfg)
//	}
//
// # Caching Behavior
//
// Each configuration type is loaded only once per application lifetime:
//
//	var cfg1 CSRFConfig
//	config.Load(&cfg1) // Loads from environment
//
//	var cfg2 CSRFConfig
//	config.Load(&cfg2) // Returns cached value, cfg1 == cfg2
//
// Different types are cached independently, so every authkit package can
// declare its own Config struct and load it on demand.
package config
