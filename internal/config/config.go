// Package config provides functionality for managing configuration options
// for the application from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Options holds the configuration values for the application.
type Options struct {
	// Addr defines the server's listening address (ip:port).
	Addr string `env:"SERVER_ADDRESS" envDefault:"localhost:8080"`

	// DatabaseDSN holds the PostgreSQL connection string.
	DatabaseDSN string `env:"DATABASE_DSN,required"`

	// AccessSecret signs short-lived access tokens.
	AccessSecret string `env:"JWT_ACCESS_SECRET,required"`

	// RefreshSecret signs refresh tokens. Independent from AccessSecret.
	RefreshSecret string `env:"JWT_REFRESH_SECRET,required"`

	// AccessTTL bounds access token lifetime.
	AccessTTL time.Duration `env:"JWT_ACCESS_TTL" envDefault:"15m"`

	// RefreshTTL bounds refresh token lifetime.
	RefreshTTL time.Duration `env:"JWT_REFRESH_TTL" envDefault:"168h"`

	// BcryptCost is the bcrypt work factor for password hashing.
	BcryptCost int `env:"BCRYPT_COST" envDefault:"12"`

	// RateLimitRPS is the sustained request rate allowed per client.
	RateLimitRPS float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`

	// RateLimitBurst is the burst size allowed per client.
	RateLimitBurst int `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// RequestTimeout bounds every datastore call made for a single request.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`

	// ShutdownTimeout bounds graceful shutdown on SIGINT/SIGTERM.
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// SweepInterval is how often the membership sweeper reconciles
	// playlist references against existing tracks.
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1h"`
}

// Parse loads configuration from environment variables and returns the
// resulting Options.
func Parse() (*Options, error) {
	var options Options
	if err := env.Parse(&options); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if options.AccessSecret == options.RefreshSecret {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}
	return &options, nil
}
