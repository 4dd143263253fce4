// Package config reads service configuration from the environment.
package config

import (
	"fmt"
	"net/url"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all environment configuration for the booking service.
type Config struct {
	Port   string `env:"PORT" envDefault:"5000"`
	DBUser string `env:"DB_USER"`
	DBPass string `env:"DB_PASS"`
	DBHost string `env:"DB_HOST" envDefault:"localhost:27017"`
	DBName string `env:"DB_NAME" envDefault:"yogaDB"`
}

// Load reads configuration from a .env file (if present) and the process
// environment. Values are read once at startup.
func Load() (*Config, error) {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// URI builds the MongoDB connection string. Credentials are optional for
// local development against an unauthenticated instance.
func (c *Config) URI() string {
	if c.DBUser == "" {
		return fmt.Sprintf("mongodb://%s/?retryWrites=true&w=majority", c.DBHost)
	}
	return fmt.Sprintf(
		"mongodb://%s:%s@%s/?retryWrites=true&w=majority",
		url.QueryEscape(c.DBUser), url.QueryEscape(c.DBPass), c.DBHost,
	)
}
