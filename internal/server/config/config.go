// Package config builds the server configuration from defaults, an optional
// .env file, AUTHKEEPER_* environment variables, an optional JSON file and
// command-line flags, in that order of increasing precedence.
package config

import (
	"fmt"

	"github.com/authkeeper/authkeeper/internal/server/auth"
	"github.com/authkeeper/authkeeper/internal/server/store"
	"github.com/authkeeper/authkeeper/internal/validation"
)

// Config holds runtime settings for the authkeeper server.
//
// JWTKey has no default: the server refuses to start until one of at least
// 32 bytes is configured. Kafka publishing is disabled while KafkaBrokers is
// empty.
type Config struct {
	HTTPAddr             string   `env:"HTTP_ADDR"`
	GRPCAddr             string   `env:"GRPC_ADDR"`
	DatabaseDriver       string   `env:"DATABASE_DRIVER"`
	DatabaseDSN          string   `env:"DATABASE_DSN"`
	JWTKey               string   `env:"JWT_KEY"`
	JWTIssuer            string   `env:"JWT_ISSUER"`
	JWTAudience          string   `env:"JWT_AUDIENCE"`
	TokenLifetimeMinutes int      `env:"TOKEN_LIFETIME_MINUTES"`
	LogEnv               string   `env:"LOG_ENV"`
	KafkaBrokers         []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic           string   `env:"KAFKA_TOPIC"`

	RegistrationPolicy validation.Policy `envPrefix:"REGISTRATION_"`
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.GRPCAddr = ":50051"
	c.DatabaseDriver = string(store.SQLite)
	c.DatabaseDSN = "authkeeper.db"
	c.JWTIssuer = "authkeeper"
	c.JWTAudience = "authkeeper-cli"
	c.TokenLifetimeMinutes = 60
	c.LogEnv = "development"
	c.KafkaTopic = "authkeeper.auth-events"
	c.RegistrationPolicy = validation.DefaultRegistrationPolicy()
}

// Auth is the token issuer's view of the config.
func (c *Config) Auth() auth.Config {
	return auth.Config{
		Key:             c.JWTKey,
		Issuer:          c.JWTIssuer,
		Audience:        c.JWTAudience,
		LifetimeMinutes: c.TokenLifetimeMinutes,
	}
}

// Validate rejects settings the server cannot safely start with.
func (c *Config) Validate() error {
	if err := c.Auth().Validate(); err != nil {
		return err
	}
	if _, err := store.ParseDialect(c.DatabaseDriver); err != nil {
		return err
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("database DSN is empty")
	}
	if _, err := validation.New(c.RegistrationPolicy); err != nil {
		return fmt.Errorf("registration policy: %w", err)
	}
	return nil
}

// LoadConfig applies every layer and validates the result.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
