package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	TransportHTTP = "http"
	TransportGRPC = "grpc"
)

var (
	ErrUnknownTransport = errors.New("unknown transport")
	ErrInvalidTimeout   = errors.New("request timeout must be positive")
)

// Config holds runtime settings for the authkeeper CLI.
type Config struct {
	ServerURL      string
	GRPCAddr       string
	Transport      string
	StateDSN       string
	RequestTimeout time.Duration
	LogEnv         string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.GRPCAddr = "127.0.0.1:50051"
	c.Transport = TransportHTTP
	c.StateDSN = "authkeeper-client.db"
	c.RequestTimeout = 10 * time.Second
	c.LogEnv = "production"
}

func (c *Config) Validate() error {
	switch c.Transport {
	case TransportHTTP, TransportGRPC:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTransport, c.Transport)
	}
	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// LoadConfig applies defaults, then the JSON file (if any), then flags.
// Later sources take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

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
