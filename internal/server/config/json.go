package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/authkeeper/authkeeper/internal/flagx"
	"github.com/authkeeper/authkeeper/internal/validation"
)

// JsonConfig mirrors Config for JSON files. Absent or zero fields leave the
// current value in place; a registration_policy object replaces the whole
// policy.
type JsonConfig struct {
	HTTPAddr             string             `json:"http_addr"`
	GRPCAddr             string             `json:"grpc_addr"`
	DatabaseDriver       string             `json:"database_driver"`
	DatabaseDSN          string             `json:"database_dsn"`
	JWTKey               string             `json:"jwt_key"`
	JWTIssuer            string             `json:"jwt_issuer"`
	JWTAudience          string             `json:"jwt_audience"`
	TokenLifetimeMinutes int                `json:"token_lifetime_minutes"`
	LogEnv               string             `json:"log_env"`
	KafkaBrokers         []string           `json:"kafka_brokers"`
	KafkaTopic           string             `json:"kafka_topic"`
	RegistrationPolicy   *validation.Policy `json:"registration_policy"`
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseJson loads the file named by -c or -config, if any.
func parseJson(config *Config) error {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.DatabaseDriver, c.DatabaseDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.JWTKey, c.JWTKey)
	setString(&config.JWTIssuer, c.JWTIssuer)
	setString(&config.JWTAudience, c.JWTAudience)
	setString(&config.LogEnv, c.LogEnv)
	setString(&config.KafkaTopic, c.KafkaTopic)
	if c.TokenLifetimeMinutes != 0 {
		config.TokenLifetimeMinutes = c.TokenLifetimeMinutes
	}
	if len(c.KafkaBrokers) > 0 {
		config.KafkaBrokers = c.KafkaBrokers
	}
	if c.RegistrationPolicy != nil {
		config.RegistrationPolicy = *c.RegistrationPolicy
	}
	return nil
}
