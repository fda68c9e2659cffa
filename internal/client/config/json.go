package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/authkeeper/authkeeper/internal/flagx"
	"github.com/authkeeper/authkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent
// fields leave the current value in place.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	GRPCAddr       string         `json:"grpc_addr"`
	Transport      string         `json:"transport"`
	StateDSN       string         `json:"state_dsn"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	LogEnv         string         `json:"log_env"`
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseJson overlays cfg with the file named by -c or -config, if any.
func parseJson(cfg *Config) error {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.GRPCAddr, jc.GRPCAddr)
	setString(&cfg.Transport, jc.Transport)
	setString(&cfg.StateDSN, jc.StateDSN)
	setString(&cfg.LogEnv, jc.LogEnv)
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}
