// Package config loads runtime configuration for the authkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-s string          base URL of the HTTP API
//	-g string          address:port of the gRPC endpoint
//	-transport string  http or grpc
//	-state string      path of the local SQLite state database
//	-timeout int       request timeout (seconds)
//	-l string          log environment
//
// # JSON schema
//
// The request timeout uses timex.Duration, so it can be a string like "5s"
// or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "grpc_addr": "127.0.0.1:50051",
//	  "transport": "grpc",
//	  "state_dsn": "authkeeper-client.db",
//	  "request_timeout": "5s",
//	  "log_env": "development"
//	}
package config
