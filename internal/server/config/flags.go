package config

import (
	"flag"
	"os"
	"strings"

	"github.com/authkeeper/authkeeper/internal/flagx"
)

// parseFlags overlays command-line flags:
//
//	-a string       HTTP bind address
//	-g string       gRPC bind address
//	-driver string  database driver (pgx or sqlite)
//	-d string       database DSN
//	-k string       JWT signing key
//	-t int          token lifetime, minutes
//	-l string       log environment (development, production)
//	-kafka string   comma-separated Kafka brokers
//	-topic string   Kafka topic for auth events
func parseFlags(config *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-driver", "-d", "-k", "-t", "-l", "-kafka", "-topic"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP address and port")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "gRPC address and port")
	fs.StringVar(&config.DatabaseDriver, "driver", config.DatabaseDriver, "database driver (pgx|sqlite)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.JWTKey, "k", config.JWTKey, "JWT signing key")
	fs.IntVar(&config.TokenLifetimeMinutes, "t", config.TokenLifetimeMinutes, "token lifetime (in minutes)")
	fs.StringVar(&config.LogEnv, "l", config.LogEnv, "log environment")
	brokers := fs.String("kafka", strings.Join(config.KafkaBrokers, ","), "comma-separated Kafka brokers")
	fs.StringVar(&config.KafkaTopic, "topic", config.KafkaTopic, "Kafka topic")

	if err := fs.Parse(args); err != nil {
		return err
	}

	config.KafkaBrokers = splitList(*brokers)
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
