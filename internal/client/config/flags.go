package config

import (
	"flag"
	"os"
	"time"

	"github.com/authkeeper/authkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// os.Args is filtered with flagx.FilterArgs so flags owned by other
// loaders (-c, -config) do not break parsing.
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-s", "-g", "-transport", "-state", "-timeout", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "base URL of the HTTP API")
	fs.StringVar(&cfg.GRPCAddr, "g", cfg.GRPCAddr, "address and port of the gRPC endpoint")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "transport (http|grpc)")
	fs.StringVar(&cfg.StateDSN, "state", cfg.StateDSN, "local state database path")
	timeout := fs.Int("timeout", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.LogEnv, "l", cfg.LogEnv, "log environment")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	return nil
}
