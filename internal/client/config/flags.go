package config

import (
	"flag"

	"github.com/dmitrijs2005/authflow/internal/flagx"
)

var knownFlags = []string{
	"-b", "-u", "-k", "-g", "-d", "-f", "-p",
	"-hc", "-ha", "-t", "-r", "-rb", "-lf", "-ll",
}

// parseFlags populates cfg from command-line flags. args is filtered with
// flagx.FilterArgs first, so flags owned by other components are ignored.
// A malformed value panics.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.Backend, "b", cfg.Backend, "backend: memory or rest")
	fs.StringVar(&cfg.BackendURL, "u", cfg.BackendURL, "backend base URL")
	fs.StringVar(&cfg.APIKey, "k", cfg.APIKey, "backend API key")
	fs.StringVar(&cfg.GoogleClientID, "g", cfg.GoogleClientID, "Google OAuth client id")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "local data directory")
	fs.StringVar(&cfg.DatabaseFile, "f", cfg.DatabaseFile, "local database file")
	fs.StringVar(&cfg.ProfilesDSN, "p", cfg.ProfilesDSN, "PostgreSQL DSN for profiles")
	fs.StringVar(&cfg.HealthCheck, "hc", cfg.HealthCheck, "dependency check: none, http or grpc")
	fs.StringVar(&cfg.HealthGRPCAddr, "ha", cfg.HealthGRPCAddr, "gRPC health endpoint")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "per-request timeout")
	fs.Uint64Var(&cfg.DependencyRetries, "r", cfg.DependencyRetries, "dependency check retries")
	fs.DurationVar(&cfg.DependencyBackoff, "rb", cfg.DependencyBackoff, "first retry backoff")
	fs.StringVar(&cfg.LogFormat, "lf", cfg.LogFormat, "log format: text or json")
	fs.StringVar(&cfg.LogLevel, "ll", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
