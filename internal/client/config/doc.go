// Package config loads runtime configuration for the authflow CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Environment variables with the AUTHFLOW_ prefix.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-b  string    backend: memory or rest
//	-u  string    backend base URL (rest)
//	-k  string    backend API key (rest)
//	-g  string    Google OAuth client id
//	-d  string    local data directory
//	-f  string    local database file name, relative to -d
//	-p  string    PostgreSQL DSN for profile documents (empty: in-process)
//	-hc string    dependency check: none, http or grpc
//	-ha string    host:port of the gRPC health endpoint
//	-t  duration  per-request timeout
//	-r  uint      dependency check retries
//	-rb duration  first retry backoff
//	-lf string    log format: text or json
//	-ll string    log level: debug, info, warn, error
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "3s" or integer
// nanoseconds. Keys missing from the file keep their previous value:
//
//	{
//	  "backend": "rest",
//	  "backend_url": "https://project.example.co/auth/v1",
//	  "api_key": "anon-key",
//	  "request_timeout": "10s",
//	  "dependency_retries": 3
//	}
//
// # Environment
//
// Every field can be set as AUTHFLOW_<KEY>, where KEY is the upper-cased
// JSON key, e.g. AUTHFLOW_BACKEND_URL or AUTHFLOW_LOG_LEVEL.
package config
