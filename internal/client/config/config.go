package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	BackendMemory = "memory"
	BackendREST   = "rest"
)

// Config holds runtime settings for the authflow CLI.
type Config struct {
	Backend        string `envconfig:"BACKEND"`
	BackendURL     string `envconfig:"BACKEND_URL"`
	APIKey         string `envconfig:"API_KEY"`
	GoogleClientID string `envconfig:"GOOGLE_CLIENT_ID"`

	DataDir      string `envconfig:"DATA_DIR"`
	DatabaseFile string `envconfig:"DATABASE_FILE"`
	ProfilesDSN  string `envconfig:"PROFILES_DSN"`

	HealthCheck    string `envconfig:"HEALTH_CHECK"`
	HealthGRPCAddr string `envconfig:"HEALTH_GRPC_ADDR"`

	RequestTimeout    time.Duration `envconfig:"REQUEST_TIMEOUT"`
	DependencyRetries uint64        `envconfig:"DEPENDENCY_RETRIES"`
	DependencyBackoff time.Duration `envconfig:"DEPENDENCY_BACKOFF"`

	LogFormat string `envconfig:"LOG_FORMAT"`
	LogLevel  string `envconfig:"LOG_LEVEL"`
}

// LoadDefaults populates c with settings that run fully offline.
func (c *Config) LoadDefaults() {
	c.Backend = BackendMemory
	c.BackendURL = "http://127.0.0.1:9999"
	c.APIKey = ""
	c.GoogleClientID = ""
	c.DataDir = ".authflow"
	c.DatabaseFile = "client.db"
	c.ProfilesDSN = ""
	c.HealthCheck = "none"
	c.HealthGRPCAddr = "127.0.0.1:50051"
	c.RequestTimeout = 10 * time.Second
	c.DependencyRetries = 2
	c.DependencyBackoff = 500 * time.Millisecond
	c.LogFormat = "text"
	c.LogLevel = "info"
}

// DatabasePath is the local sqlite file inside DataDir.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, c.DatabaseFile)
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON, the environment and command-line flags. Later sources take
// precedence over earlier ones. Malformed input panics.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	args := os.Args[1:]
	parseJson(cfg, args)
	parseEnv(cfg)
	parseFlags(cfg, args)
	return cfg
}
