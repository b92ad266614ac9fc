package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/authflow/internal/flagx"
	"github.com/dmitrijs2005/authflow/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations use
// timex.Duration so the file may hold "3s" or integer nanoseconds.
type JsonConfig struct {
	Backend           string         `json:"backend"`
	BackendURL        string         `json:"backend_url"`
	APIKey            string         `json:"api_key"`
	GoogleClientID    string         `json:"google_client_id"`
	DataDir           string         `json:"data_dir"`
	DatabaseFile      string         `json:"database_file"`
	ProfilesDSN       string         `json:"profiles_dsn"`
	HealthCheck       string         `json:"health_check"`
	HealthGRPCAddr    string         `json:"health_grpc_addr"`
	RequestTimeout    timex.Duration `json:"request_timeout"`
	DependencyRetries uint64         `json:"dependency_retries"`
	DependencyBackoff timex.Duration `json:"dependency_backoff"`
	LogFormat         string         `json:"log_format"`
	LogLevel          string         `json:"log_level"`
}

func toJson(c *Config) JsonConfig {
	return JsonConfig{
		Backend:           c.Backend,
		BackendURL:        c.BackendURL,
		APIKey:            c.APIKey,
		GoogleClientID:    c.GoogleClientID,
		DataDir:           c.DataDir,
		DatabaseFile:      c.DatabaseFile,
		ProfilesDSN:       c.ProfilesDSN,
		HealthCheck:       c.HealthCheck,
		HealthGRPCAddr:    c.HealthGRPCAddr,
		RequestTimeout:    timex.Duration{Duration: c.RequestTimeout},
		DependencyRetries: c.DependencyRetries,
		DependencyBackoff: timex.Duration{Duration: c.DependencyBackoff},
		LogFormat:         c.LogFormat,
		LogLevel:          c.LogLevel,
	}
}

func (jc JsonConfig) apply(c *Config) {
	c.Backend = jc.Backend
	c.BackendURL = jc.BackendURL
	c.APIKey = jc.APIKey
	c.GoogleClientID = jc.GoogleClientID
	c.DataDir = jc.DataDir
	c.DatabaseFile = jc.DatabaseFile
	c.ProfilesDSN = jc.ProfilesDSN
	c.HealthCheck = jc.HealthCheck
	c.HealthGRPCAddr = jc.HealthGRPCAddr
	c.RequestTimeout = jc.RequestTimeout.Duration
	c.DependencyRetries = jc.DependencyRetries
	c.DependencyBackoff = jc.DependencyBackoff.Duration
	c.LogFormat = jc.LogFormat
	c.LogLevel = jc.LogLevel
}

// parseJson overlays cfg with the JSON file named by -c/-config in args.
// The DTO is seeded from cfg, so keys absent from the file keep their
// current values. Read or decode errors panic.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigFile(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	jc := toJson(cfg)
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}
	jc.apply(cfg)
}
