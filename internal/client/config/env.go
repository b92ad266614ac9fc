package config

import "github.com/kelseyhightower/envconfig"

const envPrefix = "authflow"

// parseEnv overlays cfg with AUTHFLOW_* variables. Unset variables leave
// fields untouched.
func parseEnv(cfg *Config) {
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		panic(err)
	}
}
