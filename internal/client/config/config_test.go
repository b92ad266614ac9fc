package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, BackendMemory, c.Backend)
	assert.Equal(t, "none", c.HealthCheck)
	assert.Equal(t, ".authflow", c.DataDir)
	assert.Equal(t, "client.db", c.DatabaseFile)
	assert.Empty(t, c.ProfilesDSN)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, uint64(2), c.DependencyRetries)
	assert.Equal(t, 500*time.Millisecond, c.DependencyBackoff)
	assert.Equal(t, "text", c.LogFormat)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, filepath.Join(".authflow", "client.db"), c.DatabasePath())
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"backend":     "rest",
		"backend_url": "https://json.example",
		"api_key":     "from-json",
		"log_level":   "warn",
	})
	t.Setenv("AUTHFLOW_API_KEY", "from-env")
	t.Setenv("AUTHFLOW_LOG_LEVEL", "error")

	os.Args = []string{"authflow", "-c", path, "-ll", "debug"}
	cfg := LoadConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, BackendREST, cfg.Backend, "json over defaults")
	assert.Equal(t, "https://json.example", cfg.BackendURL)
	assert.Equal(t, "from-env", cfg.APIKey, "env over json")
	assert.Equal(t, "debug", cfg.LogLevel, "flags over env")
	assert.Equal(t, "client.db", cfg.DatabaseFile, "untouched default")
}
