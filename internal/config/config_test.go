package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "http", cfg.Server.Transport)
	require.Equal(t, "sqlite", cfg.Store.Backend)
	require.Equal(t, "opendaw.db", cfg.Store.Path)
	require.Equal(t, "mistral-small-latest", cfg.Mistral.Model)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OPENDAW_SERVER_PORT", "9090")
	t.Setenv("OPENDAW_TRANSPORT", "stdio")
	t.Setenv("OPENDAW_STORE_BACKEND", "memory")
	t.Setenv("MISTRAL_API_KEY", "sk-test")
	t.Setenv("OPENDAW_MISTRAL_TIMEOUT", "45s")
	t.Setenv("OPENDAW_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "stdio", cfg.Server.Transport)
	require.Equal(t, "memory", cfg.Store.Backend)
	require.Equal(t, "sk-test", cfg.Mistral.APIKey)
	require.Equal(t, 45*time.Second, cfg.Mistral.Timeout)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("OPENDAW_SERVER_PORT", "not-a-port")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadInvalidTransport(t *testing.T) {
	t.Setenv("OPENDAW_TRANSPORT", "carrier-pigeon")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadS3RequiresBucket(t *testing.T) {
	t.Setenv("OPENDAW_STORE_BACKEND", "s3")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("OPENDAW_S3_BUCKET", "opendaw-projects")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "opendaw-projects", cfg.Store.Bucket)
	require.Equal(t, "us-east-1", cfg.Store.Region)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte(`
server:
  host: 127.0.0.1
  port: 3000
store:
  backend: memory
log:
  level: warn
`)
	require.NoError(t, os.WriteFile(path, body, 0o644))
	t.Setenv("OPENDAW_CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1", cfg.Server.Host)
	require.Equal(t, 3000, cfg.Server.Port)
	require.Equal(t, "memory", cfg.Store.Backend)
	require.Equal(t, "warn", cfg.Log.Level)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 3000\n"), 0o644))
	t.Setenv("OPENDAW_CONFIG_PATH", path)
	t.Setenv("OPENDAW_SERVER_PORT", "4000")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 4000, cfg.Server.Port)
}
