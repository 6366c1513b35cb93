package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
app:
  name: barberbot
  environment: test
http:
  port: 9090
database:
  path: /tmp/test.db
redis:
  address: localhost:6379
  db: 2
api:
  auth:
    enabled: true
    api_keys:
      - key: secret
        name: admin
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "barberbot", cfg.App.Name)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "/tmp/test.db", cfg.Database.Path)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.True(t, cfg.API.Auth.Enabled)
	require.Len(t, cfg.API.Auth.APIKeys, 1)
	assert.Equal(t, "secret", cfg.API.Auth.APIKeys[0].Key)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /tmp/test.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "barberbot", cfg.App.Name)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "x-api-key", cfg.API.Auth.Header)
	assert.Equal(t, 10.0, cfg.API.RateLimit.RPS)
	assert.Equal(t, 20, cfg.API.RateLimit.Burst)
	assert.Equal(t, "exports", cfg.Exports.Path)
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_REDIS_PASSWORD", "s3cret")
	path := writeConfig(t, `
database:
  path: /tmp/test.db
redis:
  address: localhost:6379
  password: ${TEST_REDIS_PASSWORD}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Redis.Password)
}

func TestLoadValidation(t *testing.T) {
	t.Run("missing database path", func(t *testing.T) {
		_, err := Load(writeConfig(t, `
app:
  name: barberbot
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database path")
	})

	t.Run("auth enabled without keys", func(t *testing.T) {
		_, err := Load(writeConfig(t, `
database:
  path: /tmp/test.db
api:
  auth:
    enabled: true
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no api keys")
	})

	t.Run("empty key", func(t *testing.T) {
		_, err := Load(writeConfig(t, `
database:
  path: /tmp/test.db
api:
  auth:
    enabled: true
    api_keys:
      - key: ""
        name: admin
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "admin")
	})
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
