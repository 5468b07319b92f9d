package appconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	config, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", config.LogLevel)
	assert.Equal(t, "localhost:8080", config.HTTP.Addr())
	assert.Equal(t, "configs", config.ConfigDir)
	assert.Equal(t, StorageFile, config.Storage.Driver)
	assert.Equal(t, "localhost:6379", config.Storage.Redis.Addr())
	assert.Equal(t, "grid-escape:session:", config.Storage.Redis.Prefix)
	assert.Equal(t, 24*time.Hour, config.Sessions.Retention)
	assert.Equal(t, 5*time.Second, config.Sessions.SyncInterval)
	assert.False(t, config.Ngrok.Enabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/games.db")
	t.Setenv("SESSION_RETENTION", "30m")
	t.Setenv("NGROK_ENABLED", "true")

	config, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, config.HTTP.Port)
	assert.Equal(t, StorageSQLite, config.Storage.Driver)
	assert.Equal(t, "/tmp/games.db", config.Storage.SQLitePath)
	assert.Equal(t, 30*time.Minute, config.Sessions.Retention)
	assert.True(t, config.Ngrok.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
log-level: debug
http:
  host: 0.0.0.0
  port: 7000
storage:
  driver: redis
  redis:
    host: cache
    ttl: 2h
`), 0644))

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, "0.0.0.0:7000", config.HTTP.Addr())
	assert.Equal(t, StorageRedis, config.Storage.Driver)
	assert.Equal(t, "cache:6379", config.Storage.Redis.Addr())
	assert.Equal(t, 2*time.Hour, config.Storage.Redis.TTL)

	// Environment wins over the file
	t.Setenv("HTTP_PORT", "7001")
	config, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7001, config.HTTP.Port)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	t.Setenv("STORAGE_DRIVER", "tape")
	_, err = Load("")
	assert.ErrorIs(t, err, ErrInvalidSettings)
	assert.Panics(t, func() { MustLoad("") })
}

func TestValidate(t *testing.T) {
	config, err := Load("")
	require.NoError(t, err)

	config.HTTP.Port = 70000
	assert.ErrorIs(t, config.Validate(), ErrInvalidSettings)

	config.HTTP.Port = 8080
	config.Sessions.SyncInterval = 0
	assert.ErrorIs(t, config.Validate(), ErrInvalidSettings)
}

func TestUsage(t *testing.T) {
	usage, err := Usage()
	require.NoError(t, err)
	assert.Contains(t, usage, "STORAGE_DRIVER")
	assert.Contains(t, usage, "NGROK_AUTHTOKEN")
}
