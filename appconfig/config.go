// Package appconfig loads server settings from an optional YAML file and the
// environment.
package appconfig

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Storage drivers for session persistence
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

var ErrInvalidSettings = errors.New("invalid settings")

type Config struct {
	LogLevel  string   `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	Debug     bool     `yaml:"debug" env:"DEBUG" env-default:"false"`
	HTTP      HTTP     `yaml:"http"`
	ConfigDir string   `yaml:"config-dir" env:"CONFIG_DIR" env-default:"configs"`
	Storage   Storage  `yaml:"storage"`
	Sessions  Sessions `yaml:"sessions"`
	Ngrok     Ngrok    `yaml:"ngrok"`
}

type HTTP struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"localhost"`
	Port int    `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

type Storage struct {
	Driver      string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"file"`
	SessionsDir string `yaml:"sessions-dir" env:"SESSIONS_DIR" env-default:"sessions"`
	SQLitePath  string `yaml:"sqlite-path" env:"SQLITE_PATH" env-default:"sessions.db"`
	Redis       Redis  `yaml:"redis"`
}

type Redis struct {
	Host     string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	Prefix   string        `yaml:"prefix" env:"REDIS_PREFIX" env-default:"grid-escape:session:"`
	TTL      time.Duration `yaml:"ttl" env:"REDIS_TTL" env-default:"0s"`
}

// Sessions controls how long idle sessions stay in memory and how often the
// store is reconciled
type Sessions struct {
	Retention       time.Duration `yaml:"retention" env:"SESSION_RETENTION" env-default:"24h"`
	CleanupInterval time.Duration `yaml:"cleanup-interval" env:"SESSION_CLEANUP_INTERVAL" env-default:"1h"`
	SyncInterval    time.Duration `yaml:"sync-interval" env:"SESSION_SYNC_INTERVAL" env-default:"5s"`
}

type Ngrok struct {
	Enabled   bool   `yaml:"enabled" env:"NGROK_ENABLED" env-default:"false"`
	AuthToken string `yaml:"auth-token" env:"NGROK_AUTHTOKEN"`
	Domain    string `yaml:"domain" env:"NGROK_DOMAIN"`
}

// Load reads path (when not empty) and then the environment. Environment
// variables win over file values.
func Load(path string) (*Config, error) {
	config := &Config{}

	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, config)
	} else {
		err = cleanenv.ReadEnv(config)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load settings: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// MustLoad is Load that panics on error
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}
	return config
}

// Validate checks values cleanenv cannot express as tags
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory, StorageFile, StorageRedis, StorageSQLite:
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidSettings, c.Storage.Driver)
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("%w: http port %d out of range", ErrInvalidSettings, c.HTTP.Port)
	}
	if c.Sessions.CleanupInterval <= 0 || c.Sessions.SyncInterval <= 0 {
		return fmt.Errorf("%w: session intervals must be positive", ErrInvalidSettings)
	}
	return nil
}

// Addr is the host:port the HTTP server listens on
func (h HTTP) Addr() string {
	return net.JoinHostPort(h.Host, strconv.Itoa(h.Port))
}

// Addr is the host:port of the Redis server
func (r Redis) Addr() string {
	return net.JoinHostPort(r.Host, r.Port)
}

// Usage describes every environment variable
func Usage() (string, error) {
	return cleanenv.GetDescription(&Config{}, nil)
}
