// Package config loads server settings from SPLITBILL_* environment
// variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/mmynk/splitbill/internal/i18n"
)

// EnvPrefix is prepended to every variable name: SPLITBILL_PORT and so on.
const EnvPrefix = "SPLITBILL"

// Session backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	SessionBackend string `envconfig:"SESSION_BACKEND" default:"sqlite"`
	DBPath         string `envconfig:"DB_PATH" default:":memory:"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"2h"`
	SessionSecret string        `envconfig:"SESSION_SECRET"`
	PurgeInterval time.Duration `envconfig:"PURGE_INTERVAL" default:"10m"`

	DefaultLocale string   `envconfig:"DEFAULT_LOCALE" default:"id"`
	CORSOrigins   []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.SessionBackend = strings.ToLower(strings.TrimSpace(c.SessionBackend))
	switch c.SessionBackend {
	case BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("invalid %s_SESSION_BACKEND %q: want %s or %s", EnvPrefix, c.SessionBackend, BackendSQLite, BackendRedis)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid %s_PORT %d", EnvPrefix, c.Port)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("invalid %s_SESSION_TTL %s: must be positive", EnvPrefix, c.SessionTTL)
	}
	if _, ok := i18n.Parse(c.DefaultLocale); !ok {
		return fmt.Errorf("invalid %s_DEFAULT_LOCALE %q", EnvPrefix, c.DefaultLocale)
	}
	return nil
}

// Locale returns the parsed default locale.
func (c *Config) Locale() i18n.Locale {
	l, ok := i18n.Parse(c.DefaultLocale)
	if !ok {
		return i18n.DefaultLocale
	}
	return l
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
