package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultDeviceKey is the placeholder shared secret used when DEVICE_KEY is unset.
const DefaultDeviceKey = "CHANGE_ME_DEVICE_KEY"

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Realtime RealtimeConfig `yaml:"realtime"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port                  int     `yaml:"port" env:"PORT"`
	WebOrigin             string  `yaml:"web_origin" env:"WEB_ORIGIN"`
	DeviceKey             string  `yaml:"device_key" env:"DEVICE_KEY"`
	RateLimitPerSec       float64 `yaml:"rate_limit_per_sec" env:"RATE_LIMIT_PER_SEC"`
	RateLimitBurst        int     `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
	CacheTTLSeconds       int     `yaml:"cache_ttl_seconds" env:"CACHE_TTL_SECONDS"`
	BackendTimeoutSeconds int     `yaml:"backend_timeout_seconds" env:"BACKEND_TIMEOUT_SECONDS"`

	CacheTTL       time.Duration `yaml:"-"`
	BackendTimeout time.Duration `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
// An empty DSN runs the service on the in-memory store.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn" env:"DATABASE_URL"`
	MaxOpenConns           int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns           int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes" env:"DB_CONN_MAX_LIFETIME_MINUTES"`
}

// RealtimeConfig holds the websocket broadcast configuration.
type RealtimeConfig struct {
	Buffer int `yaml:"buffer" env:"REALTIME_BUFFER"`
}

// Load reads the configuration. The YAML file at path is optional; values from
// the environment (and a local .env file, if present) take precedence.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port <= 0 {
		c.Server.Port = 5000
	}
	if c.Server.WebOrigin == "" {
		c.Server.WebOrigin = "*"
	}
	if c.Server.DeviceKey == "" {
		log.Printf("DEVICE_KEY is not set; using the placeholder key")
		c.Server.DeviceKey = DefaultDeviceKey
	}
	if c.Server.RateLimitPerSec < 0 {
		c.Server.RateLimitPerSec = 0
	}
	if c.Server.RateLimitBurst <= 0 {
		c.Server.RateLimitBurst = 20
	}
	if c.Server.CacheTTLSeconds < 0 {
		c.Server.CacheTTLSeconds = 0
	}
	c.Server.CacheTTL = time.Duration(c.Server.CacheTTLSeconds) * time.Second

	if c.Server.BackendTimeoutSeconds <= 0 {
		c.Server.BackendTimeoutSeconds = 5
	}
	c.Server.BackendTimeout = time.Duration(c.Server.BackendTimeoutSeconds) * time.Second

	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns <= 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetimeMinutes <= 0 {
		c.Database.ConnMaxLifetimeMinutes = 30
	}

	if c.Realtime.Buffer <= 0 {
		c.Realtime.Buffer = 64
	}
}

// UsePersistentStore reports whether a connection string was configured.
func (c *Config) UsePersistentStore() bool {
	return c.Database.DSN != ""
}
