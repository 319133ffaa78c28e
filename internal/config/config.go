package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Tailscale  TailscaleConfig  `yaml:"tailscale"`
	Logging    LoggingConfig    `yaml:"logging"`
	Session    SessionConfig    `yaml:"session"`
	Estimation EstimationConfig `yaml:"estimation"`
	Cache      CacheConfig      `yaml:"cache"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Driver     string `yaml:"driver"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Name       string `yaml:"name"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	SSLMode    string `yaml:"sslmode"`
	Migrations string `yaml:"migrations"`
	// MaxConns caps the postgres pool; 0 keeps the pgxpool default.
	MaxConns int `yaml:"max_conns"`
	// Path is the database file for the sqlite driver.
	Path string `yaml:"path"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
	Stdout bool   `yaml:"stdout"`
}

type SessionConfig struct {
	RestSeconds              int `yaml:"rest_seconds"`
	CheckpointTimeoutSeconds int `yaml:"checkpoint_timeout_seconds"`
}

type EstimationConfig struct {
	SecondsPerRep          float64 `yaml:"seconds_per_rep"`
	RestBetweenSetsSeconds float64 `yaml:"rest_between_sets_seconds"`
	DefaultWeightLbs       float64 `yaml:"default_weight_lbs"`
}

type CacheConfig struct {
	SizeMB     int `yaml:"size_mb"`
	TTLSeconds int `yaml:"ttl_seconds"`
}

// CheckpointTimeout returns the session checkpoint timeout.
func (s SessionConfig) CheckpointTimeout() time.Duration {
	return time.Duration(s.CheckpointTimeoutSeconds) * time.Second
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// JSON reports whether logs are written as JSON.
func (l LoggingConfig) JSON() bool {
	return l.Format == "json"
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix FITTRACK_ and underscore-separated paths:
//
//	FITTRACK_SERVER_HOST, FITTRACK_SERVER_PORT,
//	FITTRACK_DB_DRIVER, FITTRACK_DB_HOST, FITTRACK_DB_PORT, FITTRACK_DB_NAME,
//	FITTRACK_DB_USER, FITTRACK_DB_PASSWORD, FITTRACK_DB_SSLMODE, FITTRACK_DB_PATH,
//	FITTRACK_DB_MAX_CONNS,
//	FITTRACK_AUTH_API_KEY,
//	FITTRACK_TAILSCALE_ENABLED, FITTRACK_TAILSCALE_HOSTNAME,
//	FITTRACK_LOG_LEVEL, FITTRACK_LOG_FORMAT, FITTRACK_LOG_FILE
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	setString("FITTRACK_SERVER_HOST", &cfg.Server.Host)
	setInt("FITTRACK_SERVER_PORT", &cfg.Server.Port)
	setString("FITTRACK_DB_DRIVER", &cfg.Database.Driver)
	setString("FITTRACK_DB_HOST", &cfg.Database.Host)
	setInt("FITTRACK_DB_PORT", &cfg.Database.Port)
	setString("FITTRACK_DB_NAME", &cfg.Database.Name)
	setString("FITTRACK_DB_USER", &cfg.Database.User)
	setString("FITTRACK_DB_PASSWORD", &cfg.Database.Password)
	setString("FITTRACK_DB_SSLMODE", &cfg.Database.SSLMode)
	setString("FITTRACK_DB_PATH", &cfg.Database.Path)
	setInt("FITTRACK_DB_MAX_CONNS", &cfg.Database.MaxConns)
	setString("FITTRACK_AUTH_API_KEY", &cfg.Auth.APIKey)
	setBool("FITTRACK_TAILSCALE_ENABLED", &cfg.Tailscale.Enabled)
	setString("FITTRACK_TAILSCALE_HOSTNAME", &cfg.Tailscale.Hostname)
	setString("FITTRACK_LOG_LEVEL", &cfg.Logging.Level)
	setString("FITTRACK_LOG_FORMAT", &cfg.Logging.Format)
	setString("FITTRACK_LOG_FILE", &cfg.Logging.File)
}

func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	if c.Database.Migrations == "" {
		c.Database.Migrations = "migrations"
	}
	if c.Tailscale.Hostname == "" {
		c.Tailscale.Hostname = "fittrack"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Session.RestSeconds == 0 {
		c.Session.RestSeconds = 60
	}
	if c.Session.CheckpointTimeoutSeconds == 0 {
		c.Session.CheckpointTimeoutSeconds = 10
	}
	if c.Estimation.SecondsPerRep == 0 {
		c.Estimation.SecondsPerRep = 4
	}
	if c.Estimation.RestBetweenSetsSeconds == 0 {
		c.Estimation.RestBetweenSetsSeconds = 60
	}
	if c.Cache.SizeMB == 0 {
		c.Cache.SizeMB = 8
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 300
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required")
		}
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required")
		}
		if c.Database.MaxConns < 0 {
			return fmt.Errorf("database.max_conns must not be negative")
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("database.driver %q must be %q or %q", c.Database.Driver, DriverPostgres, DriverSQLite)
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format %q must be text or json", c.Logging.Format)
	}
	if c.Session.RestSeconds < 0 || c.Session.CheckpointTimeoutSeconds < 0 {
		return fmt.Errorf("session durations must not be negative")
	}
	if c.Estimation.SecondsPerRep < 0 || c.Estimation.RestBetweenSetsSeconds < 0 || c.Estimation.DefaultWeightLbs < 0 {
		return fmt.Errorf("estimation values must not be negative")
	}
	if c.Cache.SizeMB < 0 || c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache values must not be negative")
	}
	return nil
}
