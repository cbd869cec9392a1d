package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Redis     RedisConfig     `yaml:"redis"`
	Lock      LockConfig      `yaml:"lock"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Events    EventsConfig    `yaml:"events"`
	Log       LogConfig       `yaml:"log"`
	CLI       CLIConfig       `yaml:"cli"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigin   string        `yaml:"allowed_origin"` // CORS and websocket origin; empty allows any
}

// DatabaseConfig selects the store. An empty DSN with the sqlite driver
// means ~/.quadro/quadro.db.
type DatabaseConfig struct {
	Driver       string `yaml:"driver"`
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// AuthConfig configures bearer tokens
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// RedisConfig is shared by the rate limiter and the redis locker.
// An empty Addr disables both.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LockConfig selects the per-parent locker: none, local or redis
type LockConfig struct {
	Backend string        `yaml:"backend"`
	TTL     time.Duration `yaml:"ttl"`
	Wait    time.Duration `yaml:"wait"`
}

// RateLimitConfig is a fixed window per client and route
type RateLimitConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// EventsConfig sizes the board event hub
type EventsConfig struct {
	BufferSize       int           `yaml:"buffer_size"`
	ClientBufferSize int           `yaml:"client_buffer_size"`
	PingInterval     time.Duration `yaml:"ping_interval"`
}

// LogConfig configures slog. File "default" means ~/.quadro/logs/quadro.log,
// empty means stderr.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// CLIConfig holds defaults for CLI commands
type CLIConfig struct {
	User string `yaml:"user"` // email of the acting user
}

// Defaults returns a config with every value filled in
func Defaults() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads the config file at path (or the default location when path
// is empty), then .env, then QUADRO_* environment overrides. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			path = ""
		}
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	// Fill in any missing values with defaults
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to path, creating its directory
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// DefaultPath returns $XDG_CONFIG_HOME/quadro/config.yaml, falling back
// to ~/.config/quadro/config.yaml
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "quadro", "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "quadro", "config.yaml"), nil
}

// Validate rejects unknown drivers, lock backends and log settings
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.Driver == "postgres" && c.Database.DSN == "" {
		return errors.New("database.dsn is required for postgres")
	}

	switch c.Lock.Backend {
	case "none", "local":
	case "redis":
		if c.Redis.Addr == "" {
			return errors.New("lock backend redis requires redis.addr")
		}
	default:
		return fmt.Errorf("unsupported lock backend %q", c.Lock.Backend)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format %q", c.Log.Format)
	}

	if c.RateLimit.Enabled && c.RateLimit.Requests <= 0 {
		return errors.New("rate_limit.requests must be positive")
	}
	return nil
}

// ValidateServe additionally requires what the HTTP server needs
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (or QUADRO_JWT_SECRET) is required to serve")
	}
	return nil
}

// applyEnv overrides file values with QUADRO_* variables
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"QUADRO_ADDR":           &c.Server.Addr,
		"QUADRO_ALLOWED_ORIGIN": &c.Server.AllowedOrigin,
		"QUADRO_DB_DRIVER":      &c.Database.Driver,
		"QUADRO_DB_DSN":         &c.Database.DSN,
		"QUADRO_JWT_SECRET":     &c.Auth.JWTSecret,
		"QUADRO_REDIS_ADDR":     &c.Redis.Addr,
		"QUADRO_REDIS_PASSWORD": &c.Redis.Password,
		"QUADRO_LOCK_BACKEND":   &c.Lock.Backend,
		"QUADRO_LOG_LEVEL":      &c.Log.Level,
		"QUADRO_LOG_FORMAT":     &c.Log.Format,
		"QUADRO_LOG_FILE":       &c.Log.File,
		"QUADRO_USER":           &c.CLI.User,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("QUADRO_RATE_LIMIT"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid QUADRO_RATE_LIMIT %q: %w", v, err)
		}
		c.RateLimit.Enabled = n > 0
		c.RateLimit.Requests = n
	}
	return nil
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}

	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}

	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}

	if c.Lock.Backend == "" {
		c.Lock.Backend = "none"
	}
	if c.Lock.TTL == 0 {
		c.Lock.TTL = 10 * time.Second
	}
	if c.Lock.Wait == 0 {
		c.Lock.Wait = 5 * time.Second
	}

	if c.RateLimit.Requests == 0 {
		c.RateLimit.Requests = 120
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = time.Minute
	}

	if c.Events.BufferSize == 0 {
		c.Events.BufferSize = 256
	}
	if c.Events.ClientBufferSize == 0 {
		c.Events.ClientBufferSize = 32
	}
	if c.Events.PingInterval == 0 {
		c.Events.PingInterval = 30 * time.Second
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}
