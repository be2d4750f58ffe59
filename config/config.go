package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither --config nor CONFIG_PATH is given.
const DefaultPath = "./config/config.yaml"

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Logging    LoggingConfig    `yaml:"logging"`
	Sync       SyncConfig       `yaml:"sync"`
	Seasons    SeasonsConfig    `yaml:"seasons"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Sentry     SentryConfig     `yaml:"sentry"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	Debug           bool    `yaml:"debug"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
	AppVersion      string  `yaml:"app_version"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // postgres, mysql or sqlite
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	SlowQueryMillis        int    `yaml:"slow_query_ms"`
}

// LoggingConfig selects the zap encoder and level.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// SyncConfig bounds what a single note sync request may carry.
type SyncConfig struct {
	MaxBatchSize    int `yaml:"max_batch_size"`
	MaxContentBytes int `yaml:"max_content_bytes"`
	MaxTitleLength  int `yaml:"max_title_length"`
}

// SeasonsConfig controls the cached season catalog.
type SeasonsConfig struct {
	CacheTTLMinutes int           `yaml:"cache_ttl_minutes"`
	CacheTTL        time.Duration `yaml:"-"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether both VAPID keys are present.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size      int `yaml:"size"`
	QueueSize int `yaml:"queue_size"`
}

// SentryConfig enables error reporting when DSN is set.
type SentryConfig struct {
	DSN         string  `yaml:"dsn"`
	Environment string  `yaml:"environment"`
	SampleRate  float64 `yaml:"sample_rate"`
}

// Path returns the config file location from CONFIG_PATH or the default.
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads the configuration from the given path. A missing file is not an
// error: the environment and defaults are enough to run against sqlite.
func Load(path string) (*Config, error) {
	var cfg Config

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		log.Printf("config file %s not found; using environment and defaults", path)
	default:
		return nil, err
	}

	// .env is optional; real environment variables take precedence over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("MANGO_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("MANGO_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("MANGO_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MANGO_PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("MANGO_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("MANGO_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid MANGO_DEBUG %q: %w", v, err)
		}
		cfg.Server.Debug = debug
	}
	if v := os.Getenv("MANGO_SENTRY_DSN"); v != "" {
		cfg.Sentry.DSN = v
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}
	if cfg.Server.AppVersion == "" {
		cfg.Server.AppVersion = "1.0.0"
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeMinutes <= 0 {
		cfg.Database.ConnMaxLifetimeMinutes = 30
	}
	if cfg.Database.SlowQueryMillis <= 0 {
		cfg.Database.SlowQueryMillis = 200
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Sync.MaxBatchSize <= 0 {
		cfg.Sync.MaxBatchSize = 100
	}
	if cfg.Sync.MaxContentBytes <= 0 {
		cfg.Sync.MaxContentBytes = 10000
	}
	if cfg.Sync.MaxTitleLength <= 0 {
		cfg.Sync.MaxTitleLength = 255
	}

	if cfg.Seasons.CacheTTLMinutes <= 0 {
		cfg.Seasons.CacheTTLMinutes = 24 * 60
	}
	cfg.Seasons.CacheTTL = time.Duration(cfg.Seasons.CacheTTLMinutes) * time.Minute

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
	if cfg.WorkerPool.QueueSize <= 0 {
		cfg.WorkerPool.QueueSize = 100
	}

	if cfg.Sentry.SampleRate <= 0 {
		cfg.Sentry.SampleRate = 1.0
	}
}
