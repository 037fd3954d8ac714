// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	PoolSize int    `yaml:"pool_size"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// APIConfig covers the public (mobile client) HTTP surface.
type APIConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RateLimit      int           `yaml:"rate_limit"`  // requests per window per caller
	RateWindow     time.Duration `yaml:"rate_window"` // fixed window size
}

// AdminConfig covers the operator HTTP surface that gates code generation.
type AdminConfig struct {
	Port       int           `yaml:"port"`
	Password   string        `yaml:"password"`   // bootstrap login password
	JWTSecret  string        `yaml:"jwt_secret"` // HMAC secret for session tokens
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type SchedulerConfig struct {
	ExpiryGaugeEvery time.Duration `yaml:"expiry_gauge_every"`
}

type Config struct {
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	API       APIConfig       `yaml:"api"`
	Admin     AdminConfig     `yaml:"admin"`
	Scheduler SchedulerConfig `yaml:"scheduler"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.PoolSize <= 0 {
		cfg.Database.PoolSize = 10
	}
	if cfg.API.Port == 0 {
		cfg.API.Port = 8080
	}
	if cfg.API.RequestTimeout <= 0 {
		cfg.API.RequestTimeout = 10 * time.Second
	}
	if cfg.API.RateLimit <= 0 {
		cfg.API.RateLimit = 30
	}
	if cfg.API.RateWindow <= 0 {
		cfg.API.RateWindow = time.Minute
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 8081
	}
	if cfg.Admin.SessionTTL <= 0 {
		cfg.Admin.SessionTTL = 30 * time.Minute
	}
	if cfg.Scheduler.ExpiryGaugeEvery <= 0 {
		cfg.Scheduler.ExpiryGaugeEvery = 5 * time.Minute
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if !dev {
		if cfg.Admin.Password == "" {
			return nil, errors.New("admin.password is required")
		}
		if cfg.Admin.JWTSecret == "" {
			return nil, errors.New("admin.jwt_secret is required")
		}
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
