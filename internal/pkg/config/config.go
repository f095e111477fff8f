package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	API         APIConfig
	Session     SessionConfig
	Credentials CredentialsConfig
	Redis       RedisConfig
	Mongo       MongoConfig
}

// APIConfig points at the marketplace REST API. BaseURL is the only value the
// session guard itself depends on.
type APIConfig struct {
	BaseURL  string        `env:"API_BASE_URL"`
	Timeout  time.Duration `env:"API_TIMEOUT,  default=10s"`
	RetryMax int           `env:"API_RETRY_MAX, default=2"`
}

type SessionConfig struct {
	RestoreTimeout time.Duration `env:"RESTORE_TIMEOUT, default=10s"`
	RefreshSkew    time.Duration `env:"REFRESH_SKEW,    default=60s"`
}

type CredentialsConfig struct {
	InstallationID string `env:"INSTALLATION_ID,   default=default"`
	Prefix         string `env:"CREDENTIAL_PREFIX, default=console"`
	// SealingKey is a base64 32-byte key; empty stores credentials unsealed.
	SealingKey string `env:"CREDENTIAL_SEALING_KEY"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// MongoConfig backs the session audit trail; an empty URI disables it.
type MongoConfig struct {
	URI          string `env:"MONGO_URI"`
	Database     string `env:"MONGO_DB,      default=admin_console"`
	AuditWorkers int    `env:"AUDIT_WORKERS, default=2"`
}

// IsDevelopment reports whether human-friendly defaults (pretty logs) apply.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.API.BaseURL == "" {
		return nil, errors.New("config: API_BASE_URL is required")
	}
	return &cfg, nil
}
