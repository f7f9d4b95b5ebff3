// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
)

// Config is the full service configuration.
type Config struct {
	Server     Server
	Database   Database
	Redis      RedisConfig
	Kafka      Kafka
	Auth       Auth
	Onboarding Onboarding
	RateLimit  RateLimit
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv     string `env:"APP_ENV" envDefault:"development"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"ONBOARDING_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// Database selects the PostgreSQL store. An empty URL selects the in-memory store.
type Database struct {
	URL             string        `env:"DATABASE_URL"`
	Driver          string        `env:"DB_DRIVER" envDefault:"postgres"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	TxTimeout       time.Duration `env:"DB_TX_TIMEOUT" envDefault:"5s"`
	AutoMigrate     bool          `env:"DB_AUTO_MIGRATE" envDefault:"true"`
}

// RedisConfig backs idempotency records and rate limit windows. An empty URL
// keeps both in memory.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// Kafka configures the audit outbox relay. Empty brokers disable the relay.
type Kafka struct {
	Brokers        []string      `env:"KAFKA_BROKERS" envSeparator:","`
	AuditTopic     string        `env:"KAFKA_AUDIT_TOPIC" envDefault:"onboarding.audit"`
	ClientID       string        `env:"KAFKA_CLIENT_ID" envDefault:"onboarding-service"`
	Partitions     int32         `env:"KAFKA_AUDIT_PARTITIONS" envDefault:"3"`
	Replication    int16         `env:"KAFKA_AUDIT_REPLICATION" envDefault:"1"`
	RelayInterval  time.Duration `env:"OUTBOX_RELAY_INTERVAL" envDefault:"2s"`
	RelayBatchSize int           `env:"OUTBOX_RELAY_BATCH_SIZE" envDefault:"100"`
}

// Auth holds token validation and operator credentials.
type Auth struct {
	JWTSigningKey string `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer     string `env:"JWT_ISSUER"`
	AdminToken    string `env:"ADMIN_API_TOKEN"`
}

// Onboarding holds flow-level settings.
type Onboarding struct {
	TOSVersion          string        `env:"LEGAL_TOS_VERSION" envDefault:"2024-01"`
	PrivacyVersion      string        `env:"LEGAL_PRIVACY_VERSION" envDefault:"2024-01"`
	RiskVersion         string        `env:"LEGAL_RISK_VERSION" envDefault:"2024-01"`
	CollaboratorTimeout time.Duration `env:"COLLABORATOR_TIMEOUT" envDefault:"5s"`
	BreakerFailures     int           `env:"COLLABORATOR_BREAKER_FAILURES" envDefault:"5"`
	BreakerCooldown     time.Duration `env:"COLLABORATOR_BREAKER_COOLDOWN" envDefault:"30s"`
	IdempotencyTTL      time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`
	KYCOutcome          string        `env:"MOCK_KYC_OUTCOME" envDefault:"approved"`
	KYCPollOutcome      string        `env:"MOCK_KYC_POLL_OUTCOME" envDefault:"approved"`
	BrokerOutcome       string        `env:"MOCK_BROKER_OUTCOME" envDefault:"active"`
	ProviderLatency     time.Duration `env:"MOCK_PROVIDER_LATENCY" envDefault:"0s"`
}

// RateLimit sets the per-user request limits. Counters use Redis when
// REDIS_URL is set.
type RateLimit struct {
	Enabled               bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	Window                time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	ReadPerWindow         int           `env:"RATE_LIMIT_READ" envDefault:"120"`
	WritePerWindow        int           `env:"RATE_LIMIT_WRITE" envDefault:"30"`
	CollaboratorPerWindow int           `env:"RATE_LIMIT_COLLABORATOR" envDefault:"10"`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Validate rejects configurations that cannot run safely.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "pgx":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Onboarding.CollaboratorTimeout <= 0 {
		return errors.New("COLLABORATOR_TIMEOUT must be positive")
	}
	if c.IsProduction() && c.Auth.JWTSigningKey == "dev-secret-key-change-in-production" {
		return errors.New("JWT_SIGNING_KEY must be set in production")
	}
	return nil
}
