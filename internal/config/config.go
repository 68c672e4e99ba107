// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// BcryptCost is the bcrypt cost factor (4-31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// TokenAbsoluteTTL is the hard ceiling on token lifetime measured from issue (e.g. "720h").
	TokenAbsoluteTTL string `mapstructure:"TOKEN_ABSOLUTE_TTL"`
	// TokenRollingTTL is the sliding token lifetime measured from last use (e.g. "168h").
	TokenRollingTTL string `mapstructure:"TOKEN_ROLLING_TTL"`
	// MaxSessions is the per-user cap on concurrently valid tokens; the least-recently-used
	// token is evicted when a login would exceed it.
	MaxSessions int `mapstructure:"MAX_SESSIONS"`
	// KeepAliveInterval is how often heartbeat frames are pushed to live connections (e.g. "25s").
	KeepAliveInterval string `mapstructure:"KEEPALIVE_INTERVAL"`
	// EmitterBuffer is the per-connection outbound event buffer; a full buffer detaches the connection.
	EmitterBuffer int `mapstructure:"EMITTER_BUFFER"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// OTLPEndpoint is the OTLP gRPC collector endpoint (e.g. http://localhost:4317). Empty disables export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP export even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`

	// Audit pipeline (optional). When Kafka brokers are set, the server emits audit events to Kafka.
	// AuditKafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	AuditKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// AuditKafkaTopic is the Kafka topic for audit events (default chat-audit).
	AuditKafkaTopic string `mapstructure:"AUDIT_KAFKA_TOPIC"`

	// Worker-only: Loki URL for the audit worker to push logs (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the audit worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("TOKEN_ABSOLUTE_TTL", "720h") // 30d
	v.SetDefault("TOKEN_ROLLING_TTL", "168h")  // 7d
	v.SetDefault("MAX_SESSIONS", 5)
	v.SetDefault("KEEPALIVE_INTERVAL", "25s")
	v.SetDefault("EMITTER_BUFFER", 16)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("AUDIT_KAFKA_TOPIC", "chat-audit")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "chat-audit-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	if cfg.MaxSessions <= 0 {
		return nil, errors.New("config: MAX_SESSIONS must be positive")
	}
	if cfg.EmitterBuffer <= 0 {
		return nil, errors.New("config: EMITTER_BUFFER must be positive")
	}

	return &cfg, nil
}

// AbsoluteTTL parses TokenAbsoluteTTL as a time.Duration. Returns 720h if unset or invalid.
func (c *Config) AbsoluteTTL() time.Duration {
	d, err := time.ParseDuration(c.TokenAbsoluteTTL)
	if err != nil || d <= 0 {
		return 720 * time.Hour
	}
	return d
}

// RollingTTL parses TokenRollingTTL as a time.Duration. Returns 168h if unset or invalid.
func (c *Config) RollingTTL() time.Duration {
	d, err := time.ParseDuration(c.TokenRollingTTL)
	if err != nil || d <= 0 {
		return 168 * time.Hour
	}
	return d
}

// KeepAlive parses KeepAliveInterval as a time.Duration. Returns 25s if unset or invalid.
func (c *Config) KeepAlive() time.Duration {
	d, err := time.ParseDuration(c.KeepAliveInterval)
	if err != nil || d <= 0 {
		return 25 * time.Second
	}
	return d
}

// AuditKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if the audit pipeline is enabled (non-empty list) and to create the producer.
func (c *Config) AuditKafkaBrokersList() []string {
	if c == nil || c.AuditKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.AuditKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
