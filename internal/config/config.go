// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Session store backends selectable with SESSION_STORE.
const (
	SessionStorePostgres = "postgres"
	SessionStoreRedis    = "redis"
	SessionStoreMemory   = "memory"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// GRPCAddr is the address the gRPC server listens on (e.g. :8080).
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// DatabaseURL is the Postgres DSN. Required unless SESSION_STORE=memory.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// DBConnectTimeout bounds the startup connect retry (e.g. "30s").
	DBConnectTimeout string `mapstructure:"DB_CONNECT_TIMEOUT"`

	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA P-256) or a path to it. Required by the server.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path; derived from the private key when empty.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	JWTIssuer    string `mapstructure:"JWT_ISSUER"`
	JWTAudience  string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the access token lifetime (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// JWTRefreshTTL is the refresh session lifetime (e.g. "168h").
	JWTRefreshTTL string `mapstructure:"JWT_REFRESH_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`

	// SessionStore selects where refresh sessions live: postgres, redis or memory.
	SessionStore  string `mapstructure:"SESSION_STORE"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// StrictRefreshRotation makes the loser of two concurrent refreshes fail with Aborted.
	StrictRefreshRotation bool `mapstructure:"STRICT_REFRESH_ROTATION"`
	// RevokeOnPasswordChange clears the refresh session after a password change.
	RevokeOnPasswordChange bool `mapstructure:"REVOKE_ON_PASSWORD_CHANGE"`
	// AuthzPolicyFile is an optional Rego file replacing the built-in role policy.
	AuthzPolicyFile string `mapstructure:"AUTHZ_POLICY_FILE"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
	// LogFormat is "text" or "json".
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// OTLPEndpoint is the OTel collector (host:port or URL). Empty disables export.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool   `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`

	// KafkaBrokers is a comma-separated list of Kafka broker addresses. When set, auth events go to Kafka.
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// AuthEventsTopic is the Kafka topic for auth events.
	AuthEventsTopic string `mapstructure:"AUTH_EVENTS_KAFKA_TOPIC"`
	// KafkaGroupID is the consumer group ID for the event worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
	// LokiURL is where the worker pushes auth events (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`

	// Seed-only: the admin account created by cmd/seed.
	AdminUsername string `mapstructure:"ADMIN_USERNAME"`
	AdminEmail    string `mapstructure:"ADMIN_EMAIL"`
	AdminName     string `mapstructure:"ADMIN_NAME"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`
}

var defaults = map[string]interface{}{
	"GRPC_ADDR":                   ":8080",
	"DATABASE_URL":                "",
	"DB_CONNECT_TIMEOUT":          "30s",
	"JWT_PRIVATE_KEY":             "",
	"JWT_PUBLIC_KEY":              "",
	"JWT_ISSUER":                  "login-api",
	"JWT_AUDIENCE":                "login-api-clients",
	"JWT_ACCESS_TTL":              "15m",
	"JWT_REFRESH_TTL":             "168h", // 7d
	"BCRYPT_COST":                 12,
	"SESSION_STORE":               SessionStorePostgres,
	"REDIS_ADDR":                  "localhost:6379",
	"REDIS_PASSWORD":              "",
	"REDIS_DB":                    0,
	"STRICT_REFRESH_ROTATION":     false,
	"REVOKE_ON_PASSWORD_CHANGE":   false,
	"AUTHZ_POLICY_FILE":           "",
	"LOG_LEVEL":                   "info",
	"LOG_FORMAT":                  "text",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "",
	"OTEL_EXPORTER_OTLP_INSECURE": false,
	"KAFKA_BROKERS":               "",
	"AUTH_EVENTS_KAFKA_TOPIC":     "login-auth-events",
	"KAFKA_GROUP_ID":              "login-auth-events-worker",
	"LOKI_URL":                    "",
	"ADMIN_USERNAME":              "admin",
	"ADMIN_EMAIL":                 "",
	"ADMIN_NAME":                  "Administrator",
	"ADMIN_PASSWORD":              "",
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit env file path.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore missing file

	v.AutomaticEnv()
	// Unmarshal only sees keys viper knows about, so every key gets a default.
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.GRPCAddr == "" {
		return errors.New("config: GRPC_ADDR must be set")
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 12
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	c.SessionStore = strings.ToLower(strings.TrimSpace(c.SessionStore))
	switch c.SessionStore {
	case SessionStorePostgres, SessionStoreRedis, SessionStoreMemory:
	default:
		return fmt.Errorf("config: SESSION_STORE must be postgres, redis or memory, got %q", c.SessionStore)
	}
	if c.SessionStore == SessionStoreRedis && c.RedisAddr == "" {
		return errors.New("config: REDIS_ADDR must be set when SESSION_STORE=redis")
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("config: LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	return parseDuration(c.JWTAccessTTL, 15*time.Minute)
}

// RefreshTTL parses JWTRefreshTTL as a time.Duration. Returns 168h if unset or invalid.
func (c *Config) RefreshTTL() time.Duration {
	return parseDuration(c.JWTRefreshTTL, 168*time.Hour)
}

// ConnectTimeout parses DBConnectTimeout. Returns 30s if unset or invalid.
func (c *Config) ConnectTimeout() time.Duration {
	return parseDuration(c.DBConnectTimeout, 30*time.Second)
}

// JSONLogs reports whether logs should be written as JSON.
func (c *Config) JSONLogs() bool {
	return strings.EqualFold(c.LogFormat, "json")
}

// NeedsDatabase reports whether the server must connect to Postgres. Users live there
// unless everything runs in memory.
func (c *Config) NeedsDatabase() bool {
	return c.SessionStore != SessionStoreMemory
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// An empty list means auth events are not published to Kafka.
func (c *Config) KafkaBrokersList() []string {
	if c == nil || c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
