// Package config builds runtime configuration from environment variables so
// main stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the service needs at startup.
type Config struct {
	Addr string

	// StoreBackend selects the primary snapshot store:
	// memory | bolt | redis | postgres.
	StoreBackend string
	BoltPath     string
	PostgresURL  string
	Redis        RedisConfig

	// MirrorBoltPath enables a best-effort local file mirror of every
	// successful ingestion. Empty disables it.
	MirrorBoltPath string
	Kafka          KafkaConfig

	JWTSigningKey string

	// AdminEmails is the static allow-list; AdminEmailsFile, when set,
	// overrides it and is reloaded on change.
	AdminEmails     []string
	AdminEmailsFile string
}

// RedisConfig carries connection settings for the key-value tier.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables the best-effort update announcement. Empty brokers
// disable it.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv assembles the configuration with development-friendly defaults.
func FromEnv() Config {
	return Config{
		Addr:         envOr("RBAC_ADDR", ":8080"),
		StoreBackend: envOr("RBAC_STORE", "memory"),
		BoltPath:     envOr("RBAC_BOLT_PATH", "data/rbac.db"),
		PostgresURL:  os.Getenv("RBAC_POSTGRES_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("RBAC_REDIS_URL"),
			PoolSize:     envInt("RBAC_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("RBAC_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("RBAC_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("RBAC_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("RBAC_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		MirrorBoltPath: os.Getenv("RBAC_MIRROR_BOLT_PATH"),
		Kafka: KafkaConfig{
			Brokers: envList("RBAC_KAFKA_BROKERS"),
			Topic:   envOr("RBAC_KAFKA_TOPIC", "rbac.matrix-updates"),
		},
		// Override outside development.
		JWTSigningKey:   envOr("RBAC_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		AdminEmails:     envList("RBAC_ADMIN_EMAILS"),
		AdminEmailsFile: os.Getenv("RBAC_ADMIN_EMAILS_FILE"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
