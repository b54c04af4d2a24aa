package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	pstrings "capture-gateway/pkg/platform/strings"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	AdminToken    string
}

// Postgres captures the version/reviewer store configuration. An empty DSN
// selects the in-memory stores, which keeps local development dependency-free.
type Postgres struct {
	DSN string
}

// Redis captures the snapshot cache configuration. An empty URL disables
// caching entirely.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka captures audit publishing configuration. No brokers means audit
// events only go to the log.
type Kafka struct {
	Brokers []string
	Topic   string
}

// Config is the full process configuration.
type Config struct {
	Server   Server
	Postgres Postgres
	Redis    Redis
	Kafka    Kafka
	// SnapshotCacheTTL bounds how long a cached version payload may serve reads.
	SnapshotCacheTTL time.Duration
}

// FromEnv builds the process config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Server: Server{
			Addr:          envOr("CAPTURE_GATEWAY_ADDR", ":8080"),
			JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			AdminToken:    os.Getenv("ADMIN_TOKEN"),
		},
		Postgres: Postgres{
			DSN: os.Getenv("POSTGRES_DSN"),
		},
		Redis: Redis{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: Kafka{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   envOr("KAFKA_AUDIT_TOPIC", "capture.audit"),
		},
		SnapshotCacheTTL: envDuration("SNAPSHOT_CACHE_TTL", 5*time.Minute),
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	return pstrings.DedupeAndTrim(strings.Split(v, ","))
}
