package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration. FromEnv builds it from the
// environment so main stays lean; every backing service is optional and the
// server falls back to in-memory stores when none is configured.
type Config struct {
	Addr        string
	PostgresURL string
	Redis       RedisConfig
	Kafka       KafkaConfig

	// RequestTimeout bounds a single HTTP request end to end.
	RequestTimeout time.Duration
}

// RedisConfig holds connection settings for the availability cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds settings for the audit outbox publisher.
type KafkaConfig struct {
	Brokers []string
	Topic   string

	// PollInterval controls how often the outbox worker drains pending rows.
	PollInterval time.Duration
}

// AvailabilityCacheTTL bounds staleness of cached item availability.
var AvailabilityCacheTTL = 30 * time.Second

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:           envOr("LOCADORA_ADDR", ":8080"),
		PostgresURL:    os.Getenv("LOCADORA_POSTGRES_URL"),
		RequestTimeout: envDurationOr("LOCADORA_REQUEST_TIMEOUT", 30*time.Second),
		Redis: RedisConfig{
			URL:          os.Getenv("LOCADORA_REDIS_URL"),
			PoolSize:     envIntOr("LOCADORA_REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("LOCADORA_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDurationOr("LOCADORA_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("LOCADORA_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("LOCADORA_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Topic:        envOr("LOCADORA_AUDIT_TOPIC", "locadora.audit"),
			PollInterval: envDurationOr("LOCADORA_OUTBOX_POLL_INTERVAL", 2*time.Second),
		},
	}
	if brokers := os.Getenv("LOCADORA_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, b)
			}
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
