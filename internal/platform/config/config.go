package config

import (
	"os"
	"strings"
	"time"
)

// Config captures everything main needs to wire the service. Values come from
// the environment so deployments differ by env vars only; the verification
// base URL and sender address are injected here rather than hard-coded in the
// email composer.
type Config struct {
	Addr string

	// VerifyBaseURL is the public prefix for email confirmation links, e.g.
	// https://trade.example.com/verify-email. The token is appended as a path
	// segment.
	VerifyBaseURL string

	JWTSigningKey string
	JWTIssuer     string

	// JWTTTL bounds session token lifetime.
	JWTTTL time.Duration

	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	SMTP     SMTPConfig
}

// PostgresConfig carries the DSN shared by the database/sql and pgx pools.
// Empty DSN means in-memory stores (dev and tests).
type PostgresConfig struct {
	DSN string
}

// RedisConfig configures the optional Redis-backed token store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit event publisher. Empty brokers disable it.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// SMTPConfig configures outbound verification mail. Empty host means emails
// are logged instead of sent.
type SMTPConfig struct {
	Host       string
	Port       string
	Username   string
	Password   string
	From       string
	SenderName string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Addr:          getenv("TRADEGATE_ADDR", ":8080"),
		VerifyBaseURL: getenv("TRADEGATE_VERIFY_BASE_URL", "http://localhost:8080/verify-email"),
		JWTSigningKey: getenv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:     getenv("JWT_ISSUER", "tradegate"),
		JWTTTL:        getdur("TRADEGATE_JWT_TTL", 12*time.Hour),
		Postgres: PostgresConfig{
			DSN: os.Getenv("TRADEGATE_POSTGRES_DSN"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("TRADEGATE_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Topic: getenv("TRADEGATE_AUDIT_TOPIC", "tradegate.audit"),
		},
		SMTP: SMTPConfig{
			Host:       os.Getenv("SMTP_HOST"),
			Port:       getenv("SMTP_PORT", "587"),
			Username:   os.Getenv("SMTP_USERNAME"),
			Password:   os.Getenv("SMTP_PASSWORD"),
			From:       getenv("SMTP_FROM", "no-reply@easyinternationaltrade.com"),
			SenderName: getenv("SMTP_FROM_NAME", "EasyInternationalTrade"),
		},
	}

	if brokers := os.Getenv("TRADEGATE_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, b)
			}
		}
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getdur(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
