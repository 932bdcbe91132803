package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string

	// OperatorKeyHash is the bcrypt hash of the operator key accepted by
	// the token exchange endpoint. Empty disables the endpoint.
	OperatorKeyHash string

	// LedgerPath is the CSV run ledger used when Postgres is not
	// configured. LedgerSeed optionally replays a prior ledger CSV into
	// the active store at startup so resume works across store backends.
	LedgerPath  string
	LedgerSeed  string
	PostgresDSN string

	Redis RedisConfig
	Kafka KafkaConfig

	// Campaign execution tuning.
	Workers        int
	HarnessTimeout time.Duration
	Bound          uint64
}

// RedisConfig configures the optional harness-claim coordinator.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	ClaimTTL     time.Duration
}

// KafkaConfig configures the optional ledger stream.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:            envOr("VERISEQ_ADDR", ":8080"),
		JWTSigningKey:   envOr("VERISEQ_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		OperatorKeyHash: os.Getenv("VERISEQ_OPERATOR_KEY_HASH"),
		LedgerPath:      envOr("VERISEQ_LEDGER_PATH", "verification_records.csv"),
		LedgerSeed:      os.Getenv("VERISEQ_LEDGER_SEED"),
		PostgresDSN:     os.Getenv("VERISEQ_POSTGRES_DSN"),
		Workers:         envInt("VERISEQ_WORKERS", 4),
		HarnessTimeout:  envDuration("VERISEQ_HARNESS_TIMEOUT", 10*time.Minute),
		Bound:           uint64(envInt("VERISEQ_EXPLORATION_BOUND", 1<<26)),
		Redis: RedisConfig{
			URL:          os.Getenv("VERISEQ_REDIS_URL"),
			PoolSize:     envInt("VERISEQ_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("VERISEQ_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("VERISEQ_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("VERISEQ_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("VERISEQ_REDIS_WRITE_TIMEOUT", 3*time.Second),
			ClaimTTL:     envDuration("VERISEQ_CLAIM_TTL", 30*time.Minute),
		},
		Kafka: KafkaConfig{
			Topic: envOr("VERISEQ_KAFKA_TOPIC", "veriseq.ledger"),
		},
	}
	if brokers := os.Getenv("VERISEQ_KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = splitCSV(brokers)
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

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
