package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultOwnerPassword = "owner123"

// Config holds application configuration values.
type Config struct {
	HTTPPort string

	DBDriver         string
	DatabaseDSN      string
	DBMaxOpenConns   int
	DBAcquireTimeout time.Duration

	OwnerPassword string
	Secret        string
	OwnerTokenTTL time.Duration

	LogLevel string
	LogFile  string
	LokiURL  string

	RedisAddr    string
	OTLPEndpoint string
	CORSOrigins  []string

	SeedCatalog  string
	SeedFixtures bool
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	port := getEnv("HTTP_PORT", "5000")
	if _, err := strconv.Atoi(port); err != nil {
		slog.Warn("invalid HTTP_PORT value, defaulting to 5000", "value", port)
		port = "5000"
	}

	driver := getEnv("DB_DRIVER", "sqlite")
	dsn := os.Getenv("DATABASE_DSN")
	defaultConns := 1
	if driver == "pgx" {
		defaultConns = 10
		if dsn == "" {
			dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
				getEnv("DB_USER", "postgres"),
				os.Getenv("DB_PASS"),
				getEnv("DB_HOST", "localhost"),
				getEnv("DB_PORT", "5432"),
				getEnv("DB_NAME", "medicalshopsystem"),
			)
		}
	} else if dsn == "" {
		dsn = "file:medshop.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
	}

	return Config{
		HTTPPort:         port,
		DBDriver:         driver,
		DatabaseDSN:      dsn,
		DBMaxOpenConns:   getInt("DB_MAX_OPEN_CONNS", defaultConns),
		DBAcquireTimeout: getDuration("DB_ACQUIRE_TIMEOUT", 5*time.Second),
		OwnerPassword:    getEnv("OWNER_PASSWORD", defaultOwnerPassword),
		Secret:           getEnv("SECRET", "dev_secret"),
		OwnerTokenTTL:    getDuration("OWNER_TOKEN_TTL", 12*time.Hour),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFile:          os.Getenv("LOG_FILE"),
		LokiURL:          os.Getenv("LOKI_URL"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		OTLPEndpoint:     os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		CORSOrigins:      splitList(getEnv("CORS_ORIGINS", "*")),
		SeedCatalog:      os.Getenv("SEED_CATALOG"),
		SeedFixtures:     os.Getenv("SEED_FIXTURES") == "1" || os.Getenv("SEED_FIXTURES") == "true",
	}
}

// DefaultOwnerPassword reports whether the owner secret was left at its default.
func (c Config) DefaultOwnerPassword() bool {
	return c.OwnerPassword == defaultOwnerPassword
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists && val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		slog.Warn("invalid integer setting, using default", "key", key, "value", raw, "default", defaultVal)
		return defaultVal
	}
	return n
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration setting, using default", "key", key, "value", raw, "default", defaultVal)
		return defaultVal
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
