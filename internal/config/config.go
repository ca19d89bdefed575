// Package config reads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

type Config struct {
	Port              string
	Env               string
	DBDriver          string
	DatabaseURL       string
	DBLogLevel        string
	CORSOrigins       string
	RedisAddr         string
	ProductCacheTTL   time.Duration
	KafkaBrokers      []string
	KafkaTopic        string
	LowStockThreshold int
}

func Load() Config {
	return Config{
		Port:              getenv("PORT", "4000"),
		Env:               strings.ToLower(getenv("APP_ENV", EnvDevelopment)),
		DBDriver:          strings.ToLower(getenv("DB_DRIVER", "postgres")),
		DatabaseURL:       databaseURL(),
		DBLogLevel:        getenv("DB_LOG_LEVEL", "warn"),
		CORSOrigins:       getenv("CORS_ORIGINS", "*"),
		RedisAddr:         getenv("REDIS_ADDR", ""),
		ProductCacheTTL:   durenv("PRODUCT_CACHE_TTL", 5*time.Minute),
		KafkaBrokers:      splitCSV(getenv("KAFKA_BROKERS", "")),
		KafkaTopic:        getenv("KAFKA_TOPIC", "shoeroom.events"),
		LowStockThreshold: atoienv("LOW_STOCK_THRESHOLD", 5),
	}
}

// Transactional reports whether invoice creation runs inside a real store
// transaction. The test environment uses compensating rollback instead.
func (c Config) Transactional() bool {
	return c.Env != EnvTest
}

func (c Config) Production() bool {
	return c.Env == EnvProduction
}

func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		getenv("DB_HOST", "localhost"),
		getenv("DB_USER", "postgres"),
		os.Getenv("DB_PASSWORD"),
		getenv("DB_NAME", "shoeroom"),
		getenv("DB_PORT", "5432"),
	)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoienv(k string, def int) int {
	n, err := strconv.Atoi(getenv(k, ""))
	if err != nil {
		return def
	}
	return n
}

func durenv(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(getenv(k, ""))
	if err != nil {
		return def
	}
	return d
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
