package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything the binaries read from the environment.
type Config struct {
	Env      string
	LogLevel string

	OrdersTable      string
	IdempotencyTable string
	QueueURL         string

	SessionSecret   string
	RateLimitBudget int
	RateLimitWindow time.Duration
	IdempotencyTTL  time.Duration

	PayTo    string
	Currency string

	RunLocal bool
	HTTPAddr string
}

func Load() Config {
	return Config{
		Env:      getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		OrdersTable:      getEnv("ORDERS_TABLE", "orders"),
		IdempotencyTable: getEnv("IDEMPOTENCY_TABLE", "order-idempotency"),
		QueueURL:         os.Getenv("ORDERS_QUEUE_URL"),

		SessionSecret:   os.Getenv("SESSION_SECRET"),
		RateLimitBudget: getEnvInt("RATE_LIMIT_BUDGET", 10),
		RateLimitWindow: getEnvDur("RATE_LIMIT_WINDOW", 60*time.Second),
		IdempotencyTTL:  getEnvDur("IDEMPOTENCY_TTL", 48*time.Hour),

		PayTo:    getEnv("PAY_TO", "orders@farmdirect.ca"),
		Currency: getEnv("CURRENCY", "CAD"),

		RunLocal: os.Getenv("RUN_LOCAL") == "true",
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
