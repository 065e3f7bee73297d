package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go-pos-billing/pkg/validator"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Cart storage backends
const (
	CartBackendDB    = "db"
	CartBackendRedis = "redis"
)

type Config struct {
	AppName string
	Port    string

	// Database
	DBDriver    string // postgres | sqlite
	DatabaseURL string
	SQLitePath  string
	Migrations  bool
	Seed        bool

	// Cart sessions
	JWTSecret    string
	CartTokenTTL time.Duration
	CartBackend  string
	CartTTL      time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers []string
	KafkaTopic   string

	// Billing
	AutoDiscountThreshold decimal.Decimal
	AutoDiscountPercent   decimal.Decimal
	LowStockThreshold     decimal.Decimal
	ShopName              string

	LogLevel  string
	LogPretty bool
}

// Load reads .env (when present) and then the process environment.
// Explicit env vars win over .env entries, both win over defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on system env")
	}

	cfg := Config{
		AppName:       getEnv("APP_NAME", "POS Billing v1.0"),
		Port:          getEnv("PORT", "3000"),
		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SQLitePath:    getEnv("SQLITE_PATH", "pos.db"),
		Migrations:    getBool("MIGRATIONS", false),
		Seed:          getBool("DB_SEED", false),
		JWTSecret:     getEnv("JWT_SECRET", "change-me-cart-session-secret"),
		CartTokenTTL:  getDuration("CART_TOKEN_TTL", 24*time.Hour),
		CartBackend:   strings.ToLower(getEnv("CART_BACKEND", CartBackendDB)),
		CartTTL:       getDuration("CART_TTL", 24*time.Hour),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),
		KafkaBrokers:  splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "pos.events"),
		ShopName:      getEnv("SHOP_NAME", "Grocery Store"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogPretty:     getBool("LOG_PRETTY", false),
	}

	// automatic discount tier is off unless both values are configured
	cfg.AutoDiscountThreshold = getDecimal("AUTO_DISCOUNT_THRESHOLD", decimal.Zero)
	cfg.AutoDiscountPercent = getDecimal("AUTO_DISCOUNT_PERCENT", decimal.Zero)
	cfg.LowStockThreshold = getDecimal("LOW_STOCK_THRESHOLD", decimal.NewFromInt(10))

	if cfg.DatabaseURL == "" && cfg.DBDriver == "postgres" {
		cfg.DatabaseURL = "host=" + getEnv("DB_HOST", "localhost") +
			" user=" + getEnv("DB_USER", "postgres") +
			" password=" + os.Getenv("DB_PASSWORD") +
			" dbname=" + getEnv("DB_NAME", "pos") +
			" port=" + getEnv("DB_PORT", "5432") +
			" sslmode=disable"
	}
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "yes", "y", "on":
		return true
	case "no", "n", "off":
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid boolean, using default")
		return def
	}
	return b
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid integer, using default")
		return def
	}
	return n
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid duration, using default")
		return def
	}
	return d
}

func getDecimal(key string, def decimal.Decimal) decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := validator.ParseDecimal(v)
	if err != nil || d.IsNegative() {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid decimal, using default")
		return def
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
