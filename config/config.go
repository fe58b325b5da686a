package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	DatabaseURL    string
	ServerPort     string
	JWTSecret      string
	JWTExpiration  time.Duration
	RequestTimeout time.Duration

	// House rules. The mobile client never deducts cash on purchase and styles
	// negative balances, so the defaults match that behavior; both are
	// overridable per game.
	AllowNegativeCash  bool
	PurchaseDebitsCash bool

	TeamCount    int
	StartingCash decimal.Decimal

	BankerUsername string
	BankerPassword string
}

func Load() *Config {
	// Optional .env for local development; real deployments set the
	// environment directly.
	if err := godotenv.Load(); err == nil {
		log.Info("Loaded environment from .env")
	}

	return &Config{
		DatabaseURL:        getEnv("DATABASE_URL", "postgresql://postgres@localhost:5432/gamebank"),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		JWTSecret:          getEnv("JWT_SECRET", "your-super-secret-key-change-in-production"),
		JWTExpiration:      getDuration("JWT_EXPIRATION", 24*time.Hour),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 10*time.Second),
		AllowNegativeCash:  getBool("ALLOW_NEGATIVE_CASH", true),
		PurchaseDebitsCash: getBool("PURCHASE_DEBITS_CASH", false),
		TeamCount:          getInt("TEAM_COUNT", 8),
		StartingCash:       getDecimal("STARTING_CASH", decimal.NewFromInt(1500)),
		BankerUsername:     getEnv("BANKER_USERNAME", "banker"),
		BankerPassword:     getEnv("BANKER_PASSWORD", "banker"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Warnf("Invalid %s value %q, using default", key, value)
		return defaultValue
	}
	return parsed
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Warnf("Invalid %s value %q, using default", key, value)
		return defaultValue
	}
	return parsed
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Warnf("Invalid %s value %q, using default", key, value)
		return defaultValue
	}
	return parsed
}

func getDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		log.Warnf("Invalid %s value %q, using default", key, value)
		return defaultValue
	}
	return parsed
}
