package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Env                string
	Port               string
	CORSAllowedOrigins []string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// JWT
	JWTSecret string

	// Currency
	CanonicalCurrency   string
	ExchangeRateAPIKey  string
	ExchangeRateBaseURL string
	RateAPITimeout      time.Duration
	CurrencyListTTL     time.Duration

	// Redis (empty address disables the shared currency cache)
	RedisAddress  string
	RedisPassword string

	// AMQP (empty URL disables event publishing)
	AMQPURL      string
	AMQPExchange string

	// Knowledge service
	WolframAppID   string
	WolframBaseURL string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "pennywise"),
		DBPassword: getEnv("DB_PASSWORD", "pennywise"),
		DBName:     getEnv("DB_NAME", "pennywise"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "pennywise.db"),

		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		CanonicalCurrency:   strings.ToUpper(getEnv("CANONICAL_CURRENCY", "USD")),
		ExchangeRateAPIKey:  getEnv("EXCHANGE_RATE_API_KEY", ""),
		ExchangeRateBaseURL: getEnv("EXCHANGE_RATE_BASE_URL", "https://v6.exchangerate-api.com/v6"),
		RateAPITimeout:      getDuration("RATE_API_TIMEOUT", 5*time.Second),
		CurrencyListTTL:     getDuration("CURRENCY_LIST_TTL", 24*time.Hour),

		RedisAddress:  getEnv("REDIS_ADDRESS", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "pennywise.events"),

		WolframAppID:   getEnv("WOLFRAM_APP_ID", ""),
		WolframBaseURL: getEnv("WOLFRAM_BASE_URL", "http://api.wolframalpha.com/v2/query"),
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// PostgresURL returns the golang-migrate style connection URL.
func (c *Config) PostgresURL() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration parses a duration variable, falling back to defaultValue on a bad value.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

// splitList splits a comma-separated value, dropping empty entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
