// Package config provides environment configuration for the notification platform.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// Config store settings
	StoreDriver string // "file", "memory" or "redis"
	StorePath   string // file driver: path to the JSON document
	RedisURL    string // redis driver: connection URL

	// Telegram settings
	TelegramToken       string
	TelegramAPIBase     string
	TelegramPollTimeout time.Duration
	BotEnabled          bool

	// Dispatch settings
	DispatchTimeout time.Duration

	// NATS settings
	NATSURL       string
	NATSCAFile    string
	NATSCertFile  string
	NATSKeyFile   string
	NATSToken     string
	EventsEnabled bool

	// Identity settings
	JWTSecret string

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables. A .env file in the
// working directory is honored when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),

		// Store
		StoreDriver: getEnv("STORE_DRIVER", "file"),
		StorePath:   getEnv("STORE_PATH", "user_configs.json"),
		RedisURL:    getEnv("REDIS_URL", ""),

		// Telegram
		TelegramToken:       getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramAPIBase:     getEnv("TELEGRAM_API_BASE", "https://api.telegram.org"),
		TelegramPollTimeout: getDurationEnv("TELEGRAM_POLL_TIMEOUT", 30*time.Second),
		BotEnabled:          getBoolEnv("BOT_ENABLED", true),

		// Dispatch
		DispatchTimeout: getDurationEnv("DISPATCH_TIMEOUT", 10*time.Second),

		// NATS
		NATSURL:       getEnv("NATS_URL", "nats://localhost:4222"),
		NATSCAFile:    getEnv("NATS_CA_FILE", ""),
		NATSCertFile:  getEnv("NATS_CERT_FILE", ""),
		NATSKeyFile:   getEnv("NATS_KEY_FILE", ""),
		NATSToken:     getEnv("NATS_TOKEN", ""),
		EventsEnabled: getBoolEnv("EVENTS_ENABLED", false),

		// Identity
		JWTSecret: getEnv("JWT_SECRET", ""),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
