package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every tunable of the service. It is loaded once at startup
// and threaded into constructors; nothing reads the environment after that.
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis Config
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Push gateway Config
	PushGatewayURL    string        `env:"PUSH_GATEWAY_URL"`
	PushGatewaySecret string        `env:"PUSH_GATEWAY_SECRET"`
	PushTimeout       time.Duration `env:"PUSH_TIMEOUT" envDefault:"5s"`

	// Dispatch Config
	DispatchWorkers     int           `env:"DISPATCH_WORKERS" envDefault:"8"`
	GlobalRiskThreshold float64       `env:"GLOBAL_RISK_THRESHOLD" envDefault:"0.60"`
	RedispatchCooldown  time.Duration `env:"REDISPATCH_COOLDOWN" envDefault:"0"`

	// API Keys for authentication
	APIKeys []string `env:"API_KEYS"`
}

// LoadConfig reads configuration from the environment and an optional .env file.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:           os.Getenv("REDIS_PASSWORD"),
		RedisDB:             getEnvAsInt("REDIS_DB", 0),
		PushGatewayURL:      os.Getenv("PUSH_GATEWAY_URL"),
		PushGatewaySecret:   os.Getenv("PUSH_GATEWAY_SECRET"),
		PushTimeout:         getEnvAsDuration("PUSH_TIMEOUT", 5*time.Second),
		DispatchWorkers:     getEnvAsInt("DISPATCH_WORKERS", 8),
		GlobalRiskThreshold: getEnvAsFloat("GLOBAL_RISK_THRESHOLD", 0.60),
		RedispatchCooldown:  getEnvAsDuration("REDISPATCH_COOLDOWN", 0),
	}

	apiKeysStr := os.Getenv("API_KEYS")
	if apiKeysStr != "" {
		cfg.APIKeys = strings.Split(apiKeysStr, ",")
		for i, key := range cfg.APIKeys {
			cfg.APIKeys[i] = strings.TrimSpace(key)
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.DispatchWorkers < 1 {
		cfg.DispatchWorkers = 1
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt returns an environment variable parsed as int, or a default.
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat returns an environment variable parsed as float64, or a default.
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsDuration returns an environment variable parsed as time.Duration, or a default.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
