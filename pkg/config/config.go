package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration. It is constructed once at
// process start and passed into constructors; core logic never reads the
// environment directly.
type Config struct {
	Environment        string
	ServerPort         int
	LogLevel           string
	CORSAllowedOrigins []string

	// JWTSecret signs all issued tokens. Required outside development.
	JWTSecret string
	TokenTTL  time.Duration

	BcryptCost int

	Database Database
	RedisURL string // empty disables the redis platform cache

	StatsIntervalMinutes int
}

// Database holds postgres connection settings.
type Database struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	dbPort, err := intEnv("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	ttlHours, err := intEnv("TOKEN_TTL_HOURS", 168) // 7 days
	if err != nil {
		return nil, err
	}
	bcryptCost, err := intEnv("BCRYPT_COST", 10)
	if err != nil {
		return nil, err
	}
	statsInterval, err := intEnv("STATS_INTERVAL_MINUTES", 1)
	if err != nil {
		return nil, err
	}

	environment := getEnv("ENVIRONMENT", "development")
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if environment != "development" {
			return nil, fmt.Errorf("JWT_SECRET is required outside development")
		}
		secret = "dev-secret-change-me"
	}

	return &Config{
		Environment: environment,
		ServerPort:  port,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
			"http://localhost:4173",
		}),
		JWTSecret:  secret,
		TokenTTL:   time.Duration(ttlHours) * time.Hour,
		BcryptCost: bcryptCost,
		Database: Database{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "tgooauth"),
			Password: getEnv("DB_PASSWORD", "dev"),
			Name:     getEnv("DB_NAME", "tgooauth"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		RedisURL:             os.Getenv("REDIS_URL"),
		StatsIntervalMinutes: statsInterval,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intEnv(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
