// Package config reads run settings from the environment and an optional
// .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Parser ParserConfig
	Server ServerConfig
	Logger LoggerConfig
}

type ParserConfig struct {
	// Password is used when no password flag or form field is given.
	Password    string
	Workers     int
	Cardholders []string
}

type ServerConfig struct {
	Port          string
	CacheTTL      time.Duration
	MaxUploadSize int
	RateLimit     float64
}

type LoggerConfig struct {
	Level string
}

// Load reads .env from the working directory if present, then the
// environment. Malformed numbers are reported rather than defaulted.
func Load() (*Config, error) {
	// .env is optional; plain environment variables work on their own.
	_ = godotenv.Load()

	workers, err := getInt("PARSER_WORKERS", 0)
	if err != nil {
		return nil, err
	}
	ttl, err := getInt("CACHE_TTL", 30)
	if err != nil {
		return nil, err
	}
	maxUpload, err := getInt("MAX_UPLOAD_MB", 32)
	if err != nil {
		return nil, err
	}
	rateLimit, err := strconv.ParseFloat(getEnv("API_RATE_LIMIT", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("API_RATE_LIMIT: %w", err)
	}

	return &Config{
		Parser: ParserConfig{
			Password:    getEnv("STATEMENT_PASSWORD", ""),
			Workers:     workers,
			Cardholders: splitList(getEnv("CARDHOLDERS", "")),
		},
		Server: ServerConfig{
			Port:          getEnv("SERVER_PORT", "8080"),
			CacheTTL:      time.Duration(ttl) * time.Minute,
			MaxUploadSize: maxUpload << 20,
			RateLimit:     rateLimit,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
