package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backend selectors.
const (
	StoreFile  = "file"
	StoreRedis = "redis"
)

// Config contains runtime configuration values.
type Config struct {
	Environment       string
	APIBaseURL        string
	HTTPTimeout       time.Duration
	StoreBackend      string
	StorePath         string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	RateLimitRPS      int
	ServiceName       string
	TelemetryEndpoint string
	TelemetryInsecure bool
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment:       getEnv("WALLET_ENV", "development"),
		APIBaseURL:        strings.TrimSuffix(getEnv("WALLET_API_URL", "http://127.0.0.1:5000/api"), "/"),
		HTTPTimeout:       getDuration("WALLET_HTTP_TIMEOUT", 30*time.Second),
		StoreBackend:      getEnv("WALLET_STORE", StoreFile),
		StorePath:         os.Getenv("WALLET_STORE_PATH"),
		RedisAddr:         getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getInt("REDIS_DB", 0),
		RateLimitRPS:      getInt("WALLET_RATE_LIMIT_RPS", 0),
		ServiceName:       getEnv("SERVICE_NAME", "almaleek-wallet"),
		TelemetryEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		TelemetryInsecure: getBool("OTEL_EXPORTER_OTLP_INSECURE", true),
	}

	if cfg.APIBaseURL == "" {
		return Config{}, fmt.Errorf("WALLET_API_URL is required")
	}

	switch cfg.StoreBackend {
	case StoreFile, StoreRedis:
	default:
		return Config{}, fmt.Errorf("WALLET_STORE must be %q or %q", StoreFile, StoreRedis)
	}

	if cfg.StorePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home dir: %w", err)
		}
		cfg.StorePath = filepath.Join(home, ".almaleek", "credentials.json")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(v) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}
