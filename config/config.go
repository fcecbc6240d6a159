package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type HTTPConfig struct {
	Addr           string
	AdminJWTSecret string
}

type TrackingConfig struct {
	RPCEnabled bool
	CacheTTL   time.Duration
	Location   *time.Location
}

type CapacityConfig struct {
	Schedule      string
	WarnThreshold int
}

type Config struct {
	DSN           string
	LogsDirectory string
	LogLevel      string
	RedisURL      string
	NatsURL       string
	HTTP          *HTTPConfig
	Tracking      *TrackingConfig
	Capacity      *CapacityConfig
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	return &Config{
		DSN:           os.Getenv("DATABASE_DSN"),
		LogsDirectory: os.Getenv("LOGS_DIRECTORY"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		RedisURL:      os.Getenv("REDIS_URL"),
		NatsURL:       os.Getenv("NATS_URL"),
		HTTP: &HTTPConfig{
			Addr:           getEnv("HTTP_ADDR", ":8080"),
			AdminJWTSecret: os.Getenv("ADMIN_JWT_SECRET"),
		},
		Tracking: &TrackingConfig{
			RPCEnabled: getEnvBool("TRACKING_RPC_ENABLED", true),
			CacheTTL:   getEnvDuration("TRACKING_CACHE_TTL", time.Minute),
			Location:   getEnvLocation("TIMEZONE"),
		},
		Capacity: &CapacityConfig{
			Schedule:      getEnv("CAPACITY_SCHEDULE", "0 * * * *"),
			WarnThreshold: getEnvAsInt("CAPACITY_WARN_THRESHOLD", 900),
		},
	}
}

// Validate reports settings the service cannot start without.
func (c *Config) Validate() error {
	if c.DSN == "" {
		return errors.New("DATABASE_DSN is required")
	}
	if c.HTTP.AdminJWTSecret == "" {
		return errors.New("ADMIN_JWT_SECRET is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid integer for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Printf("Invalid boolean for %s, using default %t", key, defaultValue)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using default %s", key, defaultValue)
	}
	return defaultValue
}

func getEnvLocation(key string) *time.Location {
	name := os.Getenv(key)
	if name == "" || name == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("Unknown timezone %q, using local time", name)
		return time.Local
	}
	return loc
}
