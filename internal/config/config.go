package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

// Booking store backends.
const (
	BookingStorePostgres = "postgres"
	BookingStoreMemory   = "memory"
)

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction      bool
	ProdOrigins       string
	HTTPAddr          string
	DBDSN             string
	DBMaxConns        int
	MigrateOnStart    bool
	LogLevel          string
	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	GatewaySecret     string
	BookingStore      string
	RateLimitRPS      int
	RateLimitBurst    int
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	return fromEnv()
}

func fromEnv() (*Config, error) {
	var err error
	cfg := &Config{}

	// Production origin (default: empty)
	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")

	// Application environment (default: dev)
	appEnvStr := getEnv("APP_ENV", "dev")
	cfg.IsProduction = appEnvStr == PROD_STRING

	// HTTP listen address (default: :8080)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	// Database DSN is required
	cfg.DBDSN = os.Getenv("DB_DSN")
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	cfg.DBMaxConns, err = getEnvAsInt("DB_MAX_CONNS", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	cfg.MigrateOnStart, err = getEnvAsBool("MIGRATE_ON_START", true)
	if err != nil {
		return nil, fmt.Errorf("invalid MIGRATE_ON_START: %w", err)
	}

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	// JWT secret is optional; without it identity comes from the X-Sharer-User-Id header
	cfg.JWTSecret = os.Getenv("JWT_SECRET")

	// JWT access token TTL, parse as time.Duration (e.g. "15m", "1h").
	ttlStr := getEnv("JWT_ACCESS_TOKEN_TTL", "15m")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TOKEN_TTL: %w", err)
	}
	cfg.JWTAccessTokenTTL = ttl

	// Shared with the gateway; required to issue tokens in JWT mode
	cfg.GatewaySecret = os.Getenv("GATEWAY_SECRET")

	cfg.BookingStore = getEnv("BOOKING_STORE", BookingStorePostgres)
	switch cfg.BookingStore {
	case BookingStorePostgres, BookingStoreMemory:
	default:
		return nil, fmt.Errorf("invalid BOOKING_STORE %q: want %s or %s", cfg.BookingStore, BookingStorePostgres, BookingStoreMemory)
	}

	cfg.RateLimitRPS, err = getEnvAsInt("RATE_LIMIT_RPS", 100)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}
	cfg.RateLimitBurst, err = getEnvAsInt("RATE_LIMIT_BURST", 200)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}

// getEnvAsBool is getEnvAsInt for strconv.ParseBool values.
func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(valStr)
	if err != nil {
		return false, fmt.Errorf("env %s value %q is not a valid bool: %w", key, valStr, err)
	}

	return val, nil
}
