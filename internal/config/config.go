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

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction      bool
	ProdOrigins       string
	HTTPAddr          string
	DBDSN             string
	MigrationsDir     string
	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	BcryptCost        int

	// LogDir enables file logging with rotation when non-empty.
	LogDir string

	// RedisAddr enables the asynq event dispatcher when non-empty.
	RedisAddr     string
	RedisPassword string

	Booking BookingPolicy
}

// BookingPolicy carries the scheduling policy knobs for the reservation core.
type BookingPolicy struct {
	// LeadTime is the minimum gap between request time and booking start.
	LeadTime time.Duration
	// MaxAdvance is how far into the future a booking may start.
	MaxAdvance time.Duration
	// Buffer pads existing bookings on both sides when checking conflicts.
	Buffer time.Duration
	// CancelCutoff is the minimum gap between cancellation and booking start.
	CancelCutoff time.Duration
	// AutoConfirm skips manual provider approval: bookings are created confirmed.
	AutoConfirm bool
	// CompletionSweepInterval is how often confirmed bookings past their end
	// time are swept to completed. Zero disables the sweeper.
	CompletionSweepInterval time.Duration
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

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

	// Goose migrations directory (default: migrations)
	cfg.MigrationsDir = getEnv("MIGRATIONS_DIR", "migrations")

	// JWT secret is required for signing tokens
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	// JWT access token TTL, parse as time.Duration (e.g. "15m", "1h").
	cfg.JWTAccessTokenTTL, err = getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}

	// Bcrypt cost for password hashing (default: 12)
	cfg.BcryptCost, err = getEnvAsInt("BCRYPT_COST", 12)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	cfg.LogDir = getEnv("LOG_DIR", "")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")

	// Booking policy knobs. Defaults are deliberately conservative and should
	// be confirmed against product requirements.
	if cfg.Booking.LeadTime, err = getEnvAsDuration("BOOKING_LEAD_TIME", 2*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Booking.MaxAdvance, err = getEnvAsDuration("BOOKING_MAX_ADVANCE", 90*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Booking.Buffer, err = getEnvAsDuration("BOOKING_BUFFER", 0); err != nil {
		return nil, err
	}
	if cfg.Booking.CancelCutoff, err = getEnvAsDuration("CANCELLATION_CUTOFF", 24*time.Hour); err != nil {
		return nil, err
	}
	cfg.Booking.AutoConfirm = getEnv("AUTO_CONFIRM", "false") == "true"
	if cfg.Booking.CompletionSweepInterval, err = getEnvAsDuration("COMPLETION_SWEEP_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
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
		// Return 0 and a wrapped error to provide context
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}

// getEnvAsDuration retrieves an environment variable as a time.Duration
// (e.g. "30m", "48h"). It returns the default value if the variable is unset.
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid duration: %w", key, valStr, err)
	}

	return val, nil
}
