package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	HTTPAddr     string
	DBDSN        string
	JWTSecret    string

	// Optional infrastructure
	RedisAddr      string
	AgendaCacheTTL time.Duration
	AMQPURL        string
	AMQPExchange   string

	// Scheduling engine tunables
	BufferMinutes     int
	SlotMinutes       int
	WorkdayStart      string // HH:MM, clinic local time
	WorkdayEnd        string // HH:MM
	WorkDays          []time.Weekday
	CancelCutoff      time.Duration
	ReminderLookAhead time.Duration
	ClinicTimezone    string
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

	// JWT secret is required for validating tokens from the identity service
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	// Redis is optional; empty disables the agenda cache.
	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.AgendaCacheTTL, err = getEnvAsDuration("AGENDA_CACHE_TTL", time.Minute)
	if err != nil {
		return nil, err
	}

	// AMQP is optional; empty disables event publishing.
	cfg.AMQPURL = getEnv("AMQP_URL", "")
	cfg.AMQPExchange = getEnv("AMQP_EXCHANGE", "clinic.bookings")

	// Engine tunables. Defaults match the clinic's standing policy.
	cfg.BufferMinutes, err = getEnvAsInt("BOOKING_BUFFER_MINUTES", 30)
	if err != nil {
		return nil, err
	}
	cfg.SlotMinutes, err = getEnvAsInt("SLOT_MINUTES", 30)
	if err != nil {
		return nil, err
	}
	if cfg.SlotMinutes <= 0 {
		return nil, fmt.Errorf("SLOT_MINUTES must be positive")
	}
	cfg.WorkdayStart = getEnv("WORKDAY_START", "08:00")
	cfg.WorkdayEnd = getEnv("WORKDAY_END", "18:00")
	cfg.WorkDays, err = parseWorkDays(getEnv("WORK_DAYS", "1,2,3,4,5"))
	if err != nil {
		return nil, err
	}
	cfg.CancelCutoff, err = getEnvAsDuration("CANCEL_CUTOFF", 2*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.ReminderLookAhead, err = getEnvAsDuration("REMINDER_LOOKAHEAD", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.ClinicTimezone = getEnv("CLINIC_TIMEZONE", "UTC")
	if _, err := time.LoadLocation(cfg.ClinicTimezone); err != nil {
		return nil, fmt.Errorf("invalid CLINIC_TIMEZONE: %w", err)
	}

	return cfg, nil
}

// parseWorkDays parses a comma-separated list of weekday numbers
// (0=Sunday ... 6=Saturday) into time.Weekday values.
func parseWorkDays(s string) ([]time.Weekday, error) {
	parts := strings.Split(s, ",")
	days := make([]time.Weekday, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 6 {
			return nil, fmt.Errorf("WORK_DAYS entry %q is not a weekday number", p)
		}
		days = append(days, time.Weekday(n))
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("WORK_DAYS must list at least one day")
	}
	return days, nil
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

// getEnvAsDuration retrieves an environment variable as a time.Duration
// (e.g. "2h", "90m"). It returns the default value if the variable is not set.
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
