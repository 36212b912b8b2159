// ABOUTME: Configuration loader for the booking client
// ABOUTME: Loads settings from .env and environment variables with defaults

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/nandasurya23/resource-booking-cli/internal/booking"
	"github.com/nandasurya23/resource-booking-cli/internal/session"
)

const (
	DefaultAPIURL  = "http://localhost:8080"
	DefaultTimeout = 10 * time.Second

	catalogFileName = "resources.yaml"
)

type Config struct {
	// Backend
	APIURL    string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables throttling
	RateBurst int

	// Local state
	ConfigDir     string
	ResourcesFile string // explicit catalog path; empty means look in ConfigDir

	// Wall-clock input and display zone
	Location *time.Location

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads .env (if present) and the environment
func Load() (*Config, error) {
	// A missing .env is normal
	_ = godotenv.Load()

	cfg := &Config{
		APIURL:    ensureScheme(strings.TrimRight(getEnv("BOOKING_API_URL", DefaultAPIURL), "/")),
		RateLimit: getEnvFloat("BOOKING_RATE_LIMIT", 0),
		RateBurst: getEnvInt("BOOKING_RATE_BURST", 1),

		ConfigDir:     getEnv("BOOKING_CONFIG_DIR", session.DefaultDir()),
		ResourcesFile: os.Getenv("BOOKING_RESOURCES_FILE"),

		LogLevel:  getEnv("LOG_LEVEL", "warn"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	timeout, err := getEnvDuration("BOOKING_TIMEOUT", DefaultTimeout)
	if err != nil {
		return nil, err
	}
	cfg.Timeout = timeout

	loc, err := loadLocation(os.Getenv("BOOKING_TIMEZONE"))
	if err != nil {
		return nil, err
	}
	cfg.Location = loc

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("BOOKING_TIMEOUT must be positive, got %s", cfg.Timeout)
	}
	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("BOOKING_RATE_LIMIT must not be negative, got %g", cfg.RateLimit)
	}
	if cfg.RateBurst < 1 {
		return nil, fmt.Errorf("BOOKING_RATE_BURST must be at least 1, got %d", cfg.RateBurst)
	}

	return cfg, nil
}

// Catalog loads the resource catalog. An explicit file must exist; the
// config-dir file is optional and the built-in catalog is the fallback.
func (c *Config) Catalog() (booking.Catalog, error) {
	if c.ResourcesFile != "" {
		return booking.LoadCatalog(c.ResourcesFile)
	}
	if c.ConfigDir == "" {
		return booking.DefaultCatalog(), nil
	}

	cat, err := booking.LoadCatalog(filepath.Join(c.ConfigDir, catalogFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return booking.DefaultCatalog(), nil
	}
	return cat, err
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid BOOKING_TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("15s") or a bare number of seconds
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d, nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return 0, fmt.Errorf("invalid %s %q: want a duration like 15s or a number of seconds", key, value)
}

// ensureScheme adds http:// prefix if the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "http://" + url
	}
	return url
}
