package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type AppConfig struct {
	OpenWeatherAPIKey string
	NPSAPIKey         string

	OpenWeatherBaseURL string
	NPSBaseURL         string

	// UpstreamTimeout bounds every outbound provider call.
	UpstreamTimeout time.Duration

	StoreDriver     string
	DatabaseURL     string
	RedisURL        string
	StoreMaxHistory int // memory driver only (0 = unlimited)

	// SnapshotStates are built once a day at SnapshotAt (UTC, "HH:MM").
	SnapshotStates []string
	SnapshotAt     string

	Port     string
	LogLevel log.Level
}

// Load reads configuration from .env and the environment with sensible defaults.
// Missing API keys are not an error here; they are reported on the calls that need them.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Infof("no .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = strings.TrimSpace(os.Getenv("OPENWEATHER_API_KEY"))
	cfg.NPSAPIKey = strings.TrimSpace(os.Getenv("NPS_API_KEY"))

	cfg.OpenWeatherBaseURL = strings.TrimRight(getenvDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org"), "/")
	cfg.NPSBaseURL = strings.TrimRight(getenvDefault("NPS_BASE_URL", "https://developer.nps.gov"), "/")

	timeout, err := time.ParseDuration(getenvDefault("UPSTREAM_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid UPSTREAM_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("invalid UPSTREAM_TIMEOUT: must be positive, got %s", timeout)
	}
	cfg.UpstreamTimeout = timeout

	cfg.StoreDriver = strings.ToLower(getenvDefault("STORE_DRIVER", DriverSQLite))
	switch cfg.StoreDriver {
	case DriverMemory, DriverSQLite, DriverPostgres, DriverRedis:
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q", cfg.StoreDriver)
	}
	cfg.DatabaseURL = getenvDefault("DATABASE_URL", "data/statewise.db")
	cfg.RedisURL = getenvDefault("REDIS_URL", "redis://localhost:6379/0")
	maxHistory, err := getenvInt("STORE_MAX_HISTORY", 0)
	if err != nil {
		return nil, err
	}
	if maxHistory < 0 {
		return nil, fmt.Errorf("invalid STORE_MAX_HISTORY: must not be negative, got %d", maxHistory)
	}
	cfg.StoreMaxHistory = maxHistory

	cfg.SnapshotStates = splitList(os.Getenv("SNAPSHOT_STATES"))
	cfg.SnapshotAt = getenvDefault("SNAPSHOT_AT", "06:00")
	if _, err := time.Parse("15:04", cfg.SnapshotAt); err != nil {
		return nil, fmt.Errorf("invalid SNAPSHOT_AT: %w", err)
	}

	cfg.Port = getenvDefault("PORT", "8080")

	level, err := log.ParseLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	return cfg, nil
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

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
