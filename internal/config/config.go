package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/q8810247/air-quality-insights/internal/city"
)

var validate = validator.New()

// CollectorConfig holds everything the capture daemon needs. Cities always
// carry coordinates by the time Load returns.
type CollectorConfig struct {
	APIKey string `validate:"required"`

	// Cities to capture, in fixed run order.
	Cities []city.City `validate:"required,min=1"`

	// Interval controls how often a capture run starts.
	Interval time.Duration

	HTTPTimeout time.Duration

	// OutputCSV is rewritten from scratch on every run.
	OutputCSV string `validate:"required"`

	// CaptureZone is the fixed offset snapshot timestamps are rendered in.
	CaptureZone *time.Location `validate:"required"`

	Port     string
	AppEnv   string
	LogLevel slog.Level
}

// ReporterConfig holds the reporter's environment-sourced settings; run
// parameters come from flags instead.
type ReporterConfig struct {
	// DatabaseURL may be empty when the run reads from a snapshot file.
	DatabaseURL string

	// Cities provides the id-to-name lookup for merged rows.
	Cities []city.City `validate:"required,min=1"`

	CaptureZone *time.Location `validate:"required"`

	AppEnv   string
	LogLevel slog.Level
}

// LoadCollector reads collector configuration from the environment with
// defaults matching the production deployment.
func LoadCollector() (*CollectorConfig, error) {
	loadDotenv()

	cfg := &CollectorConfig{
		APIKey:   os.Getenv("OPENWEATHER_API_KEY"),
		Port:     getenvDefault("PORT", "8080"),
		AppEnv:   getenvDefault("APP_ENV", "dev"),
		LogLevel: parseLevel(getenvDefault("LOG_LEVEL", "info")),
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENWEATHER_API_KEY is not set")
	}

	intervalStr := getenvDefault("COLLECT_INTERVAL", "1h")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid COLLECT_INTERVAL: %w", err)
	}
	cfg.Interval = interval

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.OutputCSV = getenvDefault("OUTPUT_CSV", "weather_air_quality.csv")
	cfg.CaptureZone = captureZone()

	cities, err := city.Parse(os.Getenv("CITIES"))
	if err != nil {
		return nil, fmt.Errorf("invalid CITIES: %w", err)
	}
	if err := city.Resolve(cities, os.Getenv("GEOCODER_API_KEY")); err != nil {
		return nil, err
	}
	cfg.Cities = cities

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid collector config: %w", err)
	}
	return cfg, nil
}

// LoadReporter reads reporter configuration from the environment.
func LoadReporter() (*ReporterConfig, error) {
	loadDotenv()

	cfg := &ReporterConfig{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		AppEnv:      getenvDefault("APP_ENV", "dev"),
		LogLevel:    parseLevel(getenvDefault("LOG_LEVEL", "info")),
		CaptureZone: captureZone(),
	}

	cities, err := city.Parse(os.Getenv("CITIES"))
	if err != nil {
		return nil, fmt.Errorf("invalid CITIES: %w", err)
	}
	cfg.Cities = cities

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid reporter config: %w", err)
	}
	return cfg, nil
}

func loadDotenv() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
}

// captureZone builds the fixed-offset zone snapshot timestamps use.
// The deployment region sits at UTC+7.
func captureZone() *time.Location {
	offset := getenvInt("CAPTURE_TZ_OFFSET_HOURS", 7)
	name := fmt.Sprintf("UTC%+d", offset)
	return time.FixedZone(name, offset*3600)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
