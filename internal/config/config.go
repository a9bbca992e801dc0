package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Hosted platform (entity CRUD, auth, files, LLM invocation).
	PlatformBaseURL  string
	PlatformAppID    string
	PlatformAPIKey   string
	PlatformTimeout  time.Duration
	PlatformRetryMax int

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// LLM geocoding configuration.
	GeocoderEnabled  bool
	LLMAPIKey        string
	LLMBaseURL       string
	LLMModel         string
	GeocodeTimeout   time.Duration
	GeocodeCacheSize int

	// Optional Kafka observation-event stream.
	EventsEnabled bool
	KafkaBrokers  []string
	KafkaTopic    string

	NotifyPollInterval time.Duration

	// CSV importer.
	ImportBatchSize  int
	ImportBatchDelay time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	platformTimeout, err := parseDuration("PLATFORM_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	retryMax, err := parsePositiveInt("PLATFORM_RETRY_MAX", 3)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	geocodeTimeout, err := parseDuration("GEOCODE_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cacheSize, err := parsePositiveInt("GEOCODE_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}
	pollInterval, err := parseDuration("NOTIFY_POLL_INTERVAL", "30s")
	if err != nil {
		return nil, err
	}
	batchSize, err := parsePositiveInt("IMPORT_BATCH_SIZE", 5)
	if err != nil {
		return nil, err
	}
	batchDelay, err := parseDuration("IMPORT_BATCH_DELAY", "500ms")
	if err != nil {
		return nil, err
	}

	llmAPIKey := os.Getenv("LLM_API_KEY")
	geocoderEnabled := llmAPIKey != ""
	if v := os.Getenv("GEOCODER_ENABLED"); v != "" {
		geocoderEnabled = v == "true"
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))

	cfg := &Config{
		PlatformBaseURL:  envOrDefault("PLATFORM_BASE_URL", "https://app.base44.com/api"),
		PlatformAppID:    os.Getenv("PLATFORM_APP_ID"),
		PlatformAPIKey:   os.Getenv("PLATFORM_API_KEY"),
		PlatformTimeout:  platformTimeout,
		PlatformRetryMax: retryMax,

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		GeocoderEnabled:  geocoderEnabled,
		LLMAPIKey:        llmAPIKey,
		LLMBaseURL:       os.Getenv("LLM_BASE_URL"),
		LLMModel:         envOrDefault("LLM_MODEL", "gpt-4o-mini"),
		GeocodeTimeout:   geocodeTimeout,
		GeocodeCacheSize: cacheSize,

		EventsEnabled: len(brokers) > 0,
		KafkaBrokers:  brokers,
		KafkaTopic:    envOrDefault("KAFKA_TOPIC", "observation-events"),

		NotifyPollInterval: pollInterval,

		ImportBatchSize:  batchSize,
		ImportBatchDelay: batchDelay,
	}

	if cfg.PlatformAppID == "" {
		return nil, errors.New("PLATFORM_APP_ID is required")
	}
	if cfg.PlatformAPIKey == "" {
		return nil, errors.New("PLATFORM_API_KEY is required")
	}
	if cfg.GeocoderEnabled && cfg.LLMAPIKey == "" {
		return nil, errors.New("GEOCODER_ENABLED is true but LLM_API_KEY is not set")
	}

	return cfg, nil
}

// envOrDefault returns the value of key, or fallback when unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseDuration reads key as a positive duration, falling back when unset.
func parseDuration(key, fallback string) (time.Duration, error) {
	s := envOrDefault(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

// parsePositiveInt reads key as a positive integer, falling back when unset.
func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

// parseBrokers splits a comma-separated broker list, dropping empties.
func parseBrokers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
