package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the ungli discovery service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	AllowAnyOrigin bool

	DatabaseURL string

	CompletionMode        string
	CompletionURL         string
	CompletionAPIKey      string
	CompletionModel       string
	CompletionMaxTokens   int
	CompletionTemperature float64
	CompletionTimeout     time.Duration

	DuplicateThreshold int
	ForbiddenPhrases   []string

	PlacesAPIKey       string
	PlacesSearchPages  int
	HNSearchURL        string
	ResearchTimeout    time.Duration
	EnrichCompanyLimit int
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "ungli"),
		AllowAnyOrigin:   false,
		DatabaseURL:      stringsTrimSpace("DATABASE_URL"),
		CompletionMode:   envOrDefault("COMPLETION_MODE", "auto"),
		CompletionURL:    stringsTrimSpace("COMPLETION_URL"),
		CompletionAPIKey: stringsTrimSpace("COMPLETION_API_KEY"),
		CompletionModel:  envOrDefault("COMPLETION_MODEL", "gpt-4o"),
		// The interview wants one short question back, never a paragraph.
		CompletionMaxTokens:   30,
		CompletionTemperature: 0.1,
		CompletionTimeout:     30 * time.Second,
		DuplicateThreshold:    80,
		PlacesAPIKey:          stringsTrimSpace("PLACES_API_KEY"),
		PlacesSearchPages:     3,
		HNSearchURL:           envOrDefault("HN_SEARCH_URL", "https://hn.algolia.com/api/v1/search"),
		ResearchTimeout:       10 * time.Second,
		EnrichCompanyLimit:    3,
		ShutdownTimeout:       15 * time.Second,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.CompletionTimeout, err = durationFromEnv("COMPLETION_TIMEOUT", cfg.CompletionTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.ResearchTimeout, err = durationFromEnv("RESEARCH_TIMEOUT", cfg.ResearchTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.CompletionMaxTokens, err = intFromEnv("COMPLETION_MAX_TOKENS", cfg.CompletionMaxTokens)
	if err != nil {
		return Config{}, err
	}
	cfg.CompletionTemperature, err = floatFromEnv("COMPLETION_TEMPERATURE", cfg.CompletionTemperature)
	if err != nil {
		return Config{}, err
	}
	cfg.DuplicateThreshold, err = intFromEnv("POLICY_DUPLICATE_THRESHOLD", cfg.DuplicateThreshold)
	if err != nil {
		return Config{}, err
	}
	cfg.ForbiddenPhrases = listFromEnv("POLICY_FORBIDDEN_PHRASES")
	cfg.PlacesSearchPages, err = intFromEnv("PLACES_SEARCH_PAGES", cfg.PlacesSearchPages)
	if err != nil {
		return Config{}, err
	}
	cfg.EnrichCompanyLimit, err = intFromEnv("RESEARCH_ENRICH_LIMIT", cfg.EnrichCompanyLimit)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	if cfg.CompletionMaxTokens <= 0 {
		return Config{}, fmt.Errorf("COMPLETION_MAX_TOKENS must be positive")
	}
	if cfg.CompletionTemperature < 0 || cfg.CompletionTemperature > 2 {
		return Config{}, fmt.Errorf("COMPLETION_TEMPERATURE must be within [0,2]")
	}
	if cfg.CompletionTimeout <= 0 {
		return Config{}, fmt.Errorf("COMPLETION_TIMEOUT must be positive")
	}
	if cfg.DuplicateThreshold < 0 || cfg.DuplicateThreshold > 100 {
		return Config{}, fmt.Errorf("POLICY_DUPLICATE_THRESHOLD must be within [0,100]")
	}
	if cfg.PlacesSearchPages <= 0 {
		return Config{}, fmt.Errorf("PLACES_SEARCH_PAGES must be positive")
	}
	if cfg.EnrichCompanyLimit < 0 {
		return Config{}, fmt.Errorf("RESEARCH_ENRICH_LIMIT must be >= 0")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func listFromEnv(key string) []string {
	raw := stringsTrimSpace(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
