// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration for the discovery service.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string

	// Model endpoint. When either is empty the worker still runs, but every
	// analysis fails fast with a configuration error.
	AnalyzerEndpoint string
	AnalyzerAPIKey   string
	AnalyzerMaxTok   int
	AnalyzerTemp     float64

	// Defaults applied to portals listed in WORKDAY_PORTAL_URLS (the fallback
	// used when the portal_configs table has no active rows).
	PortalURLs          []string
	SearchText          string
	CountryID           string
	LocationHierarchyID string
	TodayOnly           bool

	ScanIntervalHours int // how often the cron job fires
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	interval := 6
	if s := os.Getenv("SCAN_INTERVAL_HOURS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("SCAN_INTERVAL_HOURS must be a positive integer, got %q", s)
		}
		interval = v
	}

	maxTok := 0
	if s := os.Getenv("AI_MAX_TOKENS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("AI_MAX_TOKENS must be a positive integer, got %q", s)
		}
		maxTok = v
	}

	temp := 0.0
	if s := os.Getenv("AI_TEMPERATURE"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("AI_TEMPERATURE must be a non-negative number, got %q", s)
		}
		temp = v
	}

	port := os.Getenv("DISCOVERY_PORT")
	if port == "" {
		port = "8081"
	}

	return &Config{
		Port:                port,
		DatabaseURL:         dbURL,
		RedisURL:            redisURL,
		AnalyzerEndpoint:    os.Getenv("AI_ENDPOINT"),
		AnalyzerAPIKey:      os.Getenv("AI_API_KEY"),
		AnalyzerMaxTok:      maxTok,
		AnalyzerTemp:        temp,
		PortalURLs:          splitList(os.Getenv("WORKDAY_PORTAL_URLS")),
		SearchText:          os.Getenv("WORKDAY_SEARCH_TEXT"),
		CountryID:           os.Getenv("WORKDAY_COUNTRY_ID"),
		LocationHierarchyID: os.Getenv("WORKDAY_LOCATION_HIERARCHY_ID"),
		TodayOnly:           os.Getenv("WORKDAY_TODAY_ONLY") == "true",
		ScanIntervalHours:   interval,
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
