package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	ServiceName string
	Version     string

	// Outbound fetches
	UserAgent           string
	SitemapFetchTimeout time.Duration
	PageFetchTimeout    time.Duration
	MaxFetchBytes       int64

	// Request handling
	MaxRequestBytes int64
	DefaultMaxURLs  int
	MaxInFlight     int
	MaxBacklog      int
	BacklogTimeout  time.Duration

	// Upstream latency stats
	StatsWindow time.Duration
}

func Load() Config {
	cfg := Config{
		Port:        envOr("PORT", "8000"),
		ServiceName: envOr("SERVICE_NAME", "schema-api"),
		Version:     "1.0.0",

		UserAgent:           envOr("USER_AGENT", "Schema-API-Full/1.0.0"),
		SitemapFetchTimeout: envDuration("SITEMAP_FETCH_TIMEOUT", 30*time.Second),
		PageFetchTimeout:    envDuration("PAGE_FETCH_TIMEOUT", 15*time.Second),
		MaxFetchBytes:       envInt64("MAX_FETCH_BYTES", 52428800), // 50MB

		MaxRequestBytes: envInt64("MAX_REQUEST_BYTES", 1048576),
		DefaultMaxURLs:  envInt("DEFAULT_MAX_URLS", 100),
		MaxInFlight:     envInt("MAX_IN_FLIGHT", 256),
		MaxBacklog:      envInt("MAX_BACKLOG", 1024),
		BacklogTimeout:  envDuration("BACKLOG_TIMEOUT", 30*time.Second),

		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),
	}

	if cfg.SitemapFetchTimeout <= 0 {
		cfg.SitemapFetchTimeout = 30 * time.Second
	}
	if cfg.PageFetchTimeout <= 0 {
		cfg.PageFetchTimeout = 15 * time.Second
	}
	if cfg.MaxFetchBytes <= 0 {
		cfg.MaxFetchBytes = 52428800
	}
	if cfg.MaxRequestBytes <= 0 {
		cfg.MaxRequestBytes = 1048576
	}
	if cfg.DefaultMaxURLs < 0 {
		cfg.DefaultMaxURLs = 100
	}
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 256
	}
	if cfg.MaxBacklog < 0 {
		cfg.MaxBacklog = 1024
	}
	if cfg.BacklogTimeout <= 0 {
		cfg.BacklogTimeout = 30 * time.Second
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric: %q", c.Port)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("USER_AGENT must not be empty")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
