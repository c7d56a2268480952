// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Default map viewport, centered on campus.
const (
	DefaultCenterLat = 36.632473
	DefaultCenterLon = 127.453143
	DefaultMapLevel  = 4
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	APIBaseURL string `env:"CAMPUSMAP_API_URL,required"`
	StatePath  string `env:"CAMPUSMAP_STATE_PATH" envDefault:"./data/campusmap.db"`
	UploadsDir string `env:"CAMPUSMAP_UPLOADS_DIR" envDefault:"./uploads"`
	Language   string `env:"CAMPUSMAP_LANGUAGE" envDefault:"ko"`
	LogLevel   string `env:"CAMPUSMAP_LOG_LEVEL" envDefault:"info"`
	Env        string `env:"CAMPUSMAP_ENV" envDefault:"development"`

	// Refresh configuration. The backend has no push channel, so event
	// state changed elsewhere is only observed by re-fetching.
	PollSchedule string `env:"CAMPUSMAP_POLL_SCHEDULE" envDefault:"*/2 * * * *"`

	// Gateway rate limiting (requests per second, burst).
	RequestRate  float64 `env:"CAMPUSMAP_REQUEST_RATE" envDefault:"5"`
	RequestBurst int     `env:"CAMPUSMAP_REQUEST_BURST" envDefault:"10"`

	// Cache configuration
	RedisURL    string `env:"CAMPUSMAP_REDIS_URL"`                      // Optional Redis URL for a shared translation cache
	CachePrefix string `env:"CAMPUSMAP_CACHE_PREFIX" envDefault:"cmap:"` // Redis key prefix
	CacheTTL    int    `env:"CAMPUSMAP_CACHE_TTL" envDefault:"86400"`   // Translation cache TTL in seconds

	// Campus assistant configuration
	AssistantProvider string `env:"CAMPUSMAP_ASSISTANT_PROVIDER" envDefault:"ollama"` // "ollama" or "openai"
	AssistantURL      string `env:"CAMPUSMAP_ASSISTANT_URL" envDefault:"http://localhost:11434"`
	AssistantModel    string `env:"CAMPUSMAP_ASSISTANT_MODEL" envDefault:"llama3.1:8b"`
	AssistantAPIKey   string `env:"CAMPUSMAP_ASSISTANT_API_KEY"`

	// Map viewport
	CenterLat float64 `env:"CAMPUSMAP_CENTER_LAT" envDefault:"36.632473"`
	CenterLon float64 `env:"CAMPUSMAP_CENTER_LON" envDefault:"127.453143"`
	MapLevel  int     `env:"CAMPUSMAP_MAP_LEVEL" envDefault:"4"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// AssistantEnabled returns true if the campus assistant is configured.
func (c Config) AssistantEnabled() bool {
	return c.AssistantURL != "" && c.AssistantModel != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("CAMPUSMAP_API_URL must be an absolute URL, got %q", cfg.APIBaseURL)
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	if cfg.RequestRate <= 0 {
		return nil, fmt.Errorf("CAMPUSMAP_REQUEST_RATE must be positive, got %v", cfg.RequestRate)
	}
	if cfg.RequestBurst < 1 {
		cfg.RequestBurst = 1
	}

	return cfg, nil
}
