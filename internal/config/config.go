// Package config loads pipeline settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Browser-like User-Agent. Some sites serve bot UAs a stub page or a 403.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

type Config struct {
	// Feed settings
	FeedsConfigPath string
	PerFeedLimit    int
	TotalLimit      int

	// Dedup / diversification settings
	MaxPerDomain      int
	TitleSimThreshold int // 0-100 partial-ratio scale

	// Article extraction settings
	ArticleWorkers int
	MinArticleLen  int
	Language       string

	// HTTP settings
	UserAgent      string
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryBaseDelay time.Duration

	// Cache settings
	ArticleCacheTTL time.Duration

	// App settings
	Debug bool
}

func Load() (*Config, error) {
	cfg := &Config{
		FeedsConfigPath:   "configs/feeds.yaml",
		PerFeedLimit:      1000,
		TotalLimit:        8000,
		MaxPerDomain:      800,
		TitleSimThreshold: 92,
		ArticleWorkers:    12,
		MinArticleLen:     300,
		Language:          "ru",
		UserAgent:         DefaultUserAgent,
		RequestTimeout:    20 * time.Second,
		RetryAttempts:     3,
		RetryBaseDelay:    600 * time.Millisecond,
		ArticleCacheTTL:   2 * time.Hour,
	}

	cfg.FeedsConfigPath = getEnvOrDefault("FEEDS_CONFIG_PATH", cfg.FeedsConfigPath)
	cfg.PerFeedLimit = getEnvIntOrDefault("PER_FEED_LIMIT", cfg.PerFeedLimit)
	cfg.TotalLimit = getEnvIntOrDefault("TOTAL_LIMIT", cfg.TotalLimit)
	cfg.MaxPerDomain = getEnvIntOrDefault("MAX_PER_DOMAIN", cfg.MaxPerDomain)
	cfg.TitleSimThreshold = getEnvIntOrDefault("TITLE_SIM_THRESHOLD", cfg.TitleSimThreshold)
	cfg.ArticleWorkers = getEnvIntOrDefault("ARTICLE_WORKERS", cfg.ArticleWorkers)
	cfg.Language = getEnvOrDefault("NEWS_LANGUAGE", cfg.Language)
	cfg.UserAgent = getEnvOrDefault("HTTP_USER_AGENT", cfg.UserAgent)

	if v := os.Getenv("REQUEST_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RequestTimeout = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("RETRY_ATTEMPTS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RetryAttempts = val
		}
	}
	if v := os.Getenv("ARTICLE_CACHE_TTL_HOURS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val >= 0 {
			cfg.ArticleCacheTTL = time.Duration(val) * time.Hour
		}
	}

	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.PerFeedLimit <= 0 {
		return fmt.Errorf("PER_FEED_LIMIT must be positive, got %d", c.PerFeedLimit)
	}
	if c.TotalLimit <= 0 {
		return fmt.Errorf("TOTAL_LIMIT must be positive, got %d", c.TotalLimit)
	}
	if c.MaxPerDomain <= 0 {
		return fmt.Errorf("MAX_PER_DOMAIN must be positive, got %d", c.MaxPerDomain)
	}
	if c.TitleSimThreshold < 0 || c.TitleSimThreshold > 100 {
		return fmt.Errorf("TITLE_SIM_THRESHOLD must be within 0..100, got %d", c.TitleSimThreshold)
	}
	if c.ArticleWorkers <= 0 {
		return fmt.Errorf("ARTICLE_WORKERS must be positive, got %d", c.ArticleWorkers)
	}
	return nil
}
