package config

import (
	"os"
	"strconv"
	"time"
)

// Application settings
type Config struct {
	Server  ServerConfig
	Logging LoggingConfig
	Scan    ScanConfig
	Apify   ApifyConfig
	Gemini  GeminiConfig
}

// Server settings
type ServerConfig struct {
	Port string
}

// Scan pipeline settings
type ScanConfig struct {
	ResultsLimit       int
	AnalysisTopN       int
	ImageFetchTimeout  time.Duration
	RequestTimeout     time.Duration
	RateLimitPerSecond int
}

// Acquisition collaborator settings
type ApifyConfig struct {
	Token        string
	ActorID      string
	BaseURL      string
	PollInterval time.Duration
	MaxPolls     int
}

// Inference collaborator settings
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Logging settings
type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Scan: ScanConfig{
			ResultsLimit:       getIntEnv("RESULTS_LIMIT", 50),
			AnalysisTopN:       getIntEnv("ANALYSIS_TOP_N", 5),
			ImageFetchTimeout:  getDurationEnv("IMAGE_FETCH_TIMEOUT", "30s"),
			RequestTimeout:     getDurationEnv("REQUEST_TIMEOUT", "30s"),
			RateLimitPerSecond: getIntEnv("RATE_LIMIT_PER_SECOND", 100),
		},
		Apify: ApifyConfig{
			Token:        getEnv("APIFY_TOKEN", ""),
			ActorID:      getEnv("APIFY_ACTOR_ID", "apify~facebook-ads-scraper"),
			BaseURL:      getEnv("APIFY_BASE_URL", "https://api.apify.com"),
			PollInterval: getDurationEnv("APIFY_POLL_INTERVAL", "3s"),
			MaxPolls:     getIntEnv("APIFY_MAX_POLLS", 100),
		},
		Gemini: GeminiConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			BaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
