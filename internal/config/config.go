package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
)

// Config holds the API server configuration.
type Config struct {
	// API settings
	APITitle   string
	APIVersion string
	APIPrefix  string
	Port       string

	// CORS
	CORSOrigins []string

	// Request policy
	RateLimitPerMinute int
	MaxQueryChars      int

	// Retrieval pipeline
	RankingStrategy string
	TopK            int
	MaxRelated      int

	// Flat-file corpus for the /all-verses listing
	DataDir string
}

// Load reads the server configuration from the environment.
func Load() *Config {
	return &Config{
		APITitle:    getEnv("API_TITLE", "Gita Search API"),
		APIVersion:  getEnv("API_VERSION", "2.0.0"),
		APIPrefix:   getEnv("API_PREFIX", "/api"),
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: parseCORSOrigins(getEnv("CORS_ORIGINS", "http://localhost:3000,https://gitachat.org")),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		MaxQueryChars:      getEnvInt("MAX_QUERY_CHARS", 500),

		RankingStrategy: getEnv("RANKING_STRATEGY", "semantic_plus_keyword"),
		TopK:            getEnvInt("TOP_K", 8),
		MaxRelated:      getEnvInt("MAX_RELATED", 3),

		DataDir: getEnv("DATA_DIR", "data"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return i
	}
	return defaultValue
}

// parseCORSOrigins accepts either a JSON array or a comma-separated
// list of origins.
func parseCORSOrigins(value string) []string {
	var origins []string
	if err := json.Unmarshal([]byte(value), &origins); err == nil {
		return origins
	}
	parts := strings.Split(value, ",")
	origins = make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
