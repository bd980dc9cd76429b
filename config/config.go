package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port  string
	DBUrl string
	// Redis Configuration (cross-instance cache tier)
	RedisURL      string
	RedisPassword string
	// Cache Configuration
	CacheTTLSeconds int // TTL for both cache tiers
	LocalCacheSize  int // max entries in the process-local tier
	// Matching Configuration
	DefaultLimit       int
	MaxLimit           int
	MinMatchScore      float64 // score cutoff on the 0-100 scale
	BoundingBoxMargin  float64 // multiplier applied to the radius before the box pre-filter
	CandidateOverfetch int     // candidates fetched per requested result slot
	// Scoring Weights
	WeightDistance float64
	WeightAge      float64
	WeightSports   float64
	WeightVerified float64
	WeightHeight   float64
	// Upstream Retry Configuration
	UpstreamRetryAttempts int
	UpstreamRetryDelayMs  int
}

func LoadConfig() (*Config, error) {
	// Load .env file (effective locally, ignored in production if absent)
	_ = godotenv.Load()

	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		DBUrl: getEnv("DATABASE_URL", ""),
		// Redis Configuration
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		// Cache Configuration (with sensible defaults)
		CacheTTLSeconds: getEnvInt("CACHE_TTL_SECONDS", 300), // 5 minute freshness window
		LocalCacheSize:  getEnvInt("LOCAL_CACHE_SIZE", 1000),
		// Matching Configuration
		DefaultLimit:       getEnvInt("MATCH_DEFAULT_LIMIT", 20),
		MaxLimit:           getEnvInt("MATCH_MAX_LIMIT", 100),
		MinMatchScore:      getEnvFloat("MIN_MATCH_SCORE", 10.0),
		BoundingBoxMargin:  getEnvFloat("BOUNDING_BOX_MARGIN", 1.0),
		CandidateOverfetch: getEnvInt("CANDIDATE_OVERFETCH", 5),
		// Scoring Weights (sum to 1.0 so the combined score lands on a 0-100 scale)
		WeightDistance: getEnvFloat("WEIGHT_DISTANCE", 0.35),
		WeightAge:      getEnvFloat("WEIGHT_AGE", 0.20),
		WeightSports:   getEnvFloat("WEIGHT_SPORTS", 0.25),
		WeightVerified: getEnvFloat("WEIGHT_VERIFIED", 0.10),
		WeightHeight:   getEnvFloat("WEIGHT_HEIGHT", 0.10),
		// Upstream Retry Configuration
		UpstreamRetryAttempts: getEnvInt("UPSTREAM_RETRY_ATTEMPTS", 3),
		UpstreamRetryDelayMs:  getEnvInt("UPSTREAM_RETRY_DELAY_MS", 100),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}

	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Cross-instance cache tier disabled; falling back to local tier only.")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvFloat returns a float environment variable or fallback if not set/invalid
func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return fallback
}
