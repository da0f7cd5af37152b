package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// OpenAI API
	OpenAIAPIKey  string
	OpenAIBaseURL string

	// External call timeouts
	AnalysisTimeout   time.Duration
	GenerationTimeout time.Duration

	// Pipeline
	MaxConcurrentGenerations int
	// KeepGeneratedFiles controls whether earlier generated previews for
	// the same upload survive a regeneration.
	KeepGeneratedFiles bool

	// Storage
	UploadDir string

	// Database
	DatabaseURL string

	// Wizard sessions
	SessionTTL time.Duration

	// Admin API (orders listing / status updates). Auth is disabled
	// when the secret is empty.
	AdminJWTSecret string

	// Server
	Port           string
	Environment    string
	AllowedOrigins []string
}

func Load() (*Config, error) {
	cfg := &Config{
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_API_BASE_URL", "https://api.openai.com/v1"),

		AnalysisTimeout:   time.Duration(getEnvInt("ANALYSIS_TIMEOUT_SECONDS", 60)) * time.Second,
		GenerationTimeout: time.Duration(getEnvInt("GENERATION_TIMEOUT_SECONDS", 120)) * time.Second,

		MaxConcurrentGenerations: getEnvInt("MAX_CONCURRENT_GENERATIONS", 4),
		KeepGeneratedFiles:       getEnvBool("KEEP_GENERATED_FILES", true),

		UploadDir: getEnv("UPLOAD_DIR", "uploads"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		SessionTTL: time.Duration(getEnvInt("SESSION_TTL_MINUTES", 60)) * time.Minute,

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if origins := getEnv("ALLOWED_ORIGINS", ""); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.UploadDir == "" {
		return fmt.Errorf("UPLOAD_DIR must not be empty")
	}
	if c.MaxConcurrentGenerations < 1 {
		c.MaxConcurrentGenerations = 1
	}
	if c.AnalysisTimeout <= 0 {
		c.AnalysisTimeout = 60 * time.Second
	}
	if c.GenerationTimeout <= 0 {
		c.GenerationTimeout = 120 * time.Second
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = time.Hour
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
