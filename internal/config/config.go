// Package config loads adforge settings from an optional .env file and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"adforge/internal/domain/entity"

	"github.com/joho/godotenv"
)

const (
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type Config struct {
	// Server settings
	Port       string
	Env        string
	AppVersion string
	LogMode    string

	// Gemini: Vertex AI when a project is set, otherwise the Gemini API key.
	GoogleProject  string
	GoogleLocation string
	GeminiAPIKey   string

	// Generation defaults
	Generation entity.GenerationParams

	// OpenAI-compatible backend, routed by model prefix
	OpenAIAPIKey  string
	OpenAIBaseURL string

	// Campaign history
	StoreBackend string
	RedisAddr    string
	RedisPrefix  string
	PostgresDSN  string

	// Similarity index, disabled without a host
	QdrantHost       string
	QdrantPort       int
	QdrantCollection string
	EmbeddingModel   string
	EmbeddingDim     uint64

	// Auth settings
	JWTSecret  string
	AuthIssuer string
}

// Load reads envFile when it exists, then the environment. A missing file is
// not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		Port:       getEnv("PORT", "8080"),
		Env:        getEnv("ENV", "development"),
		AppVersion: getEnv("APP_VERSION", "dev"),
		LogMode:    getEnv("LOG_MODE", "dev"),

		GoogleProject:  getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleLocation: getEnv("GOOGLE_CLOUD_LOCATION", "us-central1"),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),

		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", StoreRedis)),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPrefix:  getEnv("REDIS_PREFIX", "adforge"),
		PostgresDSN:  getEnv("POSTGRES_DSN", ""),

		QdrantHost:       getEnv("QDRANT_HOST", ""),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "adforge_campaigns"),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "text-embedding-004"),

		JWTSecret:  getEnv("AUTH_JWT_SECRET", ""),
		AuthIssuer: getEnv("AUTH_ISSUER", ""),
	}

	var err error
	if cfg.QdrantPort, err = getEnvInt("QDRANT_PORT", 6334); err != nil {
		return nil, err
	}
	dim, err := getEnvInt("EMBEDDING_DIM", 768)
	if err != nil {
		return nil, err
	}
	cfg.EmbeddingDim = uint64(dim)

	cfg.Generation.ModelID = getEnv("MODEL_ID", "gemini-2.5-flash")
	temp, err := getEnvFloat("TEMPERATURE", 0.7)
	if err != nil {
		return nil, err
	}
	topP, err := getEnvFloat("TOP_P", 0.95)
	if err != nil {
		return nil, err
	}
	maxTokens, err := getEnvInt("MAX_OUTPUT_TOKENS", 8192)
	if err != nil {
		return nil, err
	}
	cfg.Generation.Temperature = float32(temp)
	cfg.Generation.TopP = float32(topP)
	cfg.Generation.MaxOutputTokens = int32(maxTokens)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := c.Generation.Validate(); err != nil {
		return fmt.Errorf("generation settings: %w", err)
	}
	switch c.StoreBackend {
	case StoreRedis:
	case StorePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("STORE_BACKEND=postgres requires POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.EmbeddingDim == 0 {
		return fmt.Errorf("EMBEDDING_DIM must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

func (c *Config) SimilarityEnabled() bool {
	return c.QdrantHost != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return f, nil
}
