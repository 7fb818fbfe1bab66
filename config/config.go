package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Qdrant    QdrantConfig
	OpenAI    OpenAIConfig
	Platform  PlatformConfig
	Cache     CacheConfig
	Search    SearchConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// QdrantConfig holds vector index configuration
type QdrantConfig struct {
	URL        string `mapstructure:"url"`
	Collection string `mapstructure:"collection"`
	APIKey     string `mapstructure:"api_key"`
}

// OpenAIConfig holds embedding provider configuration
type OpenAIConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	MaxInputChars  int    `mapstructure:"max_input_chars"`
}

// PlatformConfig holds the pricing/supplier API configuration
type PlatformConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// SearchConfig holds resolution tuning parameters
type SearchConfig struct {
	DefaultLimit     int     `mapstructure:"default_limit"`
	MinSemanticScore float64 `mapstructure:"min_semantic_score"`
	ScanPageSize     int     `mapstructure:"scan_page_size"`
}

// RateLimitConfig holds outbound request budgets (requests per second)
type RateLimitConfig struct {
	Qdrant   float64 `mapstructure:"qdrant"`
	OpenAI   float64 `mapstructure:"openai"`
	Platform float64 `mapstructure:"platform"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/voltlens/")

	// Environment variable settings: nested keys map to underscored
	// variables, e.g. openai.api_key -> VOLTLENS_OPENAI_API_KEY.
	v.SetEnvPrefix("VOLTLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Qdrant defaults
	v.SetDefault("qdrant.url", "http://localhost:6333")
	v.SetDefault("qdrant.collection", "pv_products")

	// OpenAI defaults
	v.SetDefault("openai.base_url", "https://api.openai.com")
	v.SetDefault("openai.embedding_model", "text-embedding-3-large")
	v.SetDefault("openai.max_input_chars", 8000)

	// Platform API defaults
	v.SetDefault("platform.base_url", "http://localhost:5555")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "1h")

	// Search defaults
	v.SetDefault("search.default_limit", 5)
	v.SetDefault("search.min_semantic_score", 0.3)
	v.SetDefault("search.scan_page_size", 500)

	// Outbound rate limits (req/s)
	v.SetDefault("ratelimit.qdrant", 50)
	v.SetDefault("ratelimit.openai", 5)
	v.SetDefault("ratelimit.platform", 10)

	// Logging defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.OpenAI.APIKey == "" {
		return fmt.Errorf("OpenAI API key is required (set VOLTLENS_OPENAI_API_KEY)")
	}

	if config.Qdrant.URL == "" {
		return fmt.Errorf("Qdrant URL is required (set VOLTLENS_QDRANT_URL)")
	}

	if config.Qdrant.Collection == "" {
		return fmt.Errorf("Qdrant collection name is required")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Search.DefaultLimit <= 0 {
		return fmt.Errorf("search default limit must be positive, got: %d", config.Search.DefaultLimit)
	}

	return nil
}
