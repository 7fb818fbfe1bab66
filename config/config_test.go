package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("VOLTLENS_SERVER_PORT")
		os.Unsetenv("VOLTLENS_SERVER_ENVIRONMENT")
		os.Unsetenv("VOLTLENS_OPENAI_API_KEY")
		os.Unsetenv("VOLTLENS_QDRANT_URL")
		os.Unsetenv("VOLTLENS_QDRANT_COLLECTION")
		os.Unsetenv("VOLTLENS_PLATFORM_BASE_URL")
		os.Unsetenv("VOLTLENS_CACHE_TYPE")
		os.Unsetenv("VOLTLENS_CACHE_REDIS_URL")
		os.Unsetenv("VOLTLENS_CACHE_TTL")
		os.Unsetenv("VOLTLENS_SEARCH_DEFAULT_LIMIT")
		os.Unsetenv("VOLTLENS_SEARCH_MIN_SEMANTIC_SCORE")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		// Set required API key
		os.Setenv("VOLTLENS_OPENAI_API_KEY", "test-key")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		// Check defaults
		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Qdrant.URL != "http://localhost:6333" {
			t.Errorf("Qdrant.URL = %s, want http://localhost:6333", cfg.Qdrant.URL)
		}
		if cfg.Qdrant.Collection != "pv_products" {
			t.Errorf("Qdrant.Collection = %s, want pv_products", cfg.Qdrant.Collection)
		}
		if cfg.OpenAI.EmbeddingModel != "text-embedding-3-large" {
			t.Errorf("OpenAI.EmbeddingModel = %s, want text-embedding-3-large", cfg.OpenAI.EmbeddingModel)
		}
		if cfg.Cache.Type != "memory" {
			t.Errorf("Cache.Type = %s, want memory", cfg.Cache.Type)
		}
		if cfg.Cache.TTL != time.Hour {
			t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
		}
		if cfg.Search.DefaultLimit != 5 {
			t.Errorf("Search.DefaultLimit = %d, want 5", cfg.Search.DefaultLimit)
		}
		if cfg.Search.MinSemanticScore != 0.3 {
			t.Errorf("Search.MinSemanticScore = %v, want 0.3", cfg.Search.MinSemanticScore)
		}
		if cfg.Search.ScanPageSize != 500 {
			t.Errorf("Search.ScanPageSize = %d, want 500", cfg.Search.ScanPageSize)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("VOLTLENS_SERVER_PORT", "9090")
		os.Setenv("VOLTLENS_SERVER_ENVIRONMENT", "production")
		os.Setenv("VOLTLENS_OPENAI_API_KEY", "custom-api-key")
		os.Setenv("VOLTLENS_QDRANT_URL", "http://qdrant.internal:6333")
		os.Setenv("VOLTLENS_QDRANT_COLLECTION", "pv_products_v2")
		os.Setenv("VOLTLENS_CACHE_TYPE", "redis")
		os.Setenv("VOLTLENS_CACHE_REDIS_URL", "redis://localhost:6379")
		os.Setenv("VOLTLENS_CACHE_TTL", "24h")
		os.Setenv("VOLTLENS_SEARCH_DEFAULT_LIMIT", "8")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.OpenAI.APIKey != "custom-api-key" {
			t.Errorf("OpenAI.APIKey = %s, want custom-api-key", cfg.OpenAI.APIKey)
		}
		if cfg.Qdrant.URL != "http://qdrant.internal:6333" {
			t.Errorf("Qdrant.URL = %s, want http://qdrant.internal:6333", cfg.Qdrant.URL)
		}
		if cfg.Qdrant.Collection != "pv_products_v2" {
			t.Errorf("Qdrant.Collection = %s, want pv_products_v2", cfg.Qdrant.Collection)
		}
		if cfg.Cache.Type != "redis" {
			t.Errorf("Cache.Type = %s, want redis", cfg.Cache.Type)
		}
		if cfg.Cache.RedisURL != "redis://localhost:6379" {
			t.Errorf("Cache.RedisURL = %s, want redis://localhost:6379", cfg.Cache.RedisURL)
		}
		if cfg.Cache.TTL != 24*time.Hour {
			t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
		}
		if cfg.Search.DefaultLimit != 8 {
			t.Errorf("Search.DefaultLimit = %d, want 8", cfg.Search.DefaultLimit)
		}
	})

	t.Run("fails validation when API key is missing", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing API key")
		}
	})

	t.Run("fails validation for invalid cache type", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("VOLTLENS_OPENAI_API_KEY", "test-key")
		os.Setenv("VOLTLENS_CACHE_TYPE", "invalid")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for invalid cache type")
		}
	})

	t.Run("fails validation when redis URL missing for redis cache", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("VOLTLENS_OPENAI_API_KEY", "test-key")
		os.Setenv("VOLTLENS_CACHE_TYPE", "redis")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing Redis URL")
		}
	})
}

func TestValidate(t *testing.T) {
	validConfig := func() *Config {
		return &Config{
			OpenAI: OpenAIConfig{APIKey: "test-key"},
			Qdrant: QdrantConfig{
				URL:        "http://localhost:6333",
				Collection: "pv_products",
			},
			Cache:  CacheConfig{Type: "memory"},
			Search: SearchConfig{DefaultLimit: 5},
		}
	}

	t.Run("validates successfully with all required fields", func(t *testing.T) {
		if err := validate(validConfig()); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("fails when API key is empty", func(t *testing.T) {
		cfg := validConfig()
		cfg.OpenAI.APIKey = ""
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for empty API key")
		}
	})

	t.Run("fails when qdrant URL is empty", func(t *testing.T) {
		cfg := validConfig()
		cfg.Qdrant.URL = ""
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for empty Qdrant URL")
		}
	})

	t.Run("fails when collection is empty", func(t *testing.T) {
		cfg := validConfig()
		cfg.Qdrant.Collection = ""
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for empty collection")
		}
	})

	t.Run("validates redis cache type with URL", func(t *testing.T) {
		cfg := validConfig()
		cfg.Cache.Type = "redis"
		cfg.Cache.RedisURL = "redis://localhost:6379"
		if err := validate(cfg); err != nil {
			t.Errorf("validate() error = %v, want nil for valid redis config", err)
		}
	})

	t.Run("fails for redis cache without URL", func(t *testing.T) {
		cfg := validConfig()
		cfg.Cache.Type = "redis"
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for redis without URL")
		}
	})

	t.Run("fails for non-positive default limit", func(t *testing.T) {
		cfg := validConfig()
		cfg.Search.DefaultLimit = 0
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for zero default limit")
		}
	})
}
