package domain

import (
	"context"
	"time"
)

// CatalogRepository is the narrow read interface over the vector index.
// The index is populated by an external ingestion process; this side
// only reads.
type CatalogRepository interface {
	// ExactLookup returns the first record whose payload field equals value,
	// or ErrProductNotFound.
	ExactLookup(ctx context.Context, field, value string) (*ProductRecord, error)

	// ScanAll streams every record in pages of pageSize. fn returning false
	// stops the scan early. The scan is restartable and finite.
	ScanAll(ctx context.Context, pageSize int, fn func(ProductRecord) bool) error

	// SimilaritySearch runs a vector query, optionally filtered by product
	// type, dropping hits below minScore. Results are ordered by similarity.
	SimilaritySearch(ctx context.Context, vector []float32, limit int, typeFilter string, minScore float64) ([]ScoredCandidate, error)
}

// Embedder turns free text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// PricingClient fetches price and supplier data from the platform API.
// Everything else about a product comes from the catalog.
type PricingClient interface {
	GetPricing(ctx context.Context, articleNumber string) (*PricingData, error)
	GetSupplier(ctx context.Context, articleNumber string) (*SupplierData, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
