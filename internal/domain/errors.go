package domain

import "errors"

var (
	// ErrProductNotFound is returned when no catalog record matches the lookup
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrCatalogUnavailable is returned when the vector index cannot be reached
	ErrCatalogUnavailable = errors.New("catalog backend unavailable")

	// ErrEmbeddingFailure is returned when the embedding provider fails or
	// returns a malformed response
	ErrEmbeddingFailure = errors.New("embedding request failed")

	// ErrInvalidQuery is returned for empty or sub-minimum-length queries
	ErrInvalidQuery = errors.New("query is empty or too short")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrPricingUnavailable is returned when the platform API request fails
	ErrPricingUnavailable = errors.New("platform pricing request failed")
)
