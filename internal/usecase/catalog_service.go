package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/voltlens/backend/internal/domain"
)

// Package-level compiled regex patterns for performance
var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
)

// CatalogServiceConfig holds configuration for the catalog service
type CatalogServiceConfig struct {
	CacheTTL     time.Duration
	ScanPageSize int
}

// CatalogService handles direct product lookups, comparisons, and
// pricing with caching in front of the platform API.
type CatalogService struct {
	catalog      domain.CatalogRepository
	pricing      domain.PricingClient
	cache        domain.CacheRepository
	resolver     *Resolver
	logger       *zap.Logger
	cacheTTL     time.Duration
	scanPageSize int
}

// NewCatalogService creates a catalog service with dependencies
func NewCatalogService(
	catalog domain.CatalogRepository,
	pricing domain.PricingClient,
	cache domain.CacheRepository,
	resolver *Resolver,
	config CatalogServiceConfig,
	logger *zap.Logger,
) *CatalogService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Hour
	}

	pageSize := config.ScanPageSize
	if pageSize <= 0 {
		pageSize = 500
	}

	return &CatalogService{
		catalog:      catalog,
		pricing:      pricing,
		cache:        cache,
		resolver:     resolver,
		logger:       logger,
		cacheTTL:     cacheTTL,
		scanPageSize: pageSize,
	}
}

// GetProduct fetches one record by its article number.
func (s *CatalogService) GetProduct(ctx context.Context, articleNumber string) (*domain.ProductRecord, error) {
	if strings.TrimSpace(articleNumber) == "" {
		return nil, domain.ErrInvalidRequest
	}
	return s.catalog.ExactLookup(ctx, "article_number", articleNumber)
}

// ListProducts returns one page of the catalog for browsing.
func (s *CatalogService) ListProducts(ctx context.Context, limit, offset int) ([]domain.ProductRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	var products []domain.ProductRecord
	skipped := 0
	err := s.catalog.ScanAll(ctx, s.scanPageSize, func(record domain.ProductRecord) bool {
		if skipped < offset {
			skipped++
			return true
		}
		products = append(products, record)
		return len(products) < limit
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

// CompareProducts fetches the records for a list of article numbers.
// Unknown article numbers are skipped, not errors.
func (s *CatalogService) CompareProducts(ctx context.Context, articleNumbers []string) ([]domain.ProductRecord, error) {
	if len(articleNumbers) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	var products []domain.ProductRecord
	for _, num := range articleNumbers {
		record, err := s.catalog.ExactLookup(ctx, "article_number", num)
		if err != nil {
			s.logger.Debug("compare: article number not resolved",
				zap.String("article_number", num),
				zap.Error(err),
			)
			continue
		}
		products = append(products, *record)
	}
	return products, nil
}

// GetPricing fetches price data for an article, cache first. The
// platform API is used only for prices and suppliers; everything else
// comes from the catalog.
func (s *CatalogService) GetPricing(ctx context.Context, articleNumber string) (*domain.PricingData, error) {
	if strings.TrimSpace(articleNumber) == "" {
		return nil, domain.ErrInvalidRequest
	}

	cacheKey := fmt.Sprintf("pricing:%s", normalizeForCacheKey(articleNumber))

	if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != nil {
		var data domain.PricingData
		if decodeCached(cached, &data) {
			return &data, nil
		}
	}

	data, err := s.pricing.GetPricing(ctx, articleNumber)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPricingUnavailable, err)
	}

	if err := s.cache.Set(ctx, cacheKey, data, s.cacheTTL); err != nil {
		s.logger.Debug("pricing cache write failed", zap.Error(err))
	}

	return data, nil
}

// GetSupplier fetches the default supplier for an article.
func (s *CatalogService) GetSupplier(ctx context.Context, articleNumber string) (*domain.SupplierData, error) {
	if strings.TrimSpace(articleNumber) == "" {
		return nil, domain.ErrInvalidRequest
	}

	data, err := s.pricing.GetSupplier(ctx, articleNumber)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPricingUnavailable, err)
	}
	return data, nil
}

// RecommendStorage finds storage systems sized for a PV installation.
// The query is composed from the system power and, when known, a rule
// of thumb of 1.5 days of consumption as target capacity.
func (s *CatalogService) RecommendStorage(ctx context.Context, req domain.StorageRequest) []domain.ScoredCandidate {
	queryParts := []string{"storage system", "battery storage"}

	if req.PvPowerKwp > 0 {
		queryParts = append(queryParts, fmt.Sprintf("%g kWp PV system", req.PvPowerKwp))
	}

	if req.AnnualConsumptionKwh != nil && *req.AnnualConsumptionKwh > 0 {
		recommendedKwh := *req.AnnualConsumptionKwh * 1.5 / 365
		queryParts = append(queryParts, fmt.Sprintf("%.1f kWh storage capacity", recommendedKwh))
	}

	query := strings.Join(queryParts, " ")

	storage := s.resolver.SemanticSearch(ctx, query, 10, "storage-system", 0)
	batteries := s.resolver.SemanticSearch(ctx, query, 5, "battery", 0)

	combined := append(storage, batteries...)
	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Score > combined[j].Score
	})

	if len(combined) > 10 {
		combined = combined[:10]
	}
	return combined
}

// normalizeForCacheKey normalizes a string for use as cache key component.
// Converts to lowercase, removes special characters, and trims whitespace.
func normalizeForCacheKey(s string) string {
	if s == "" {
		return ""
	}
	result := strings.ToLower(s)
	result = nonAlphanumericRegex.ReplaceAllString(result, "")
	result = multipleSpacesRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// decodeCached converts a cached value (typed or JSON map) into out.
func decodeCached(value interface{}, out interface{}) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}
