package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voltlens/backend/internal/domain"
	"github.com/voltlens/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	resolver    *usecase.Resolver
	categorizer *usecase.Categorizer
	catalog     *usecase.CatalogService
	logger      *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	resolver *usecase.Resolver,
	categorizer *usecase.Categorizer,
	catalog *usecase.CatalogService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		resolver:    resolver,
		categorizer: categorizer,
		catalog:     catalog,
		logger:      logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "voltlens-backend",
		"version": "1.0.0",
	})
}

// SearchProducts resolves a free-form query to ranked catalog products.
// smart=true (default) runs the full cascade; smart=false runs only the
// semantic vector search.
func (h *Handler) SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	limit := intQuery(c, "limit", 0)
	minScore := floatQuery(c, "min_score", 0)
	typeFilter := c.Query("type")
	smart := c.DefaultQuery("smart", "true") != "false"

	var products []domain.ScoredCandidate
	if smart {
		products = h.resolver.Resolve(c.Request.Context(), query, limit, typeFilter, minScore)
	} else {
		products = h.resolver.SemanticSearch(c.Request.Context(), query, limit, typeFilter, minScore)
	}

	if products == nil {
		products = []domain.ScoredCandidate{}
	}

	c.JSON(http.StatusOK, gin.H{
		"query":       query,
		"count":       len(products),
		"smartSearch": smart,
		"products":    products,
	})
}

// GetProduct fetches a single product by article number.
func (h *Handler) GetProduct(c *gin.Context) {
	articleNumber := c.Param("articleNumber")

	product, err := h.catalog.GetProduct(c.Request.Context(), articleNumber)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found: " + articleNumber})
			return
		}
		h.logger.Error("product lookup failed", zap.String("article_number", articleNumber), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"product": product,
	})
}

// GetProductPricing returns price and supplier data from the platform
// API. Failures degrade to empty payloads - pricing is best-effort and
// never blocks the product view.
func (h *Handler) GetProductPricing(c *gin.Context) {
	articleNumber := c.Param("articleNumber")
	ctx := c.Request.Context()

	pricing, pricingErr := h.catalog.GetPricing(ctx, articleNumber)
	supplier, supplierErr := h.catalog.GetSupplier(ctx, articleNumber)

	if pricingErr != nil || supplierErr != nil {
		h.logger.Warn("pricing lookup degraded",
			zap.String("article_number", articleNumber),
			zap.NamedError("pricing_error", pricingErr),
			zap.NamedError("supplier_error", supplierErr),
		)
	}

	resp := gin.H{
		"success":       pricingErr == nil,
		"articleNumber": articleNumber,
		"pricing":       gin.H{},
		"supplier":      gin.H{},
	}
	if pricing != nil {
		resp["pricing"] = pricing
	}
	if supplier != nil {
		resp["supplier"] = supplier
	}

	c.JSON(http.StatusOK, resp)
}

// ListProducts returns one catalog page for browsing.
func (h *Handler) ListProducts(c *gin.Context) {
	limit := intQuery(c, "limit", 10)
	offset := intQuery(c, "offset", 0)

	products, err := h.catalog.ListProducts(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("product listing failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog unavailable"})
		return
	}

	if products == nil {
		products = []domain.ProductRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(products),
		"offset":   offset,
		"products": products,
	})
}

type compareRequest struct {
	ArticleNumbers []string `json:"articleNumbers" binding:"required"`
}

// CompareProducts fetches the full records for a set of article numbers.
func (h *Handler) CompareProducts(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "articleNumbers is required"})
		return
	}

	products, err := h.catalog.CompareProducts(c.Request.Context(), req.ArticleNumbers)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if products == nil {
		products = []domain.ProductRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(products),
		"products": products,
	})
}

// CategorizeComponents assembles component recommendations for a PV
// system of the requested size.
func (h *Handler) CategorizeComponents(c *gin.Context) {
	var req domain.ComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "targetPowerKw is required"})
		return
	}

	buckets := h.categorizer.Categorize(c.Request.Context(), req)

	c.JSON(http.StatusOK, gin.H{
		"targetPowerKw": req.TargetPowerKw,
		"components":    buckets,
	})
}

// StorageRecommendation suggests storage systems for a PV installation.
func (h *Handler) StorageRecommendation(c *gin.Context) {
	var req domain.StorageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pvPowerKwp is required"})
		return
	}

	products := h.catalog.RecommendStorage(c.Request.Context(), req)
	if products == nil {
		products = []domain.ScoredCandidate{}
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(products),
		"products": products,
	})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func floatQuery(c *gin.Context, name string, fallback float64) float64 {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}
