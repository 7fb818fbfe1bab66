package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/voltlens/backend/internal/domain"
)

// Client fetches price and supplier data from the merchandise platform
// API. It is deliberately narrow: prices, discounts, bill-of-materials
// prices, and the default supplier - all other product data lives in
// the catalog index.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

// NewClient creates a platform API client
func NewClient(baseURL, apiKey string, requestsPerSecond float64, logger *zap.Logger) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 10
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:     baseURL,
		apiKey:      apiKey,
		rateLimiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 5),
		logger:      logger,
	}
}

// articleResponse is the platform's article payload, already unwrapped
// from the {"data": ...} envelope.
type articleResponse struct {
	Pricing struct {
		PurchaseNet   *float64 `json:"purchase_net"`
		PurchaseGross *float64 `json:"purchase_gross"`
		Raw           *float64 `json:"raw"`
		Shop          *float64 `json:"shop"`
	} `json:"pricing"`
}

type offerResponse struct {
	IsOffer     bool    `json:"is_offer"`
	DiscountPct float64 `json:"discount_percent"`
}

type supplierResponse struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

type bomResponse struct {
	Components []struct {
		ArticleNumber string `json:"article_number"`
		Amount        int    `json:"amount"`
	} `json:"components"`
}

// GetPricing returns the price subset for one article, including the
// prices of its bill-of-materials components when it is a kit. A
// missing offer endpoint is not an error.
func (c *Client) GetPricing(ctx context.Context, articleNumber string) (*domain.PricingData, error) {
	var article articleResponse
	if err := c.get(ctx, fmt.Sprintf("/api/articles/%s", articleNumber), &article); err != nil {
		return nil, err
	}

	data := &domain.PricingData{
		PurchaseNet:   article.Pricing.PurchaseNet,
		PurchaseGross: article.Pricing.PurchaseGross,
		SalesNet:      article.Pricing.Raw,
		SalesGross:    article.Pricing.Shop,
		VatRatePct:    19,
	}

	var offer offerResponse
	if err := c.get(ctx, fmt.Sprintf("/api/articles/%s/offer", articleNumber), &offer); err == nil && offer.IsOffer {
		data.OnOffer = true
		data.DiscountPct = offer.DiscountPct
	}

	data.BOMPrices = c.bomPrices(ctx, articleNumber)
	return data, nil
}

// GetSupplier returns the default supplier for one article.
func (c *Client) GetSupplier(ctx context.Context, articleNumber string) (*domain.SupplierData, error) {
	var supplier supplierResponse
	if err := c.get(ctx, fmt.Sprintf("/api/supplier/%s", articleNumber), &supplier); err != nil {
		return nil, err
	}

	return &domain.SupplierData{
		Name:           supplier.Name,
		SupplierNumber: supplier.Number,
	}, nil
}

// bomPrices fetches component prices for a kit. Failures degrade to an
// empty list since pricing is best-effort.
func (c *Client) bomPrices(ctx context.Context, articleNumber string) []domain.BOMPrice {
	var bom bomResponse
	if err := c.get(ctx, fmt.Sprintf("/api/bom/%s", articleNumber), &bom); err != nil {
		return nil
	}

	var prices []domain.BOMPrice
	for _, component := range bom.Components {
		if component.ArticleNumber == "" {
			continue
		}

		var article articleResponse
		if err := c.get(ctx, fmt.Sprintf("/api/articles/%s", component.ArticleNumber), &article); err != nil {
			c.logger.Debug("bom component pricing unavailable",
				zap.String("article_number", component.ArticleNumber),
				zap.Error(err),
			)
			continue
		}

		quantity := component.Amount
		if quantity == 0 {
			quantity = 1
		}
		prices = append(prices, domain.BOMPrice{
			ArticleNumber: component.ArticleNumber,
			Quantity:      quantity,
			PurchaseNet:   article.Pricing.PurchaseNet,
			SalesNet:      article.Pricing.Raw,
		})
	}
	return prices
}

// get executes one GET with retries, unwrapping the {"data": ...}
// envelope the platform wraps most responses in.
func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	reqURL := c.baseURL + endpoint

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("X-API-Key", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", domain.ErrPricingUnavailable, err)
			c.logger.Warn("platform request failed",
				zap.String("endpoint", endpoint),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			time.Sleep(time.Duration(attempt*500) * time.Millisecond)
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return domain.ErrProductNotFound
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("%w: status %d", domain.ErrPricingUnavailable, resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return lastErr
			}
			time.Sleep(time.Duration(attempt*500) * time.Millisecond)
			continue
		}

		return decodeEnvelope(body, out)
	}

	return lastErr
}

// decodeEnvelope decodes body into out, looking through the optional
// {"data": ...} wrapper first.
func decodeEnvelope(body []byte, out interface{}) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 {
		body = envelope.Data
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
