package qdrant

import (
	"bytes"
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

// Client talks to the Qdrant REST API. It only reads: scroll for exact
// and full-scan access, points/query for similarity search. The
// collection is populated by a separate ingestion process.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	collection  string
	apiKey      string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

// NewClient creates a Qdrant client for one collection
func NewClient(baseURL, collection, apiKey string, requestsPerSecond float64, logger *zap.Logger) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 50
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:     baseURL,
		collection:  collection,
		apiKey:      apiKey,
		rateLimiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 10),
		logger:      logger,
	}
}

// fieldFilter is the Qdrant must/match filter for one payload field.
type fieldFilter struct {
	Must []fieldCondition `json:"must"`
}

type fieldCondition struct {
	Key   string     `json:"key"`
	Match matchValue `json:"match"`
}

type matchValue struct {
	Value string `json:"value"`
}

type scrollRequest struct {
	Filter      *fieldFilter `json:"filter,omitempty"`
	Limit       int          `json:"limit"`
	Offset      interface{}  `json:"offset,omitempty"`
	WithPayload bool         `json:"with_payload"`
}

type scrollResponse struct {
	Result struct {
		Points         []point     `json:"points"`
		NextPageOffset interface{} `json:"next_page_offset"`
	} `json:"result"`
}

type queryRequest struct {
	Query          []float32    `json:"query"`
	Filter         *fieldFilter `json:"filter,omitempty"`
	Limit          int          `json:"limit"`
	ScoreThreshold float64      `json:"score_threshold,omitempty"`
	WithPayload    bool         `json:"with_payload"`
}

type queryResponse struct {
	Result struct {
		Points []point `json:"points"`
	} `json:"result"`
}

type point struct {
	ID      interface{}            `json:"id"`
	Score   float64                `json:"score"`
	Payload map[string]interface{} `json:"payload"`
}

func typeFilterFor(productType string) *fieldFilter {
	if productType == "" {
		return nil
	}
	return &fieldFilter{
		Must: []fieldCondition{
			{Key: "product_type", Match: matchValue{Value: productType}},
		},
	}
}

// ExactLookup returns the first record whose payload field equals value.
func (c *Client) ExactLookup(ctx context.Context, field, value string) (*domain.ProductRecord, error) {
	req := scrollRequest{
		Filter: &fieldFilter{
			Must: []fieldCondition{
				{Key: field, Match: matchValue{Value: value}},
			},
		},
		Limit:       1,
		WithPayload: true,
	}

	var resp scrollResponse
	if err := c.post(ctx, "/points/scroll", req, &resp); err != nil {
		return nil, err
	}

	if len(resp.Result.Points) == 0 {
		return nil, domain.ErrProductNotFound
	}

	record := mapPoint(resp.Result.Points[0])
	return &record, nil
}

// ScanAll streams the whole collection in pages via scroll offsets so
// large catalogs are never held in memory at once.
func (c *Client) ScanAll(ctx context.Context, pageSize int, fn func(domain.ProductRecord) bool) error {
	if pageSize <= 0 {
		pageSize = 500
	}

	var offset interface{}
	for {
		req := scrollRequest{
			Limit:       pageSize,
			Offset:      offset,
			WithPayload: true,
		}

		var resp scrollResponse
		if err := c.post(ctx, "/points/scroll", req, &resp); err != nil {
			return err
		}

		for _, p := range resp.Result.Points {
			if !fn(mapPoint(p)) {
				return nil
			}
		}

		if resp.Result.NextPageOffset == nil {
			return nil
		}
		offset = resp.Result.NextPageOffset
	}
}

// SimilaritySearch runs a vector query against the collection.
func (c *Client) SimilaritySearch(ctx context.Context, vector []float32, limit int, typeFilter string, minScore float64) ([]domain.ScoredCandidate, error) {
	req := queryRequest{
		Query:          vector,
		Filter:         typeFilterFor(typeFilter),
		Limit:          limit,
		ScoreThreshold: minScore,
		WithPayload:    true,
	}

	var resp queryResponse
	if err := c.post(ctx, "/points/query", req, &resp); err != nil {
		return nil, err
	}

	candidates := make([]domain.ScoredCandidate, 0, len(resp.Result.Points))
	for _, p := range resp.Result.Points {
		candidates = append(candidates, domain.ScoredCandidate{
			ProductRecord: mapPoint(p),
			Score:         p.Score,
			MatchKind:     domain.MatchSemantic,
		})
	}
	return candidates, nil
}

// post executes one collection-scoped request with retries for
// transient failures. 4xx responses are not retried.
func (c *Client) post(ctx context.Context, endpoint string, body, out interface{}) error {
	reqURL := fmt.Sprintf("%s/collections/%s%s", c.baseURL, c.collection, endpoint)

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("api-key", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
			c.logger.Warn("qdrant request failed",
				zap.String("endpoint", endpoint),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			sleepBackoff(ctx, attempt)
			continue
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("%w: status %d", domain.ErrCatalogUnavailable, resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return lastErr
			}
			c.logger.Warn("qdrant returned error status",
				zap.String("endpoint", endpoint),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt),
			)
			sleepBackoff(ctx, attempt)
			continue
		}

		decoder := json.NewDecoder(bytes.NewReader(respBody))
		decoder.UseNumber()
		if err := decoder.Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	return lastErr
}

func sleepBackoff(ctx context.Context, attempt int) {
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(attempt*500) * time.Millisecond):
	}
}
