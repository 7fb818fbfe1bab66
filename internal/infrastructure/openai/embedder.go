package openai

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

const defaultMaxInputChars = 8000

// Embedder turns free text into embedding vectors via the OpenAI API.
type Embedder struct {
	httpClient    *http.Client
	apiKey        string
	baseURL       string
	model         string
	maxInputChars int
	rateLimiter   *rate.Limiter
	logger        *zap.Logger
}

// NewEmbedder creates an embedding client
func NewEmbedder(apiKey, baseURL, model string, maxInputChars int, requestsPerSecond float64, logger *zap.Logger) *Embedder {
	if maxInputChars <= 0 {
		maxInputChars = defaultMaxInputChars
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}

	return &Embedder{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:        apiKey,
		baseURL:       baseURL,
		model:         model,
		maxInputChars: maxInputChars,
		rateLimiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), 5),
		logger:        logger,
	}
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the embedding vector for text. Input beyond the
// configured character cap is truncated to stay under the provider's
// token limit.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, domain.ErrInvalidQuery
	}

	if err := e.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	payload, err := json.Marshal(embeddingRequest{
		Model: e.model,
		Input: truncateRunes(text, e.maxInputChars),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/v1/embeddings", e.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		e.logger.Warn("embedding request rejected",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return nil, fmt.Errorf("%w: status %d", domain.ErrEmbeddingFailure, resp.StatusCode)
	}

	var embResp embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrEmbeddingFailure, err)
	}

	if len(embResp.Data) == 0 || len(embResp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding in response", domain.ErrEmbeddingFailure)
	}

	return embResp.Data[0].Embedding, nil
}

// truncateRunes cuts s to at most max runes, never splitting a rune.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
