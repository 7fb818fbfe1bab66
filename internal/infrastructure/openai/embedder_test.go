package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voltlens/backend/internal/domain"
)

func newTestEmbedder(serverURL string) *Embedder {
	return NewEmbedder("test-api-key", serverURL, "text-embedding-3-large", 0, 1000, zap.NewNop())
}

func TestEmbed_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "text-embedding-3-large", req.Model)
		assert.Equal(t, "deye hybrid 8kw", req.Input)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"embedding": []float32{0.1, 0.2, 0.3}},
			},
		})
	}))
	defer server.Close()

	embedder := newTestEmbedder(server.URL)
	vector, err := embedder.Embed(context.Background(), "deye hybrid 8kw")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vector)
}

func TestEmbed_EmptyText(t *testing.T) {
	embedder := newTestEmbedder("http://unused")
	_, err := embedder.Embed(context.Background(), "")

	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
}

func TestEmbed_TruncatesLongInput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, []rune(req.Input), 8000)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"embedding": []float32{0.1}},
			},
		})
	}))
	defer server.Close()

	embedder := newTestEmbedder(server.URL)
	_, err := embedder.Embed(context.Background(), strings.Repeat("a", 10000))

	require.NoError(t, err)
}

func TestEmbed_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	embedder := newTestEmbedder(server.URL)
	_, err := embedder.Embed(context.Background(), "query")

	assert.ErrorIs(t, err, domain.ErrEmbeddingFailure)
}

func TestEmbed_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{},
		})
	}))
	defer server.Close()

	embedder := newTestEmbedder(server.URL)
	_, err := embedder.Embed(context.Background(), "query")

	assert.ErrorIs(t, err, domain.ErrEmbeddingFailure)
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"short string untouched", "hello", 10, "hello"},
		{"exact length untouched", "hello", 5, "hello"},
		{"ascii truncated", "hello world", 5, "hello"},
		{"multibyte not split", "größe größe", 6, "größe "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncateRunes(tt.input, tt.max))
		})
	}
}
