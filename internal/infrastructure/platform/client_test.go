package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voltlens/backend/internal/domain"
)

func newTestClient(serverURL string) *Client {
	return NewClient(serverURL, "test-api-key", 1000, zap.NewNop())
}

func TestGetPricing_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-api-key", r.Header.Get("X-API-Key"))

		switch r.URL.Path {
		case "/api/articles/1703574":
			fmt.Fprint(w, `{"data":{"pricing":{"purchase_net":1200.50,"purchase_gross":1428.60,"raw":1500.00,"shop":1785.00}}}`)
		case "/api/articles/1703574/offer":
			fmt.Fprint(w, `{"data":{"is_offer":true,"discount_percent":5}}`)
		case "/api/bom/1703574":
			w.WriteHeader(http.StatusNotFound)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	pricing, err := client.GetPricing(context.Background(), "1703574")

	require.NoError(t, err)
	require.NotNil(t, pricing.PurchaseNet)
	assert.InDelta(t, 1200.50, *pricing.PurchaseNet, 1e-9)
	require.NotNil(t, pricing.SalesNet)
	assert.InDelta(t, 1500.00, *pricing.SalesNet, 1e-9)
	assert.True(t, pricing.OnOffer)
	assert.InDelta(t, 5, pricing.DiscountPct, 1e-9)
	assert.Equal(t, 19, pricing.VatRatePct)
	assert.Empty(t, pricing.BOMPrices)
}

func TestGetPricing_KitWithBOM(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/articles/2000000":
			fmt.Fprint(w, `{"data":{"pricing":{"purchase_net":5000.00}}}`)
		case "/api/articles/2000000/offer":
			fmt.Fprint(w, `{"data":{"is_offer":false}}`)
		case "/api/bom/2000000":
			fmt.Fprint(w, `{"data":{"components":[
				{"article_number":"7000001","amount":1},
				{"article_number":"7000002","amount":20},
				{"article_number":"","amount":3}
			]}}`)
		case "/api/articles/7000001":
			fmt.Fprint(w, `{"data":{"pricing":{"purchase_net":1100.00,"raw":1300.00}}}`)
		case "/api/articles/7000002":
			fmt.Fprint(w, `{"data":{"pricing":{"purchase_net":95.00,"raw":120.00}}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	pricing, err := client.GetPricing(context.Background(), "2000000")

	require.NoError(t, err)
	assert.False(t, pricing.OnOffer)
	require.Len(t, pricing.BOMPrices, 2)
	assert.Equal(t, "7000001", pricing.BOMPrices[0].ArticleNumber)
	assert.Equal(t, 1, pricing.BOMPrices[0].Quantity)
	assert.Equal(t, "7000002", pricing.BOMPrices[1].ArticleNumber)
	assert.Equal(t, 20, pricing.BOMPrices[1].Quantity)
	require.NotNil(t, pricing.BOMPrices[1].PurchaseNet)
	assert.InDelta(t, 95.00, *pricing.BOMPrices[1].PurchaseNet, 1e-9)
}

func TestGetPricing_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	pricing, err := client.GetPricing(context.Background(), "9999999")

	assert.Nil(t, pricing)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestGetSupplier_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/supplier/1703574", r.URL.Path)
		fmt.Fprint(w, `{"data":{"name":"Solar Distribution GmbH","number":"70001"}}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	supplier, err := client.GetSupplier(context.Background(), "1703574")

	require.NoError(t, err)
	assert.Equal(t, "Solar Distribution GmbH", supplier.Name)
	assert.Equal(t, "70001", supplier.SupplierNumber)
}

func TestGet_UnwrappedResponse(t *testing.T) {
	// Some endpoints answer without the {"data": ...} envelope.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/articles/1703574":
			fmt.Fprint(w, `{"pricing":{"purchase_net":800.00}}`)
		case "/api/articles/1703574/offer", "/api/bom/1703574":
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	pricing, err := client.GetPricing(context.Background(), "1703574")

	require.NoError(t, err)
	require.NotNil(t, pricing.PurchaseNet)
	assert.InDelta(t, 800.00, *pricing.PurchaseNet, 1e-9)
}

func TestGet_RetriesServerErrors(t *testing.T) {
	var articleCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/articles/1703574":
			if atomic.AddInt32(&articleCalls, 1) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprint(w, `{"data":{"pricing":{"purchase_net":1200.00}}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	pricing, err := client.GetPricing(context.Background(), "1703574")

	require.NoError(t, err)
	require.NotNil(t, pricing.PurchaseNet)
	assert.Equal(t, int32(2), atomic.LoadInt32(&articleCalls))
}
