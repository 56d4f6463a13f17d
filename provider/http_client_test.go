package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRESTClientDoJSON(t *testing.T) {
	t.Run("sends JSON and decodes response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "POST", r.Method)
			assert.Equal(t, "/transactions", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, "Bearer prv_test", r.Header.Get("Authorization"))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"data":{"id":"tx-1","status":"PENDING"}}`))
		}))
		defer server.Close()

		client := NewRESTClient(ProviderWompi, server.URL, 0)

		var resp struct {
			Data struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"data"`
		}
		headers := map[string]string{"Authorization": "Bearer prv_test"}
		err := client.DoJSON(context.Background(), "POST", "/transactions", headers, map[string]any{"amount_in_cents": 1000}, &resp)
		require.NoError(t, err)
		assert.Equal(t, "tx-1", resp.Data.ID)
		assert.Equal(t, "PENDING", resp.Data.Status)
	})

	t.Run("non-2xx becomes an upstream error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"error":{"type":"INPUT_VALIDATION_ERROR"}}`))
		}))
		defer server.Close()

		client := NewRESTClient(ProviderWompi, server.URL, 0)
		err := client.DoJSON(context.Background(), "POST", "/transactions", nil, nil, nil)
		require.Error(t, err)

		var upstream *UpstreamError
		require.True(t, errors.As(err, &upstream))
		assert.Equal(t, ProviderWompi, upstream.Provider)
		assert.Contains(t, err.Error(), "422")
	})

	t.Run("malformed body becomes an upstream error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}))
		defer server.Close()

		client := NewRESTClient(ProviderWompi, server.URL, 0)
		var target map[string]any
		err := client.DoJSON(context.Background(), "GET", "/merchants/key", nil, nil, &target)
		assert.True(t, IsUpstream(err))
	})

	t.Run("transport failure becomes an upstream error", func(t *testing.T) {
		client := NewRESTClient(ProviderMercadoPago, "http://127.0.0.1:0", 0)
		err := client.DoJSON(context.Background(), "GET", "/x", nil, nil, nil)
		assert.True(t, IsUpstream(err))
	})

	t.Run("nil target skips decoding", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`whatever`))
		}))
		defer server.Close()

		client := NewRESTClient(ProviderWompi, server.URL, 0)
		assert.NoError(t, client.DoJSON(context.Background(), "GET", "/ping", nil, nil, nil))
	})
}
