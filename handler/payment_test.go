package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andeanlabs/pagoflow/provider"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockPaymentService is a scriptable PaymentServiceInterface.
type mockPaymentService struct {
	createResult  *provider.PaymentResult
	createErr     error
	detail        *provider.PaymentDetail
	detailErr     error
	refundResult  *provider.RefundResult
	refundErr     error
	banks         []provider.Bank
	banksErr      error
	confirmRecord *provider.SimulatedPayment
	confirmErr    error
	webhookEvent  *provider.WebhookEvent
	webhookErr    error
	simulated     bool

	lastProvider provider.ProviderName
	lastPayload  []byte
}

func (m *mockPaymentService) CreatePayment(_ context.Context, _ provider.PaymentRequest) (*provider.PaymentResult, error) {
	return m.createResult, m.createErr
}

func (m *mockPaymentService) GetPaymentStatus(_ context.Context, name provider.ProviderName, _ string) (*provider.PaymentDetail, error) {
	m.lastProvider = name
	return m.detail, m.detailErr
}

func (m *mockPaymentService) Refund(_ context.Context, name provider.ProviderName, _ string, _ float64) (*provider.RefundResult, error) {
	m.lastProvider = name
	return m.refundResult, m.refundErr
}

func (m *mockPaymentService) ListBanks(context.Context) ([]provider.Bank, error) {
	return m.banks, m.banksErr
}

func (m *mockPaymentService) ConfirmSimulatedPayment(_ context.Context, _ string) (*provider.SimulatedPayment, error) {
	return m.confirmRecord, m.confirmErr
}

func (m *mockPaymentService) ProcessWebhook(_ context.Context, name provider.ProviderName, payload []byte) (*provider.WebhookEvent, error) {
	m.lastProvider = name
	m.lastPayload = payload
	return m.webhookEvent, m.webhookErr
}

func (m *mockPaymentService) Simulated() bool { return m.simulated }

func newTestRouter(svc PaymentServiceInterface) chi.Router {
	h := NewPaymentHandler(svc, validator.New())
	r := chi.NewRouter()
	r.Post("/v1/payments", h.CreatePayment)
	r.Post("/v1/payments/simulated/{paymentID}/confirm", h.ConfirmSimulatedPayment)
	r.Get("/v1/payments/{provider}/{paymentID}", h.GetPaymentStatus)
	r.Post("/v1/payments/{provider}/{paymentID}/refund", h.Refund)
	r.Get("/v1/banks", h.ListBanks)
	r.Post("/webhooks/{provider}", h.Webhook)
	return r
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreatePaymentHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &mockPaymentService{
			createResult: &provider.PaymentResult{
				Provider: provider.ProviderMercadoPago,
				Success:  true,
				Status:   "pending",
			},
		}
		r := newTestRouter(svc)

		payload := `{"order":{"id":"o-1","trackingNumber":"TRK-1","total":100},"method":"mercadopago"}`
		req := httptest.NewRequest("POST", "/v1/payments", bytes.NewBufferString(payload))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])
	})

	t.Run("invalid json", func(t *testing.T) {
		r := newTestRouter(&mockPaymentService{})
		req := httptest.NewRequest("POST", "/v1/payments", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("validation failure", func(t *testing.T) {
		r := newTestRouter(&mockPaymentService{})
		// Missing tracking number and non-positive total.
		payload := `{"order":{"id":"o-1","total":0},"method":"cash"}`
		req := httptest.NewRequest("POST", "/v1/payments", bytes.NewBufferString(payload))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unsupported method maps to 400", func(t *testing.T) {
		svc := &mockPaymentService{createErr: provider.ErrUnsupportedMethod}
		r := newTestRouter(svc)
		payload := `{"order":{"id":"o-1","trackingNumber":"TRK","total":10},"method":"bitcoin"}`
		req := httptest.NewRequest("POST", "/v1/payments", bytes.NewBufferString(payload))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("upstream failure maps to 502", func(t *testing.T) {
		svc := &mockPaymentService{
			createErr: provider.NewUpstreamError(provider.ProviderWompi, "create", errors.New("boom")),
		}
		r := newTestRouter(svc)
		payload := `{"order":{"id":"o-1","trackingNumber":"TRK","total":10},"method":"nequi"}`
		req := httptest.NewRequest("POST", "/v1/payments", bytes.NewBufferString(payload))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestGetPaymentStatusHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &mockPaymentService{
			detail: &provider.PaymentDetail{
				ID:              "tx-1",
				Status:          "APPROVED",
				CanonicalStatus: provider.StatusCompleted,
			},
		}
		r := newTestRouter(svc)
		req := httptest.NewRequest("GET", "/v1/payments/wompi/tx-1", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, provider.ProviderWompi, svc.lastProvider)

		body := decodeBody(t, rec)
		data := body["data"].(map[string]any)
		assert.Equal(t, "completed", data["canonicalStatus"])
	})

	t.Run("not found maps to 404", func(t *testing.T) {
		svc := &mockPaymentService{detailErr: provider.ErrNotFound}
		r := newTestRouter(svc)
		req := httptest.NewRequest("GET", "/v1/payments/mercadopago/999", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unsupported provider maps to 400", func(t *testing.T) {
		svc := &mockPaymentService{detailErr: provider.ErrUnsupportedProvider}
		r := newTestRouter(svc)
		req := httptest.NewRequest("GET", "/v1/payments/stripe/1", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRefundHandler(t *testing.T) {
	svc := &mockPaymentService{refundResult: &provider.RefundResult{Success: true, Status: "VOIDED"}}
	r := newTestRouter(svc)

	req := httptest.NewRequest("POST", "/v1/payments/wompi/tx-2/refund", bytes.NewBufferString(`{"amount":50}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, provider.ProviderWompi, svc.lastProvider)
}

func TestListBanksHandler(t *testing.T) {
	svc := &mockPaymentService{banks: []provider.Bank{{Code: "1007", Name: "Bancolombia"}}}
	r := newTestRouter(svc)

	req := httptest.NewRequest("GET", "/v1/banks", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	banks := body["data"].([]any)
	require.Len(t, banks, 1)
}

func TestConfirmSimulatedHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &mockPaymentService{
			confirmRecord: &provider.SimulatedPayment{ID: "SIM-MP-1", Status: "approved"},
		}
		r := newTestRouter(svc)
		req := httptest.NewRequest("POST", "/v1/payments/simulated/SIM-MP-1/confirm", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("live mode maps to 409", func(t *testing.T) {
		svc := &mockPaymentService{confirmErr: provider.ErrNotSimulated}
		r := newTestRouter(svc)
		req := httptest.NewRequest("POST", "/v1/payments/simulated/SIM-MP-1/confirm", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestWebhookHandler(t *testing.T) {
	t.Run("processed event", func(t *testing.T) {
		svc := &mockPaymentService{
			webhookEvent: &provider.WebhookEvent{
				Provider:  provider.ProviderWompi,
				PaymentID: "tx-9",
				Status:    provider.StatusCompleted,
			},
		}
		r := newTestRouter(svc)

		payload := `{"event":"transaction.updated"}`
		req := httptest.NewRequest("POST", "/webhooks/wompi", bytes.NewBufferString(payload))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, provider.ProviderWompi, svc.lastProvider)
		assert.JSONEq(t, payload, string(svc.lastPayload))
	})

	t.Run("ignored payload still gets 200", func(t *testing.T) {
		svc := &mockPaymentService{}
		r := newTestRouter(svc)
		req := httptest.NewRequest("POST", "/webhooks/mercadopago", bytes.NewBufferString(`{"type":"test"}`))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Webhook ignored", body["message"])
	})

	t.Run("upstream failure maps to 502", func(t *testing.T) {
		svc := &mockPaymentService{
			webhookErr: provider.NewUpstreamError(provider.ProviderMercadoPago, "get_payment", errors.New("down")),
		}
		r := newTestRouter(svc)
		req := httptest.NewRequest("POST", "/webhooks/mercadopago", bytes.NewBufferString(`{"type":"payment","data":{"id":"1"}}`))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestHealthHandler(t *testing.T) {
	h := NewHealthHandler(func() bool { return true })
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, "simulated", data["mode"])
	assert.Equal(t, "healthy", data["status"])
}
