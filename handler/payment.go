package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/andeanlabs/pagoflow/infra/response"
	"github.com/andeanlabs/pagoflow/provider"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// PaymentServiceInterface defines the interface for payment operations
type PaymentServiceInterface interface {
	CreatePayment(ctx context.Context, request provider.PaymentRequest) (*provider.PaymentResult, error)
	GetPaymentStatus(ctx context.Context, name provider.ProviderName, paymentID string) (*provider.PaymentDetail, error)
	Refund(ctx context.Context, name provider.ProviderName, paymentID string, amount float64) (*provider.RefundResult, error)
	ListBanks(ctx context.Context) ([]provider.Bank, error)
	ConfirmSimulatedPayment(ctx context.Context, paymentID string) (*provider.SimulatedPayment, error)
	ProcessWebhook(ctx context.Context, name provider.ProviderName, payload []byte) (*provider.WebhookEvent, error)
	Simulated() bool
}

// PaymentHandler handles payment related HTTP requests
type PaymentHandler struct {
	paymentService PaymentServiceInterface
	validate       *validator.Validate
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService PaymentServiceInterface, validate *validator.Validate) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		validate:       validate,
	}
}

// CreatePayment handles payment creation requests
func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req provider.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validate.Struct(req.Order); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	result, err := h.paymentService.CreatePayment(ctx, req)
	if err != nil {
		response.Error(w, statusFromError(err), "Payment failed", err)
		return
	}

	response.Success(w, http.StatusOK, "Payment created", result)
}

// GetPaymentStatus handles payment status requests
func (h *PaymentHandler) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	providerName := chi.URLParam(r, "provider")
	paymentID := chi.URLParam(r, "paymentID")
	if paymentID == "" {
		response.Error(w, http.StatusBadRequest, "Missing payment ID", nil)
		return
	}

	detail, err := h.paymentService.GetPaymentStatus(ctx, provider.ProviderName(providerName), paymentID)
	if err != nil {
		response.Error(w, statusFromError(err), "Failed to get payment status", err)
		return
	}

	response.Success(w, http.StatusOK, "Payment status retrieved", detail)
}

// Refund handles refund requests
func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	providerName := chi.URLParam(r, "provider")
	paymentID := chi.URLParam(r, "paymentID")
	if paymentID == "" {
		response.Error(w, http.StatusBadRequest, "Missing payment ID", nil)
		return
	}

	// Amount is optional; zero requests a full refund.
	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req.Amount = 0
	}

	result, err := h.paymentService.Refund(ctx, provider.ProviderName(providerName), paymentID, req.Amount)
	if err != nil {
		response.Error(w, statusFromError(err), "Failed to refund payment", err)
		return
	}

	response.Success(w, http.StatusOK, "Refund processed", result)
}

// ListBanks handles PSE bank list requests
func (h *PaymentHandler) ListBanks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	banks, err := h.paymentService.ListBanks(ctx)
	if err != nil {
		response.Error(w, statusFromError(err), "Failed to list banks", err)
		return
	}

	response.Success(w, http.StatusOK, "Banks retrieved", banks)
}

// ConfirmSimulatedPayment approves a simulated payment
func (h *PaymentHandler) ConfirmSimulatedPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	paymentID := chi.URLParam(r, "paymentID")
	if paymentID == "" {
		response.Error(w, http.StatusBadRequest, "Missing payment ID", nil)
		return
	}

	record, err := h.paymentService.ConfirmSimulatedPayment(ctx, paymentID)
	if err != nil {
		response.Error(w, statusFromError(err), "Failed to confirm simulated payment", err)
		return
	}

	response.Success(w, http.StatusOK, "Simulated payment confirmed", record)
}

// Webhook handles gateway notification callbacks. Ignored payloads still get
// a 200 so the gateway does not retry them.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	providerName := chi.URLParam(r, "provider")

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Failed to read webhook payload", err)
		return
	}

	event, err := h.paymentService.ProcessWebhook(ctx, provider.ProviderName(providerName), payload)
	if err != nil {
		response.Error(w, statusFromError(err), "Failed to process webhook", err)
		return
	}
	if event == nil {
		response.Success(w, http.StatusOK, "Webhook ignored", nil)
		return
	}

	response.Success(w, http.StatusOK, "Webhook processed", event)
}

// statusFromError maps service errors onto HTTP status codes.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, provider.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, provider.ErrUnsupportedMethod),
		errors.Is(err, provider.ErrUnsupportedProvider):
		return http.StatusBadRequest
	case errors.Is(err, provider.ErrNotSimulated):
		return http.StatusConflict
	case provider.IsUpstream(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
