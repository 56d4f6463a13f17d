// Package mercadopago implements the Mercado Pago adapter over the official
// SDK. Payments go through the hosted-checkout preference flow: creation
// returns a redirect URL, the gateway reports the outcome through webhooks.
package mercadopago

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/andeanlabs/pagoflow/provider"
	"github.com/google/uuid"
	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"github.com/mercadopago/sdk-go/pkg/refund"
)

const simulatedIDPrefix = "SIM-MP-"

// MercadoPagoProvider implements provider.PaymentProvider for Mercado Pago.
type MercadoPagoProvider struct {
	preferences preference.Client
	payments    payment.Client
	refunds     refund.Client

	clientBaseURL string
	apiBaseURL    string
	simulated     bool
	store         provider.SimulatedStore
}

// NewProvider creates an uninitialized Mercado Pago provider.
func NewProvider() provider.PaymentProvider {
	return &MercadoPagoProvider{}
}

// Initialize configures the adapter. In simulated mode no credentials are
// required and no SDK clients are built.
func (p *MercadoPagoProvider) Initialize(cfg provider.Config) error {
	p.clientBaseURL = strings.TrimSuffix(cfg.ClientBaseURL, "/")
	p.apiBaseURL = strings.TrimSuffix(cfg.APIBaseURL, "/")
	p.simulated = cfg.Simulated
	p.store = cfg.Store

	if cfg.Simulated {
		return nil
	}

	if cfg.AccessToken == "" {
		return fmt.Errorf("mercadopago: access token is required")
	}
	sdkCfg, err := mpconfig.New(cfg.AccessToken)
	if err != nil {
		return fmt.Errorf("mercadopago: failed to create SDK config: %w", err)
	}
	p.preferences = preference.NewClient(sdkCfg)
	p.payments = payment.NewClient(sdkCfg)
	p.refunds = refund.NewClient(sdkCfg)
	return nil
}

// CreatePayment creates a checkout preference and returns its redirect URLs.
func (p *MercadoPagoProvider) CreatePayment(ctx context.Context, request provider.PaymentRequest) (*provider.PaymentResult, error) {
	if p.simulated {
		return p.createSimulated(ctx, request)
	}

	tracking := request.Order.TrackingNumber
	prefRequest := preference.Request{
		Items: p.buildItems(request.Order),
		Payer: &preference.PayerRequest{
			Email: payerEmail(request),
			Name:  payerName(request),
		},
		ExternalReference: request.Order.ID,
		AutoReturn:        "approved",
		BackURLs: &preference.BackURLsRequest{
			Success: fmt.Sprintf("%s/payment/success?tracking=%s", p.clientBaseURL, tracking),
			Failure: fmt.Sprintf("%s/payment/failure?tracking=%s", p.clientBaseURL, tracking),
			Pending: fmt.Sprintf("%s/payment/pending?tracking=%s", p.clientBaseURL, tracking),
		},
		NotificationURL: p.apiBaseURL + "/webhooks/mercadopago",
	}

	result, err := p.preferences.Create(ctx, prefRequest)
	if err != nil {
		return nil, provider.NewUpstreamError(provider.ProviderMercadoPago, "create_preference", err)
	}

	return &provider.PaymentResult{
		Provider:         provider.ProviderMercadoPago,
		Success:          true,
		Status:           "pending",
		PreferenceID:     result.ID,
		InitPoint:        result.InitPoint,
		SandboxInitPoint: result.SandboxInitPoint,
		Reference:        tracking,
	}, nil
}

func (p *MercadoPagoProvider) buildItems(order provider.Order) []preference.ItemRequest {
	currency := order.CurrencyOrDefault()
	if len(order.Items) == 0 {
		return []preference.ItemRequest{{
			ID:         order.ID,
			Title:      "Order " + order.TrackingNumber,
			Quantity:   1,
			UnitPrice:  order.Total,
			CurrencyID: currency,
		}}
	}

	items := make([]preference.ItemRequest, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, preference.ItemRequest{
			ID:          item.ID,
			Title:       item.Name,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			CurrencyID:  currency,
		})
	}
	return items
}

// GetPayment retrieves a payment by its numeric Mercado Pago id.
func (p *MercadoPagoProvider) GetPayment(ctx context.Context, paymentID string) (*provider.PaymentDetail, error) {
	if p.simulated {
		return p.getSimulated(ctx, paymentID)
	}

	id, err := strconv.Atoi(paymentID)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: payment id %q is not numeric: %w", paymentID, err)
	}

	result, err := p.payments.Get(ctx, id)
	if err != nil {
		return nil, provider.NewUpstreamError(provider.ProviderMercadoPago, "get_payment", err)
	}

	detail := &provider.PaymentDetail{
		ID:           paymentID,
		Status:       result.Status,
		StatusDetail: result.StatusDetail,
		Amount:       result.TransactionAmount,
		Method:       result.PaymentMethodID,
		Reference:    result.ExternalReference,
		CreatedAt:    result.DateCreated,
		Metadata:     result.Metadata,
	}
	if !result.DateApproved.IsZero() {
		approved := result.DateApproved
		detail.FinalizedAt = &approved
	}
	return detail, nil
}

// Refund refunds a payment, fully when amount is non-positive.
func (p *MercadoPagoProvider) Refund(ctx context.Context, paymentID string, amount float64) (*provider.RefundResult, error) {
	if p.simulated {
		if _, err := p.store.Get(ctx, paymentID); err != nil {
			return nil, err
		}
		return &provider.RefundResult{
			Success:  true,
			RefundID: simulatedIDPrefix + "RF-" + uuid.NewString(),
			Status:   "refunded",
		}, nil
	}

	id, err := strconv.Atoi(paymentID)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: payment id %q is not numeric: %w", paymentID, err)
	}

	var result *refund.Response
	if amount > 0 {
		result, err = p.refunds.CreatePartialRefund(ctx, id, amount)
	} else {
		result, err = p.refunds.Create(ctx, id)
	}
	if err != nil {
		return nil, provider.NewUpstreamError(provider.ProviderMercadoPago, "refund", err)
	}

	return &provider.RefundResult{
		Success:  true,
		RefundID: strconv.Itoa(result.ID),
		Status:   result.Status,
	}, nil
}

// webhookEnvelope matches the notification body Mercado Pago posts. data.id
// arrives as a string in some notification versions and a number in others,
// so it is kept raw and trimmed.
type webhookEnvelope struct {
	Type string `json:"type"`
	Data struct {
		ID json.RawMessage `json:"id"`
	} `json:"data"`
}

// ParseWebhook handles "payment" notifications with a single follow-up
// payment lookup. Anything else is ignored.
func (p *MercadoPagoProvider) ParseWebhook(ctx context.Context, payload []byte) (*provider.WebhookEvent, error) {
	var envelope webhookEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, nil
	}
	if envelope.Type != "payment" {
		return nil, nil
	}

	paymentID := strings.Trim(string(envelope.Data.ID), `"`)
	if paymentID == "" || paymentID == "null" {
		return nil, nil
	}

	detail, err := p.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	return &provider.WebhookEvent{
		Provider:  provider.ProviderMercadoPago,
		PaymentID: paymentID,
		OrderID:   detail.Reference,
		Status:    provider.Normalize(provider.ProviderMercadoPago, detail.Status),
		Amount:    detail.Amount,
		RawStatus: detail.Status,
	}, nil
}

func (p *MercadoPagoProvider) createSimulated(ctx context.Context, request provider.PaymentRequest) (*provider.PaymentResult, error) {
	id := simulatedIDPrefix + uuid.NewString()
	record := provider.SimulatedPayment{
		ID:             id,
		OrderID:        request.Order.ID,
		TrackingNumber: request.Order.TrackingNumber,
		Amount:         request.Order.Total,
		Status:         "pending",
		Provider:       provider.ProviderMercadoPago,
		PaymentMethod:  string(request.Method),
		CreatedAt:      time.Now().UTC(),
	}
	if err := p.store.Save(ctx, record); err != nil {
		return nil, err
	}

	redirect := fmt.Sprintf("%s/checkout/simulated?preference_id=%s&tracking=%s",
		p.clientBaseURL, id, request.Order.TrackingNumber)
	return &provider.PaymentResult{
		Provider:         provider.ProviderMercadoPago,
		Success:          true,
		Status:           "pending",
		PreferenceID:     id,
		InitPoint:        redirect,
		SandboxInitPoint: redirect,
		Reference:        request.Order.TrackingNumber,
	}, nil
}

func (p *MercadoPagoProvider) getSimulated(ctx context.Context, paymentID string) (*provider.PaymentDetail, error) {
	record, err := p.store.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	return &provider.PaymentDetail{
		ID:          record.ID,
		Status:      record.Status,
		Amount:      record.Amount,
		Method:      record.PaymentMethod,
		Reference:   record.OrderID,
		CreatedAt:   record.CreatedAt,
		FinalizedAt: record.FinalizedAt,
	}, nil
}

func payerEmail(request provider.PaymentRequest) string {
	if request.User != nil && request.User.Email != "" {
		return request.User.Email
	}
	return request.Order.CustomerEmail
}

func payerName(request provider.PaymentRequest) string {
	if request.User != nil && request.User.Name != "" {
		return request.User.Name
	}
	return request.Order.CustomerName
}
