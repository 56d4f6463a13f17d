// Package wompi implements the Wompi adapter over its REST API. Payments are
// direct transactions: PSE bank transfers, Nequi wallet pushes and tokenized
// cards. Every transaction requires a merchant acceptance token fetched
// immediately before creation.
package wompi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/andeanlabs/pagoflow/provider"
	"github.com/google/uuid"
)

const (
	sandboxBaseURL    = "https://sandbox.wompi.co/v1"
	productionBaseURL = "https://production.wompi.co/v1"

	simulatedIDPrefix = "SIM-WP-"
)

// WompiProvider implements provider.PaymentProvider for Wompi.
type WompiProvider struct {
	client        *provider.RESTClient
	publicKey     string
	privateKey    string
	clientBaseURL string
	simulated     bool
	store         provider.SimulatedStore
}

// NewProvider creates an uninitialized Wompi provider.
func NewProvider() provider.PaymentProvider {
	return &WompiProvider{}
}

// Initialize configures the adapter. In simulated mode no credentials are
// required and no HTTP client is built.
func (p *WompiProvider) Initialize(cfg provider.Config) error {
	p.clientBaseURL = strings.TrimSuffix(cfg.ClientBaseURL, "/")
	p.simulated = cfg.Simulated
	p.store = cfg.Store

	if cfg.Simulated {
		return nil
	}

	if cfg.PublicKey == "" || cfg.PrivateKey == "" {
		return fmt.Errorf("wompi: public and private keys are required")
	}
	p.publicKey = cfg.PublicKey
	p.privateKey = cfg.PrivateKey

	baseURL := sandboxBaseURL
	if cfg.IsProduction() {
		baseURL = productionBaseURL
	}
	p.client = provider.NewRESTClient(provider.ProviderWompi, baseURL, 0)
	return nil
}

type merchantResponse struct {
	Data struct {
		PresignedAcceptance struct {
			AcceptanceToken string `json:"acceptance_token"`
		} `json:"presigned_acceptance"`
	} `json:"data"`
}

// getAcceptanceToken fetches the merchant's presigned acceptance token.
// Tokens are single-use, so one is fetched per transaction.
func (p *WompiProvider) getAcceptanceToken(ctx context.Context) (string, error) {
	var resp merchantResponse
	if err := p.client.DoJSON(ctx, "GET", "/merchants/"+p.publicKey, nil, nil, &resp); err != nil {
		return "", err
	}
	token := resp.Data.PresignedAcceptance.AcceptanceToken
	if token == "" {
		return "", provider.NewUpstreamError(provider.ProviderWompi, "acceptance_token",
			fmt.Errorf("merchant response carried no acceptance token"))
	}
	return token, nil
}

type paymentMethodPayload struct {
	Type                     string `json:"type"`
	UserType                 *int   `json:"user_type,omitempty"`
	UserLegalIDType          string `json:"user_legal_id_type,omitempty"`
	UserLegalID              string `json:"user_legal_id,omitempty"`
	FinancialInstitutionCode string `json:"financial_institution_code,omitempty"`
	PaymentDescription       string `json:"payment_description,omitempty"`
	PhoneNumber              string `json:"phone_number,omitempty"`
	Token                    string `json:"token,omitempty"`
	Installments             int    `json:"installments,omitempty"`
}

type transactionRequest struct {
	AcceptanceToken string               `json:"acceptance_token"`
	AmountInCents   int64                `json:"amount_in_cents"`
	Currency        string               `json:"currency"`
	CustomerEmail   string               `json:"customer_email"`
	Reference       string               `json:"reference"`
	PaymentMethod   paymentMethodPayload `json:"payment_method"`
	RedirectURL     string               `json:"redirect_url,omitempty"`
}

type transactionData struct {
	ID                string `json:"id"`
	CreatedAt         string `json:"created_at"`
	FinalizedAt       string `json:"finalized_at"`
	AmountInCents     int64  `json:"amount_in_cents"`
	Reference         string `json:"reference"`
	Currency          string `json:"currency"`
	PaymentMethodType string `json:"payment_method_type"`
	PaymentMethod     struct {
		Type  string `json:"type"`
		Extra struct {
			AsyncPaymentURL string `json:"async_payment_url"`
		} `json:"extra"`
	} `json:"payment_method"`
	Status        string `json:"status"`
	StatusMessage string `json:"status_message"`
}

type transactionResponse struct {
	Data transactionData `json:"data"`
}

// CreatePayment creates a Wompi transaction for the PSE, Nequi or card
// method. A failed acceptance-token fetch aborts the creation.
func (p *WompiProvider) CreatePayment(ctx context.Context, request provider.PaymentRequest) (*provider.PaymentResult, error) {
	if p.simulated {
		return p.createSimulated(ctx, request)
	}

	method, err := p.buildPaymentMethod(request)
	if err != nil {
		return nil, err
	}

	token, err := p.getAcceptanceToken(ctx)
	if err != nil {
		return nil, err
	}

	tracking := request.Order.TrackingNumber
	body := transactionRequest{
		AcceptanceToken: token,
		AmountInCents:   provider.ToMinorUnits(request.Order.Total),
		Currency:        request.Order.CurrencyOrDefault(),
		CustomerEmail:   customerEmail(request),
		Reference:       tracking,
		PaymentMethod:   method,
		RedirectURL:     fmt.Sprintf("%s/payment/result?tracking=%s", p.clientBaseURL, tracking),
	}

	var resp transactionResponse
	if err := p.client.DoJSON(ctx, "POST", "/transactions", p.privateAuth(), body, &resp); err != nil {
		return nil, err
	}

	status := resp.Data.Status
	return &provider.PaymentResult{
		Provider:      provider.ProviderWompi,
		Success:       status != "DECLINED" && status != "ERROR",
		Status:        status,
		TransactionID: resp.Data.ID,
		RedirectURL:   resp.Data.PaymentMethod.Extra.AsyncPaymentURL,
		Reference:     tracking,
	}, nil
}

func (p *WompiProvider) buildPaymentMethod(request provider.PaymentRequest) (paymentMethodPayload, error) {
	switch request.Method {
	case provider.MethodPSE:
		if request.PSE == nil {
			return paymentMethodPayload{}, fmt.Errorf("wompi: pse data is required for the pse method")
		}
		userType := request.PSE.UserType
		return paymentMethodPayload{
			Type:                     "PSE",
			UserType:                 &userType,
			UserLegalIDType:          request.PSE.LegalIDType,
			UserLegalID:              request.PSE.LegalID,
			FinancialInstitutionCode: request.PSE.FinancialInstitutionCode,
			PaymentDescription:       "Order " + request.Order.TrackingNumber,
		}, nil

	case provider.MethodNequi:
		phone := request.PhoneNumber
		if phone == "" {
			phone = request.Order.CustomerPhone
		}
		if phone == "" {
			return paymentMethodPayload{}, fmt.Errorf("wompi: a phone number is required for the nequi method")
		}
		return paymentMethodPayload{Type: "NEQUI", PhoneNumber: phone}, nil

	case provider.MethodCard:
		if request.CardToken == "" {
			return paymentMethodPayload{}, fmt.Errorf("wompi: a card token is required for the card method")
		}
		installments := request.Installments
		if installments <= 0 {
			installments = 1
		}
		return paymentMethodPayload{
			Type:         "CARD",
			Token:        request.CardToken,
			Installments: installments,
		}, nil

	default:
		return paymentMethodPayload{}, fmt.Errorf("wompi: payment method %q: %w", request.Method, provider.ErrUnsupportedMethod)
	}
}

// GetPayment retrieves a transaction by id. Amounts come back in cents and
// are converted to major units.
func (p *WompiProvider) GetPayment(ctx context.Context, paymentID string) (*provider.PaymentDetail, error) {
	if p.simulated {
		return p.getSimulated(ctx, paymentID)
	}

	var resp transactionResponse
	if err := p.client.DoJSON(ctx, "GET", "/transactions/"+paymentID, p.privateAuth(), nil, &resp); err != nil {
		return nil, err
	}

	detail := &provider.PaymentDetail{
		ID:           resp.Data.ID,
		Status:       resp.Data.Status,
		StatusDetail: resp.Data.StatusMessage,
		Amount:       provider.FromMinorUnits(resp.Data.AmountInCents),
		Method:       resp.Data.PaymentMethodType,
		Reference:    resp.Data.Reference,
	}
	if createdAt, err := time.Parse(time.RFC3339, resp.Data.CreatedAt); err == nil {
		detail.CreatedAt = createdAt
	}
	if finalizedAt, err := time.Parse(time.RFC3339, resp.Data.FinalizedAt); err == nil {
		detail.FinalizedAt = &finalizedAt
	}
	return detail, nil
}

// Refund voids a transaction. Wompi only supports full voids; the amount is
// ignored.
func (p *WompiProvider) Refund(ctx context.Context, paymentID string, _ float64) (*provider.RefundResult, error) {
	if p.simulated {
		if _, err := p.store.Get(ctx, paymentID); err != nil {
			return nil, err
		}
		return &provider.RefundResult{
			Success:  true,
			RefundID: paymentID,
			Status:   "VOIDED",
		}, nil
	}

	var resp transactionResponse
	if err := p.client.DoJSON(ctx, "POST", "/transactions/"+paymentID+"/void", p.privateAuth(), nil, &resp); err != nil {
		return nil, err
	}

	return &provider.RefundResult{
		Success:  true,
		RefundID: paymentID,
		Status:   resp.Data.Status,
	}, nil
}

type banksResponse struct {
	Data []struct {
		Code string `json:"financial_institution_code"`
		Name string `json:"financial_institution_name"`
	} `json:"data"`
}

// ListBanks returns the PSE financial institutions. In simulated mode a
// small fixed list is returned so checkout pages can still render.
func (p *WompiProvider) ListBanks(ctx context.Context) ([]provider.Bank, error) {
	if p.simulated {
		return []provider.Bank{
			{Code: "1", Name: "Banco que aprueba"},
			{Code: "2", Name: "Banco que declina"},
		}, nil
	}

	var resp banksResponse
	headers := map[string]string{"Authorization": "Bearer " + p.publicKey}
	if err := p.client.DoJSON(ctx, "GET", "/pse/financial_institutions", headers, nil, &resp); err != nil {
		return nil, err
	}

	banks := make([]provider.Bank, 0, len(resp.Data))
	for _, bank := range resp.Data {
		banks = append(banks, provider.Bank{Code: bank.Code, Name: bank.Name})
	}
	return banks, nil
}

type webhookEnvelope struct {
	Event string `json:"event"`
	Data  struct {
		Transaction transactionData `json:"transaction"`
	} `json:"data"`
}

// ParseWebhook handles "transaction.updated" events. The payload carries the
// full transaction, so no follow-up request is needed.
func (p *WompiProvider) ParseWebhook(_ context.Context, payload []byte) (*provider.WebhookEvent, error) {
	var envelope webhookEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, nil
	}
	if envelope.Event != "transaction.updated" {
		return nil, nil
	}

	tx := envelope.Data.Transaction
	if tx.ID == "" {
		return nil, nil
	}

	return &provider.WebhookEvent{
		Provider:  provider.ProviderWompi,
		PaymentID: tx.ID,
		OrderID:   tx.Reference,
		Status:    provider.Normalize(provider.ProviderWompi, tx.Status),
		Amount:    provider.FromMinorUnits(tx.AmountInCents),
		RawStatus: tx.Status,
	}, nil
}

// createSimulated enforces the same per-method required fields as the live
// path, so simulation surfaces the same caller mistakes.
func (p *WompiProvider) createSimulated(ctx context.Context, request provider.PaymentRequest) (*provider.PaymentResult, error) {
	if _, err := p.buildPaymentMethod(request); err != nil {
		return nil, err
	}

	id := simulatedIDPrefix + uuid.NewString()
	record := provider.SimulatedPayment{
		ID:             id,
		OrderID:        request.Order.ID,
		TrackingNumber: request.Order.TrackingNumber,
		Amount:         request.Order.Total,
		Status:         "PENDING",
		Provider:       provider.ProviderWompi,
		PaymentMethod:  string(request.Method),
		CreatedAt:      time.Now().UTC(),
	}
	if err := p.store.Save(ctx, record); err != nil {
		return nil, err
	}

	redirect := fmt.Sprintf("%s/checkout/simulated?transaction_id=%s&tracking=%s&method=%s",
		p.clientBaseURL, id, request.Order.TrackingNumber, request.Method)
	return &provider.PaymentResult{
		Provider:      provider.ProviderWompi,
		Success:       true,
		Status:        "PENDING",
		TransactionID: id,
		RedirectURL:   redirect,
		Reference:     request.Order.TrackingNumber,
	}, nil
}

func (p *WompiProvider) getSimulated(ctx context.Context, paymentID string) (*provider.PaymentDetail, error) {
	record, err := p.store.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	return &provider.PaymentDetail{
		ID:          record.ID,
		Status:      record.Status,
		Amount:      record.Amount,
		Method:      record.PaymentMethod,
		Reference:   record.TrackingNumber,
		CreatedAt:   record.CreatedAt,
		FinalizedAt: record.FinalizedAt,
	}, nil
}

func (p *WompiProvider) privateAuth() map[string]string {
	return map[string]string{"Authorization": "Bearer " + p.privateKey}
}

func customerEmail(request provider.PaymentRequest) string {
	if request.User != nil && request.User.Email != "" {
		return request.User.Email
	}
	return request.Order.CustomerEmail
}
