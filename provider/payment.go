package provider

import (
	"math"
	"time"
)

// ProviderName identifies a payment provider. The set is closed: adding a
// provider means adding a constant here and an adapter package registering
// under it.
type ProviderName string

const (
	ProviderMercadoPago ProviderName = "mercadopago"
	ProviderWompi       ProviderName = "wompi"
	ProviderCash        ProviderName = "cash"
)

// PaymentMethod is the method selector callers pass to CreatePayment.
type PaymentMethod string

const (
	MethodMercadoPago PaymentMethod = "mercadopago" // hosted checkout preference
	MethodCardMP      PaymentMethod = "card_mp"     // card via hosted checkout
	MethodPSE         PaymentMethod = "pse"         // bank transfer (Wompi)
	MethodNequi       PaymentMethod = "nequi"       // mobile wallet (Wompi)
	MethodCard        PaymentMethod = "card"        // tokenized card (Wompi)
	MethodCash        PaymentMethod = "cash"        // cash on delivery, no gateway
)

// OrderItem is a single order line.
type OrderItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

// Order is the read-only order snapshot a payment is created against.
// Currency is COP when empty.
type Order struct {
	ID             string      `json:"id" validate:"required"`
	TrackingNumber string      `json:"trackingNumber" validate:"required"`
	Total          float64     `json:"total" validate:"gt=0"`
	Currency       string      `json:"currency,omitempty"`
	Items          []OrderItem `json:"items,omitempty"`
	CustomerName   string      `json:"customerName,omitempty"`
	CustomerEmail  string      `json:"customerEmail,omitempty"`
	CustomerPhone  string      `json:"customerPhone,omitempty"`
}

// CurrencyOrDefault returns the order currency, defaulting to COP.
func (o Order) CurrencyOrDefault() string {
	if o.Currency == "" {
		return "COP"
	}
	return o.Currency
}

// User is an authenticated buyer. When present its contact data takes
// precedence over the order-supplied values.
type User struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// PSEData carries the extra fields a PSE bank-transfer transaction requires.
type PSEData struct {
	UserType                 int    `json:"userType"` // 0 natural, 1 legal
	LegalIDType              string `json:"legalIdType"`
	LegalID                  string `json:"legalId"`
	FinancialInstitutionCode string `json:"financialInstitutionCode"`
}

// PaymentRequest contains everything needed to create a payment through any
// provider. Method decides which adapter handles it; the remaining optional
// fields feed the method-specific payload.
type PaymentRequest struct {
	Order        Order         `json:"order"`
	Method       PaymentMethod `json:"method"`
	User         *User         `json:"user,omitempty"`
	PSE          *PSEData      `json:"pse,omitempty"`
	PhoneNumber  string        `json:"phoneNumber,omitempty"`
	CardToken    string        `json:"cardToken,omitempty"`
	Installments int           `json:"installments,omitempty"`
}

// PaymentResult is the unified creation result. Status carries the raw
// provider vocabulary; every successful result carries enough data for the
// caller to redirect the customer or display a reference.
type PaymentResult struct {
	Provider ProviderName `json:"provider"`
	Success  bool         `json:"success"`
	Status   string       `json:"status"`

	// Preference flow (Mercado Pago).
	PreferenceID     string `json:"preferenceId,omitempty"`
	InitPoint        string `json:"initPoint,omitempty"`
	SandboxInitPoint string `json:"sandboxInitPoint,omitempty"`

	// Transaction flow (Wompi).
	TransactionID string `json:"transactionId,omitempty"`
	RedirectURL   string `json:"redirectUrl,omitempty"`
	Reference     string `json:"reference,omitempty"`
}

// PaymentDetail is the unified status-retrieval shape for both providers.
// Status is the provider-native string; CanonicalStatus is filled in by the
// facade via Normalize.
type PaymentDetail struct {
	ID              string          `json:"id"`
	Status          string          `json:"status"`
	StatusDetail    string          `json:"statusDetail,omitempty"`
	Amount          float64         `json:"amount"`
	Method          string          `json:"method,omitempty"`
	Reference       string          `json:"reference,omitempty"`
	CreatedAt       time.Time       `json:"createdAt,omitempty"`
	FinalizedAt     *time.Time      `json:"finalizedAt,omitempty"`
	Metadata        map[string]any  `json:"metadata,omitempty"`
	CanonicalStatus CanonicalStatus `json:"canonicalStatus,omitempty"`
}

// RefundResult is the unified refund/void result.
type RefundResult struct {
	Success  bool   `json:"success"`
	RefundID string `json:"refundId,omitempty"`
	Status   string `json:"status,omitempty"`
}

// Bank is a participating PSE financial institution.
type Bank struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// WebhookEvent is the canonical event produced from a provider notification.
type WebhookEvent struct {
	Provider  ProviderName    `json:"provider"`
	PaymentID string          `json:"paymentId"`
	OrderID   string          `json:"orderId"`
	Status    CanonicalStatus `json:"status"`
	Amount    float64         `json:"amount"`
	RawStatus string          `json:"rawStatus"`
}

// ToMinorUnits converts a major-unit amount to integer cents. Rounding is
// half-away-from-zero and deterministic; Wompi charges whatever integer we
// send, so this is the single place the conversion happens.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromMinorUnits converts integer cents back to a major-unit amount.
func FromMinorUnits(cents int64) float64 {
	return float64(cents) / 100
}
