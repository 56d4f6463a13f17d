package provider

import "context"

// Config carries everything an adapter needs at initialization: credentials,
// deployment environment, the URLs redirects and webhooks are built from, and
// the simulated-mode flag with its backing store. The flag is decided once at
// startup and injected; adapters never read the environment themselves.
type Config struct {
	// Environment selects sandbox or production gateway endpoints.
	Environment string

	// Mercado Pago credentials.
	AccessToken string

	// Wompi credentials.
	PublicKey  string
	PrivateKey string

	// ClientBaseURL is the public base URL of the checkout frontend; redirect
	// and return URLs are built from it.
	ClientBaseURL string

	// APIBaseURL is this service's public base URL; webhook notification URLs
	// are built from it.
	APIBaseURL string

	// Simulated short-circuits every network path onto Store.
	Simulated bool
	Store     SimulatedStore
}

// IsProduction reports whether live gateway endpoints should be used.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// PaymentProvider is the interface every gateway adapter implements.
type PaymentProvider interface {
	// Initialize sets up the adapter with credentials and configuration.
	Initialize(cfg Config) error

	// CreatePayment creates a payment for the request's order and method.
	CreatePayment(ctx context.Context, request PaymentRequest) (*PaymentResult, error)

	// GetPayment retrieves the current details of a payment by provider id.
	GetPayment(ctx context.Context, paymentID string) (*PaymentDetail, error)

	// Refund refunds or voids a payment. A non-positive amount means a full
	// refund.
	Refund(ctx context.Context, paymentID string, amount float64) (*RefundResult, error)

	// ParseWebhook converts a provider notification payload into a canonical
	// event. Unrecognized payload shapes yield (nil, nil): gateways send many
	// notification types this system does not act on.
	ParseWebhook(ctx context.Context, payload []byte) (*WebhookEvent, error)
}

// BankLister is implemented by adapters that expose a list of participating
// financial institutions (Wompi, for the PSE method).
type BankLister interface {
	ListBanks(ctx context.Context) ([]Bank, error)
}

// ProviderFactory creates a new PaymentProvider instance.
type ProviderFactory func() PaymentProvider
