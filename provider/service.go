package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/andeanlabs/pagoflow/infra/logger"
	"github.com/andeanlabs/pagoflow/infra/metrics"
	"github.com/google/uuid"
)

// PaymentService is the orchestration facade. It routes unified payment
// operations to the matching provider adapter by payment method or provider
// name, owns the simulated/real mode switch, and wraps every provider call
// with structured logging, operation records and metrics.
type PaymentService struct {
	cfg       Config
	store     SimulatedStore
	providers map[ProviderName]PaymentProvider
	events    EventLogger
}

// NewPaymentService builds the facade from the given configuration. A nil
// registry selects DefaultRegistry; a nil events logger disables operation
// records. Both gateway adapters are created and initialized eagerly so
// misconfiguration fails at startup, not on the first payment.
func NewPaymentService(cfg Config, registry *Registry, events EventLogger) (*PaymentService, error) {
	if registry == nil {
		registry = DefaultRegistry
	}
	if cfg.Store == nil {
		cfg.Store = NewInMemorySimulatedStore()
	}

	s := &PaymentService{
		cfg:       cfg,
		store:     cfg.Store,
		providers: make(map[ProviderName]PaymentProvider, 2),
		events:    events,
	}

	for _, name := range []ProviderName{ProviderMercadoPago, ProviderWompi} {
		p, err := registry.Create(name)
		if err != nil {
			return nil, err
		}
		if err := p.Initialize(cfg); err != nil {
			return nil, fmt.Errorf("failed to initialize %s provider: %w", name, err)
		}
		s.providers[name] = p
	}

	logger.Info("Payment service initialized", logger.LogContext{
		Fields: map[string]any{
			"simulated":   cfg.Simulated,
			"environment": cfg.Environment,
		},
	})
	return s, nil
}

// Simulated reports whether the service runs against the simulated store
// instead of live gateways.
func (s *PaymentService) Simulated() bool {
	return s.cfg.Simulated
}

// CreatePayment creates a payment, dispatching on the request method.
// The cash method never touches the network: cash on delivery has no gateway
// and always yields a successful pending result.
func (s *PaymentService) CreatePayment(ctx context.Context, request PaymentRequest) (*PaymentResult, error) {
	switch request.Method {
	case MethodMercadoPago, MethodCardMP:
		return s.create(ctx, ProviderMercadoPago, request)
	case MethodPSE, MethodNequi, MethodCard:
		return s.create(ctx, ProviderWompi, request)
	case MethodCash:
		result := &PaymentResult{
			Provider:  ProviderCash,
			Success:   true,
			Status:    "pending",
			Reference: request.Order.TrackingNumber,
		}
		metrics.PaymentsCreated.WithLabelValues(string(ProviderCash), string(MethodCash), s.mode()).Inc()
		s.record(OperationLog{
			Provider:  string(ProviderCash),
			Operation: "create",
			OrderID:   request.Order.ID,
			Method:    string(MethodCash),
			Status:    result.Status,
			Amount:    request.Order.Total,
			Simulated: s.cfg.Simulated,
		})
		return result, nil
	default:
		return nil, fmt.Errorf("payment method %q: %w", request.Method, ErrUnsupportedMethod)
	}
}

func (s *PaymentService) create(ctx context.Context, name ProviderName, request PaymentRequest) (*PaymentResult, error) {
	prov := s.providers[name]

	start := time.Now()
	result, err := prov.CreatePayment(ctx, request)
	elapsed := time.Since(start)
	metrics.ObserveProviderRequest(string(name), "create", elapsed)

	entry := OperationLog{
		Provider:     string(name),
		Operation:    "create",
		OrderID:      request.Order.ID,
		Method:       string(request.Method),
		Amount:       request.Order.Total,
		ProcessingMs: elapsed.Milliseconds(),
		Simulated:    s.cfg.Simulated,
	}

	if err != nil {
		if IsUpstream(err) {
			metrics.UpstreamErrors.WithLabelValues(string(name), "create").Inc()
		}
		logger.Error("Payment creation failed", err, logger.LogContext{
			Provider: string(name),
			Fields: map[string]any{
				"order_id": request.Order.ID,
				"method":   string(request.Method),
			},
		})
		entry.Error = err.Error()
		s.record(entry)
		return nil, err
	}

	metrics.PaymentsCreated.WithLabelValues(string(name), string(request.Method), s.mode()).Inc()
	logger.Info("Payment created", logger.LogContext{
		Provider:  string(name),
		PaymentID: result.PreferenceID + result.TransactionID,
		Fields: map[string]any{
			"order_id": request.Order.ID,
			"status":   result.Status,
		},
	})
	entry.PaymentID = result.PreferenceID + result.TransactionID
	entry.Status = result.Status
	s.record(entry)
	return result, nil
}

// GetPaymentStatus retrieves payment details, dispatching by provider name,
// and annotates them with the canonical status.
func (s *PaymentService) GetPaymentStatus(ctx context.Context, name ProviderName, paymentID string) (*PaymentDetail, error) {
	prov, err := s.providerFor(name)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	detail, err := prov.GetPayment(ctx, paymentID)
	elapsed := time.Since(start)
	metrics.ObserveProviderRequest(string(name), "status", elapsed)

	if err != nil {
		if IsUpstream(err) {
			metrics.UpstreamErrors.WithLabelValues(string(name), "status").Inc()
		}
		logger.Error("Payment status retrieval failed", err, logger.LogContext{
			Provider:  string(name),
			PaymentID: paymentID,
		})
		return nil, err
	}

	detail.CanonicalStatus = Normalize(name, detail.Status)
	return detail, nil
}

// Refund refunds or voids a payment, dispatching by provider name. A
// non-positive amount requests a full refund.
func (s *PaymentService) Refund(ctx context.Context, name ProviderName, paymentID string, amount float64) (*RefundResult, error) {
	prov, err := s.providerFor(name)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := prov.Refund(ctx, paymentID, amount)
	elapsed := time.Since(start)
	metrics.ObserveProviderRequest(string(name), "refund", elapsed)

	entry := OperationLog{
		Provider:     string(name),
		Operation:    "refund",
		PaymentID:    paymentID,
		Amount:       amount,
		ProcessingMs: elapsed.Milliseconds(),
		Simulated:    s.cfg.Simulated,
	}

	if err != nil {
		if IsUpstream(err) {
			metrics.UpstreamErrors.WithLabelValues(string(name), "refund").Inc()
		}
		logger.Error("Refund failed", err, logger.LogContext{
			Provider:  string(name),
			PaymentID: paymentID,
		})
		entry.Error = err.Error()
		s.record(entry)
		return nil, err
	}

	entry.Status = result.Status
	s.record(entry)
	return result, nil
}

// ListBanks returns the participating PSE financial institutions.
func (s *PaymentService) ListBanks(ctx context.Context) ([]Bank, error) {
	lister, ok := s.providers[ProviderWompi].(BankLister)
	if !ok {
		return nil, fmt.Errorf("bank listing: %w", ErrUnsupportedProvider)
	}

	start := time.Now()
	banks, err := lister.ListBanks(ctx)
	metrics.ObserveProviderRequest(string(ProviderWompi), "banks", time.Since(start))
	if err != nil && IsUpstream(err) {
		metrics.UpstreamErrors.WithLabelValues(string(ProviderWompi), "banks").Inc()
	}
	return banks, err
}

// ConfirmSimulatedPayment transitions a simulated record to its
// provider-appropriate terminal approved status. Valid only in simulated
// mode; confirming an already-approved record is idempotent.
func (s *PaymentService) ConfirmSimulatedPayment(ctx context.Context, paymentID string) (*SimulatedPayment, error) {
	if !s.cfg.Simulated {
		return nil, ErrNotSimulated
	}

	record, err := s.store.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	terminal := "approved"
	if record.Provider == ProviderWompi {
		terminal = "APPROVED"
	}

	confirmed, err := s.store.Confirm(ctx, paymentID, terminal, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	logger.Info("Simulated payment confirmed", logger.LogContext{
		Provider:  string(confirmed.Provider),
		PaymentID: confirmed.ID,
		Fields:    map[string]any{"order_id": confirmed.OrderID},
	})
	return confirmed, nil
}

// ProcessWebhook converts a provider notification payload into a canonical
// event. An unrecognized payload shape yields (nil, nil), not an error.
func (s *PaymentService) ProcessWebhook(ctx context.Context, name ProviderName, payload []byte) (*WebhookEvent, error) {
	prov, err := s.providerFor(name)
	if err != nil {
		return nil, err
	}

	event, err := prov.ParseWebhook(ctx, payload)
	if err != nil {
		if IsUpstream(err) {
			metrics.UpstreamErrors.WithLabelValues(string(name), "webhook").Inc()
		}
		logger.Error("Webhook processing failed", err, logger.LogContext{Provider: string(name)})
		return nil, err
	}
	if event == nil {
		logger.Debug("Webhook payload ignored", logger.LogContext{Provider: string(name)})
		return nil, nil
	}

	metrics.WebhookEvents.WithLabelValues(string(name), string(event.Status)).Inc()
	logger.Info("Webhook event processed", logger.LogContext{
		Provider:  string(name),
		PaymentID: event.PaymentID,
		Fields: map[string]any{
			"order_id":   event.OrderID,
			"status":     string(event.Status),
			"raw_status": event.RawStatus,
		},
	})
	s.record(OperationLog{
		Provider:  string(name),
		Operation: "webhook",
		PaymentID: event.PaymentID,
		OrderID:   event.OrderID,
		Status:    string(event.Status),
		Amount:    event.Amount,
		Simulated: s.cfg.Simulated,
	})
	return event, nil
}

func (s *PaymentService) providerFor(name ProviderName) (PaymentProvider, error) {
	prov, ok := s.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q: %w", name, ErrUnsupportedProvider)
	}
	return prov, nil
}

func (s *PaymentService) mode() string {
	if s.cfg.Simulated {
		return "simulated"
	}
	return "live"
}

// record ships an operation entry to the event logger asynchronously;
// failures are logged and swallowed so payment flow never depends on it.
func (s *PaymentService) record(entry OperationLog) {
	if s.events == nil {
		return
	}
	if entry.RequestID == "" {
		entry.RequestID = uuid.NewString()
	}
	entry.Timestamp = time.Now().UTC()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.events.LogOperation(ctx, entry); err != nil {
			logger.Warn("Failed to record payment operation", logger.LogContext{
				Provider: entry.Provider,
				Fields:   map[string]any{"error": err.Error()},
			})
		}
	}()
}
