package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedMethod is returned when CreatePayment receives a payment
	// method outside the documented enumeration.
	ErrUnsupportedMethod = errors.New("unsupported payment method")

	// ErrUnsupportedProvider is returned when an operation is dispatched to a
	// provider name outside the closed {mercadopago, wompi, cash} set.
	ErrUnsupportedProvider = errors.New("unsupported payment provider")

	// ErrNotSimulated is returned when a simulated-only operation is invoked
	// while the service runs against live gateways.
	ErrNotSimulated = errors.New("operation only available in simulated mode")

	// ErrNotFound is returned when a simulated payment id is unknown.
	ErrNotFound = errors.New("payment not found")
)

// UpstreamError wraps any failed call to a provider: network failure, non-2xx
// response or malformed response. Adapters never suppress these; they are
// logged with context and re-raised for the caller to decide on messaging.
type UpstreamError struct {
	Provider ProviderName
	Op       string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError builds an UpstreamError for the given provider operation.
func NewUpstreamError(provider ProviderName, op string, err error) *UpstreamError {
	return &UpstreamError{Provider: provider, Op: op, Err: err}
}

// IsUpstream reports whether err originated from a provider call.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
