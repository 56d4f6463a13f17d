package provider

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// SimulatedPayment is a fake payment record created by the simulated paths of
// the provider adapters. Status keeps each provider's native vocabulary even
// in simulation: lower-case "pending"/"approved" for Mercado Pago records,
// upper-case "PENDING"/"APPROVED" for Wompi ones.
type SimulatedPayment struct {
	ID             string       `json:"id"`
	OrderID        string       `json:"orderId"`
	TrackingNumber string       `json:"trackingNumber"`
	Amount         float64      `json:"amount"`
	Status         string       `json:"status"`
	Provider       ProviderName `json:"provider"`
	PaymentMethod  string       `json:"paymentMethod,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
	FinalizedAt    *time.Time   `json:"finalizedAt,omitempty"`
}

// SimulatedStore keeps simulated payment records for the lifetime of the
// process (or longer, for persistent implementations). Records are created
// pending, transitioned at most once to a terminal approved status by
// Confirm, and never deleted.
type SimulatedStore interface {
	// Save stores a new record.
	Save(ctx context.Context, record SimulatedPayment) error

	// Get returns the record for id, or an error wrapping ErrNotFound.
	Get(ctx context.Context, id string) (*SimulatedPayment, error)

	// Confirm transitions the record to the given terminal status and stamps
	// FinalizedAt. Confirming an already-finalized record is idempotent: the
	// stored record is returned unchanged.
	Confirm(ctx context.Context, id, status string, at time.Time) (*SimulatedPayment, error)
}

// InMemorySimulatedStore is the default, explicitly non-durable store.
// Safe for concurrent use.
type InMemorySimulatedStore struct {
	mu      sync.RWMutex
	records map[string]SimulatedPayment
}

// NewInMemorySimulatedStore creates an empty in-memory store.
func NewInMemorySimulatedStore() *InMemorySimulatedStore {
	return &InMemorySimulatedStore{
		records: make(map[string]SimulatedPayment),
	}
}

// Save stores a new record.
func (s *InMemorySimulatedStore) Save(_ context.Context, record SimulatedPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record
	return nil
}

// Get returns a copy of the record for id.
func (s *InMemorySimulatedStore) Get(_ context.Context, id string) (*SimulatedPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("simulated payment %q: %w", id, ErrNotFound)
	}
	return &record, nil
}

// Confirm applies the single pending -> approved transition.
func (s *InMemorySimulatedStore) Confirm(_ context.Context, id, status string, at time.Time) (*SimulatedPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("simulated payment %q: %w", id, ErrNotFound)
	}

	if record.FinalizedAt != nil {
		// Already confirmed: idempotent.
		return &record, nil
	}

	record.Status = status
	record.FinalizedAt = &at
	s.records[id] = record
	return &record, nil
}
