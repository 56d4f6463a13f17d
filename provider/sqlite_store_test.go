package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteSimulatedStore {
	t.Helper()
	store, err := NewSQLiteSimulatedStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteSimulatedStore(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	record := SimulatedPayment{
		ID:             "SIM-WP-xyz",
		OrderID:        "order-9",
		TrackingNumber: "TRK-9",
		Amount:         85000.50,
		Status:         "PENDING",
		Provider:       ProviderWompi,
		PaymentMethod:  "nequi",
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.Save(ctx, record))

	t.Run("get returns saved record", func(t *testing.T) {
		got, err := store.Get(ctx, "SIM-WP-xyz")
		require.NoError(t, err)
		assert.Equal(t, record.OrderID, got.OrderID)
		assert.Equal(t, record.Amount, got.Amount)
		assert.Equal(t, ProviderWompi, got.Provider)
		assert.Equal(t, "PENDING", got.Status)
		assert.Nil(t, got.FinalizedAt)
	})

	t.Run("get unknown id wraps ErrNotFound", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("confirm transitions and stamps finalized_at", func(t *testing.T) {
		got, err := store.Confirm(ctx, "SIM-WP-xyz", "APPROVED", time.Now().UTC())
		require.NoError(t, err)
		assert.Equal(t, "APPROVED", got.Status)
		assert.NotNil(t, got.FinalizedAt)
	})

	t.Run("confirm is idempotent", func(t *testing.T) {
		first, err := store.Get(ctx, "SIM-WP-xyz")
		require.NoError(t, err)

		again, err := store.Confirm(ctx, "SIM-WP-xyz", "DECLINED", time.Now().UTC().Add(time.Hour))
		require.NoError(t, err)
		// The update guards on finalized_at IS NULL, so the second confirm
		// leaves the record untouched.
		assert.Equal(t, "APPROVED", again.Status)
		assert.Equal(t, first.FinalizedAt.Unix(), again.FinalizedAt.Unix())
	})

	t.Run("confirm unknown id wraps ErrNotFound", func(t *testing.T) {
		_, err := store.Confirm(ctx, "missing", "APPROVED", time.Now().UTC())
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestSQLiteSimulatedStoreImplementsInterface(t *testing.T) {
	var _ SimulatedStore = (*SQLiteSimulatedStore)(nil)
	var _ SimulatedStore = (*InMemorySimulatedStore)(nil)
}
