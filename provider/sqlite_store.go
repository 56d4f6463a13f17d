package provider

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteSimulatedStore is an optional durable SimulatedStore backed by
// SQLite. The in-memory store stays the default; this one is for deployments
// that want simulated payments to survive restarts.
type SQLiteSimulatedStore struct {
	db *sql.DB
}

// NewSQLiteSimulatedStore opens (creating if needed) the database at dbPath
// and prepares the schema. Use ":memory:" for an ephemeral database.
func NewSQLiteSimulatedStore(dbPath string) (*SQLiteSimulatedStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", dbPath, err)
		}
		// WAL keeps readers unblocked while a confirmation writes.
		dbPath += "?_journal_mode=WAL&_synchronous=NORMAL&_timeout=20000"
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	store := &SQLiteSimulatedStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteSimulatedStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS simulated_payments (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL,
		tracking_number TEXT NOT NULL,
		amount REAL NOT NULL,
		status TEXT NOT NULL,
		provider TEXT NOT NULL,
		payment_method TEXT,
		created_at DATETIME NOT NULL,
		finalized_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_simulated_order ON simulated_payments(order_id);
	`
	_, err := s.db.Exec(query)
	return err
}

// Save stores a new record.
func (s *SQLiteSimulatedStore) Save(ctx context.Context, record SimulatedPayment) error {
	query := `
	INSERT INTO simulated_payments
		(id, order_id, tracking_number, amount, status, provider, payment_method, created_at, finalized_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	err := s.retryBusy(func() error {
		_, execErr := s.db.ExecContext(ctx, query,
			record.ID, record.OrderID, record.TrackingNumber, record.Amount,
			record.Status, string(record.Provider), record.PaymentMethod,
			record.CreatedAt, record.FinalizedAt)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to save simulated payment %s: %w", record.ID, err)
	}
	return nil
}

// Get returns the record for id.
func (s *SQLiteSimulatedStore) Get(ctx context.Context, id string) (*SimulatedPayment, error) {
	query := `
	SELECT id, order_id, tracking_number, amount, status, provider, payment_method, created_at, finalized_at
	FROM simulated_payments WHERE id = ?
	`
	var record SimulatedPayment
	var providerName string
	var finalizedAt sql.NullTime

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID, &record.OrderID, &record.TrackingNumber, &record.Amount,
		&record.Status, &providerName, &record.PaymentMethod,
		&record.CreatedAt, &finalizedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("simulated payment %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load simulated payment %s: %w", id, err)
	}

	record.Provider = ProviderName(providerName)
	if finalizedAt.Valid {
		record.FinalizedAt = &finalizedAt.Time
	}
	return &record, nil
}

// Confirm applies the single pending -> approved transition; confirming an
// already-finalized record is idempotent.
func (s *SQLiteSimulatedStore) Confirm(ctx context.Context, id, status string, at time.Time) (*SimulatedPayment, error) {
	query := `
	UPDATE simulated_payments
	SET status = ?, finalized_at = ?
	WHERE id = ? AND finalized_at IS NULL
	`
	err := s.retryBusy(func() error {
		_, execErr := s.db.ExecContext(ctx, query, status, at, id)
		return execErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to confirm simulated payment %s: %w", id, err)
	}
	return s.Get(ctx, id)
}

// Close closes the underlying database.
func (s *SQLiteSimulatedStore) Close() error {
	return s.db.Close()
}

// retryBusy retries writes that hit SQLITE_BUSY with a short backoff.
func (s *SQLiteSimulatedStore) retryBusy(operation func() error) error {
	const maxRetries = 3
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "SQLITE_BUSY") && !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(time.Duration(10*(1<<attempt)) * time.Millisecond)
	}
	return fmt.Errorf("operation failed after %d retries: %w", maxRetries+1, lastErr)
}
