package provider

import (
	"context"
	"time"

	"github.com/andeanlabs/pagoflow/infra/opensearch"
)

const operationsIndex = "pagoflow-payments"

// OperationLog is one payment operation record kept for reconciliation.
type OperationLog struct {
	Timestamp    time.Time `json:"timestamp"`
	RequestID    string    `json:"request_id"`
	Provider     string    `json:"provider"`
	Operation    string    `json:"operation"`
	PaymentID    string    `json:"payment_id,omitempty"`
	OrderID      string    `json:"order_id,omitempty"`
	Method       string    `json:"method,omitempty"`
	Status       string    `json:"status,omitempty"`
	Amount       float64   `json:"amount,omitempty"`
	ProcessingMs int64     `json:"processing_ms,omitempty"`
	Simulated    bool      `json:"simulated"`
	Error        string    `json:"error,omitempty"`
}

// EventLogger records payment operations for later reconciliation.
type EventLogger interface {
	LogOperation(ctx context.Context, entry OperationLog) error
}

// OpenSearchEventLogger indexes operation records into OpenSearch.
type OpenSearchEventLogger struct {
	client *opensearch.Client
}

// NewOpenSearchEventLogger creates an event logger over the given client and
// makes sure the operations index exists.
func NewOpenSearchEventLogger(client *opensearch.Client) *OpenSearchEventLogger {
	l := &OpenSearchEventLogger{client: client}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = client.EnsureIndex(ctx, operationsIndex, operationsMapping)
	return l
}

// LogOperation indexes a single operation record.
func (l *OpenSearchEventLogger) LogOperation(ctx context.Context, entry OperationLog) error {
	return l.client.Index(ctx, operationsIndex, entry)
}

const operationsMapping = `{
	"mappings": {
		"properties": {
			"timestamp":     {"type": "date"},
			"request_id":    {"type": "keyword"},
			"provider":      {"type": "keyword"},
			"operation":     {"type": "keyword"},
			"payment_id":    {"type": "keyword"},
			"order_id":      {"type": "keyword"},
			"method":        {"type": "keyword"},
			"status":        {"type": "keyword"},
			"amount":        {"type": "double"},
			"processing_ms": {"type": "long"},
			"simulated":     {"type": "boolean"},
			"error":         {"type": "text"}
		}
	},
	"settings": {
		"number_of_shards": 1,
		"number_of_replicas": 0
	}
}`
