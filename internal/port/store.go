package port

import (
	"context"

	"github.com/hospital-e/supply-node/internal/core/domain"
)

// Store is the persistence collaborator. Every method is one atomic write or
// read; writes are either append-only or keyed idempotent upserts, so callers
// never need cross-row coordination.
type Store interface {
	// GetStock returns the current stock row, or nil when none exists yet
	GetStock(ctx context.Context) (*domain.StockSnapshot, error)

	// UpsertStock creates or replaces the stock row for the snapshot's key
	UpsertStock(ctx context.Context, snap domain.StockSnapshot) error

	// InsertOrder persists a new order keyed by orderId. Returns false when a
	// row with that key already exists; the insert is then a no-op.
	InsertOrder(ctx context.Context, order domain.Order) (inserted bool, err error)

	// UpdateOrderStatus transitions an order. Transitions out of a terminal
	// state are rejected.
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error

	// InsertAlert appends a new unacknowledged alert row
	InsertAlert(ctx context.Context, alert domain.Alert) error

	// UnacknowledgedAlerts lists open alerts, newest first
	UnacknowledgedAlerts(ctx context.Context) ([]domain.Alert, error)

	// AcknowledgeAlert marks one alert acknowledged
	AcknowledgeAlert(ctx context.Context, id int64) error

	// AppendAudit appends one delivery attempt record to the event log
	AppendAudit(ctx context.Context, rec domain.AttemptRecord) error

	// RecentAudit returns the latest event log entries, newest first
	RecentAudit(ctx context.Context, limit int) ([]domain.AttemptRecord, error)

	// RecordConsumption appends one day of consumption history; a duplicate
	// day is a no-op
	RecordConsumption(ctx context.Context, rec domain.ConsumptionRecord) error
}
