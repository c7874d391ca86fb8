package service

import (
	"context"
	"sync"

	"github.com/hospital-e/supply-node/internal/core/domain"
	"github.com/hospital-e/supply-node/internal/port"
)

// fakeStore is an in-memory port.Store that records operation order.
type fakeStore struct {
	mu          sync.Mutex
	stock       *domain.StockSnapshot
	orders      map[string]domain.Order
	alerts      []domain.Alert
	audits      []domain.AttemptRecord
	consumption []domain.ConsumptionRecord
	ops         []string

	getStockErr    error
	insertOrderErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{orders: make(map[string]domain.Order)}
}

func (f *fakeStore) record(op string) {
	f.ops = append(f.ops, op)
}

func (f *fakeStore) GetStock(ctx context.Context) (*domain.StockSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetStock")
	if f.getStockErr != nil {
		return nil, f.getStockErr
	}
	if f.stock == nil {
		return nil, nil
	}
	snap := *f.stock
	return &snap, nil
}

func (f *fakeStore) UpsertStock(ctx context.Context, snap domain.StockSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpsertStock")
	f.stock = &snap
	return nil
}

func (f *fakeStore) InsertOrder(ctx context.Context, order domain.Order) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("InsertOrder")
	if f.insertOrderErr != nil {
		return false, f.insertOrderErr
	}
	if _, exists := f.orders[order.OrderID]; exists {
		return false, nil
	}
	f.orders[order.OrderID] = order
	return true, nil
}

func (f *fakeStore) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateOrderStatus")
	order, exists := f.orders[orderID]
	if !exists || order.Status.Terminal() {
		return nil
	}
	order.Status = status
	f.orders[orderID] = order
	return nil
}

func (f *fakeStore) InsertAlert(ctx context.Context, alert domain.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("InsertAlert")
	f.alerts = append(f.alerts, alert)
	return nil
}

func (f *fakeStore) UnacknowledgedAlerts(ctx context.Context) ([]domain.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var open []domain.Alert
	for _, a := range f.alerts {
		if !a.Acknowledged {
			open = append(open, a)
		}
	}
	return open, nil
}

func (f *fakeStore) AcknowledgeAlert(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.alerts {
		if f.alerts[i].ID == id {
			f.alerts[i].Acknowledged = true
		}
	}
	return nil
}

func (f *fakeStore) AppendAudit(ctx context.Context, rec domain.AttemptRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AppendAudit")
	f.audits = append(f.audits, rec)
	return nil
}

func (f *fakeStore) RecentAudit(ctx context.Context, limit int) ([]domain.AttemptRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	records := make([]domain.AttemptRecord, len(f.audits))
	copy(records, f.audits)
	if len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records, nil
}

func (f *fakeStore) RecordConsumption(ctx context.Context, rec domain.ConsumptionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("RecordConsumption")
	f.consumption = append(f.consumption, rec)
	return nil
}

func (f *fakeStore) auditsOn(channel domain.Channel) []domain.AttemptRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []domain.AttemptRecord
	for _, rec := range f.audits {
		if rec.Channel == channel {
			matched = append(matched, rec)
		}
	}
	return matched
}

// fakeSyncChannel scripts the sync path's responses per attempt.
type fakeSyncChannel struct {
	mu      sync.Mutex
	calls   int
	respond func(attempt int) (*port.StockUpdateResponse, error)
}

func (f *fakeSyncChannel) SendStockUpdate(ctx context.Context, snap domain.StockSnapshot) (*port.StockUpdateResponse, error) {
	f.mu.Lock()
	f.calls++
	attempt := f.calls
	f.mu.Unlock()
	return f.respond(attempt)
}

func (f *fakeSyncChannel) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakePublisher is the async path stand-in.
type fakePublisher struct {
	mu     sync.Mutex
	calls  int
	err    error
	panics bool
	last   domain.InventoryLowEvent
}

func (f *fakePublisher) PublishInventoryLow(ctx context.Context, event domain.InventoryLowEvent) error {
	f.mu.Lock()
	f.calls++
	f.last = event
	f.mu.Unlock()
	if f.panics {
		panic("publisher exploded")
	}
	return f.err
}
