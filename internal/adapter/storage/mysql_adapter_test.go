package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/hospital-e/supply-node/internal/core/domain"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/hospital_e?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	return db
}

func testOrder(id string) domain.Order {
	return domain.Order{
		OrderID:           id,
		CommandID:         "cmd-" + id,
		HospitalID:        "Test-Hospital",
		ProductCode:       "TEST-PRODUCT",
		Quantity:          340,
		Priority:          domain.PriorityHigh,
		Status:            domain.OrderStatusPending,
		EstimatedDelivery: time.Now().Add(48 * time.Hour),
		WarehouseID:       "CENTRAL-WAREHOUSE",
		ReceivedAt:        time.Now(),
	}
}

func TestUpsertStock_RoundTrip(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db, "Test-Hospital", "TEST-PRODUCT")
	defer db.ExecContext(ctx, `DELETE FROM stock WHERE hospital_id = 'Test-Hospital'`)

	snap := domain.StockSnapshot{
		HospitalID:            "Test-Hospital",
		ProductCode:           "TEST-PRODUCT",
		CurrentStockUnits:     612,
		DailyConsumptionUnits: 68,
		DaysOfSupply:          9.0,
	}
	if err := adapter.UpsertStock(ctx, snap); err != nil {
		t.Fatalf("UpsertStock failed: %v", err)
	}

	got, err := adapter.GetStock(ctx)
	if err != nil {
		t.Fatalf("GetStock failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a stock row")
	}
	if got.CurrentStockUnits != 612 || got.DaysOfSupply != 9.0 {
		t.Errorf("got %+v", got)
	}

	// Second upsert updates in place.
	snap.CurrentStockUnits = 544
	snap.DaysOfSupply = 8.0
	if err := adapter.UpsertStock(ctx, snap); err != nil {
		t.Fatalf("second UpsertStock failed: %v", err)
	}
	got, err = adapter.GetStock(ctx)
	if err != nil {
		t.Fatalf("GetStock failed: %v", err)
	}
	if got.CurrentStockUnits != 544 {
		t.Errorf("expected updated stock 544, got %d", got.CurrentStockUnits)
	}
}

func TestGetStock_NotInitialized(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	adapter := NewMySQLAdapter(db, "Nonexistent-Hospital", "NONEXISTENT-PRODUCT")
	got, err := adapter.GetStock(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Error("expected nil for an uninitialized hospital/product pair")
	}
}

func TestInsertOrder_DuplicateIsIgnored(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db, "Test-Hospital", "TEST-PRODUCT")

	order := testOrder("test-order-" + time.Now().Format("20060102150405"))
	defer db.ExecContext(ctx, `DELETE FROM orders WHERE order_id = ?`, order.OrderID)

	inserted, err := adapter.InsertOrder(ctx, order)
	if err != nil {
		t.Fatalf("InsertOrder failed: %v", err)
	}
	if !inserted {
		t.Fatal("first insert must report inserted")
	}

	inserted, err = adapter.InsertOrder(ctx, order)
	if err != nil {
		t.Fatalf("duplicate InsertOrder failed: %v", err)
	}
	if inserted {
		t.Error("duplicate insert must report not inserted")
	}

	var count int
	db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE order_id = ?`, order.OrderID).Scan(&count)
	if count != 1 {
		t.Errorf("orders in database = %d, want 1", count)
	}
}

func TestUpdateOrderStatus_TerminalGuard(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db, "Test-Hospital", "TEST-PRODUCT")

	order := testOrder("test-terminal-" + time.Now().Format("20060102150405"))
	defer db.ExecContext(ctx, `DELETE FROM orders WHERE order_id = ?`, order.OrderID)

	if _, err := adapter.InsertOrder(ctx, order); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if err := adapter.UpdateOrderStatus(ctx, order.OrderID, domain.OrderStatusDelivered); err != nil {
		t.Fatalf("UpdateOrderStatus failed: %v", err)
	}

	var delivered sql.NullTime
	db.QueryRowContext(ctx, `SELECT actual_delivery_date FROM orders WHERE order_id = ?`, order.OrderID).Scan(&delivered)
	if !delivered.Valid {
		t.Error("delivery must stamp actual_delivery_date")
	}

	err := adapter.UpdateOrderStatus(ctx, order.OrderID, domain.OrderStatusCancelled)
	if !errors.Is(err, ErrTerminalState) {
		t.Errorf("expected ErrTerminalState, got %v", err)
	}
}

func TestAlerts_InsertAndAcknowledge(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db, "Test-Hospital", "TEST-PRODUCT")
	defer db.ExecContext(ctx, `DELETE FROM alerts WHERE hospital_id = 'Test-Hospital'`)

	alert := domain.Alert{
		HospitalID:       "Test-Hospital",
		Kind:             domain.BreachCritical,
		Severity:         domain.SeverityUrgent,
		CurrentStock:     34,
		DailyConsumption: 68,
		DaysOfSupply:     0.5,
		Threshold:        2.0,
	}
	if err := adapter.InsertAlert(ctx, alert); err != nil {
		t.Fatalf("InsertAlert failed: %v", err)
	}

	open, err := adapter.UnacknowledgedAlerts(ctx)
	if err != nil {
		t.Fatalf("UnacknowledgedAlerts failed: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("open alerts = %d, want 1", len(open))
	}
	if open[0].Kind != domain.BreachCritical || open[0].Acknowledged {
		t.Errorf("alert = %+v", open[0])
	}

	if err := adapter.AcknowledgeAlert(ctx, open[0].ID); err != nil {
		t.Fatalf("AcknowledgeAlert failed: %v", err)
	}

	open, err = adapter.UnacknowledgedAlerts(ctx)
	if err != nil {
		t.Fatalf("UnacknowledgedAlerts failed: %v", err)
	}
	if len(open) != 0 {
		t.Errorf("open alerts after acknowledge = %d, want 0", len(open))
	}
}

func TestAudit_AppendAndReadBack(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db, "Test-Hospital", "TEST-PRODUCT")

	rec := domain.AttemptRecord{
		EventType:   domain.EventStockUpdateSent,
		Direction:   domain.DirectionOutgoing,
		Channel:     domain.ChannelSync,
		Attempt:     2,
		Outcome:     domain.OutcomeTimeout,
		ErrorDetail: "deadline exceeded",
		Latency:     1500 * time.Millisecond,
		Payload:     `{"hospitalId":"Test-Hospital"}`,
		At:          time.Now(),
	}
	if err := adapter.AppendAudit(ctx, rec); err != nil {
		t.Fatalf("AppendAudit failed: %v", err)
	}

	records, err := adapter.RecentAudit(ctx, 5)
	if err != nil {
		t.Fatalf("RecentAudit failed: %v", err)
	}
	if len(records) == 0 {
		t.Fatal("expected at least one audit record")
	}

	got := records[0]
	if got.Outcome != domain.OutcomeTimeout || got.Attempt != 2 {
		t.Errorf("latest record = %+v", got)
	}
	if got.ErrorDetail != "deadline exceeded" {
		t.Errorf("error detail = %q", got.ErrorDetail)
	}
	if got.Latency != 1500*time.Millisecond {
		t.Errorf("latency = %v, want 1.5s", got.Latency)
	}
}

func TestRecordConsumption_SameDayIsNoOp(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db, "Test-Hospital", "TEST-PRODUCT")
	defer db.ExecContext(ctx, `DELETE FROM consumption_history WHERE hospital_id = 'Test-Hospital'`)

	rec := domain.ConsumptionRecord{
		HospitalID:    "Test-Hospital",
		ProductCode:   "TEST-PRODUCT",
		Date:          time.Now(),
		UnitsConsumed: 68,
		OpeningStock:  680,
		ClosingStock:  612,
		DayOfWeek:     "Wednesday",
		IsWeekend:     false,
	}
	if err := adapter.RecordConsumption(ctx, rec); err != nil {
		t.Fatalf("RecordConsumption failed: %v", err)
	}
	if err := adapter.RecordConsumption(ctx, rec); err != nil {
		t.Fatalf("re-recording the same day failed: %v", err)
	}

	var count int
	db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM consumption_history
		WHERE hospital_id = 'Test-Hospital' AND product_code = 'TEST-PRODUCT'`).Scan(&count)
	if count != 1 {
		t.Errorf("history rows = %d, want 1", count)
	}
}
