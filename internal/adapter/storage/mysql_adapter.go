package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/hospital-e/supply-node/internal/core/domain"
)

var ErrTerminalState = errors.New("order is in a terminal state")

// MySQLAdapter implements port.Store. The hospital/product pair is fixed at
// construction; every query is scoped to it.
type MySQLAdapter struct {
	db          *sql.DB
	hospitalID  string
	productCode string
}

func NewMySQLAdapter(db *sql.DB, hospitalID, productCode string) *MySQLAdapter {
	return &MySQLAdapter{db: db, hospitalID: hospitalID, productCode: productCode}
}

func (m *MySQLAdapter) GetStock(ctx context.Context) (*domain.StockSnapshot, error) {
	var snap domain.StockSnapshot
	var days sql.NullFloat64
	err := m.db.QueryRowContext(ctx, `
		SELECT hospital_id, product_code, current_stock_units, daily_consumption_units, days_of_supply, last_updated
		FROM stock WHERE hospital_id = ? AND product_code = ?`,
		m.hospitalID, m.productCode,
	).Scan(&snap.HospitalID, &snap.ProductCode, &snap.CurrentStockUnits, &snap.DailyConsumptionUnits, &days, &snap.AsOf)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query stock: %w", err)
	}

	if days.Valid {
		snap.DaysOfSupply = days.Float64
	} else {
		// NULL marks infinite supply: zero consumption rate with stock on hand.
		snap.DaysOfSupply = math.Inf(1)
	}
	return &snap, nil
}

func (m *MySQLAdapter) UpsertStock(ctx context.Context, snap domain.StockSnapshot) error {
	days := sql.NullFloat64{Float64: snap.DaysOfSupply, Valid: !math.IsInf(snap.DaysOfSupply, 1)}
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO stock (hospital_id, product_code, current_stock_units, daily_consumption_units, days_of_supply, last_updated)
		VALUES (?, ?, ?, ?, ?, NOW())
		ON DUPLICATE KEY UPDATE
			current_stock_units = VALUES(current_stock_units),
			daily_consumption_units = VALUES(daily_consumption_units),
			days_of_supply = VALUES(days_of_supply),
			last_updated = NOW()`,
		snap.HospitalID, snap.ProductCode, snap.CurrentStockUnits, snap.DailyConsumptionUnits, days,
	)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) InsertOrder(ctx context.Context, order domain.Order) (bool, error) {
	result, err := m.db.ExecContext(ctx, `
		INSERT IGNORE INTO orders (order_id, command_id, hospital_id, product_code, order_quantity, priority, order_status, estimated_delivery_date, warehouse_id, received_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.OrderID, order.CommandID, order.HospitalID, order.ProductCode,
		order.Quantity, order.Priority, order.Status, order.EstimatedDelivery,
		order.WarehouseID, order.ReceivedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert order: %w", err)
	}

	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (m *MySQLAdapter) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE orders
		SET order_status = ?,
			actual_delivery_date = CASE WHEN ? = 'DELIVERED' THEN NOW() ELSE actual_delivery_date END
		WHERE order_id = ? AND order_status NOT IN ('DELIVERED', 'CANCELLED')`,
		status, status, orderID,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrTerminalState
	}
	return nil
}

func (m *MySQLAdapter) InsertAlert(ctx context.Context, alert domain.Alert) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO alerts (hospital_id, alert_type, severity, current_stock, daily_consumption, days_of_supply, threshold, acknowledged, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, FALSE, NOW())`,
		alert.HospitalID, alert.Kind, alert.Severity, alert.CurrentStock,
		alert.DailyConsumption, alert.DaysOfSupply, alert.Threshold,
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) UnacknowledgedAlerts(ctx context.Context) ([]domain.Alert, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT alert_id, hospital_id, alert_type, severity, current_stock, daily_consumption, days_of_supply, threshold, acknowledged, created_at
		FROM alerts
		WHERE hospital_id = ? AND acknowledged = FALSE
		ORDER BY created_at DESC`,
		m.hospitalID,
	)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		var a domain.Alert
		if err := rows.Scan(&a.ID, &a.HospitalID, &a.Kind, &a.Severity, &a.CurrentStock,
			&a.DailyConsumption, &a.DaysOfSupply, &a.Threshold, &a.Acknowledged, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (m *MySQLAdapter) AcknowledgeAlert(ctx context.Context, id int64) error {
	_, err := m.db.ExecContext(ctx, `
		UPDATE alerts SET acknowledged = TRUE, acknowledged_at = NOW()
		WHERE alert_id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("acknowledge alert: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) AppendAudit(ctx context.Context, rec domain.AttemptRecord) error {
	latency := sql.NullInt64{Int64: rec.Latency.Milliseconds(), Valid: rec.Latency > 0}
	errDetail := sql.NullString{String: rec.ErrorDetail, Valid: rec.ErrorDetail != ""}
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO event_log (event_type, direction, channel, attempt, outcome, error_detail, latency_ms, payload, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.EventType, rec.Direction, rec.Channel, rec.Attempt, rec.Outcome,
		errDetail, latency, rec.Payload, rec.At,
	)
	if err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) RecentAudit(ctx context.Context, limit int) ([]domain.AttemptRecord, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT event_id, event_type, direction, channel, attempt, outcome, error_detail, latency_ms, payload, occurred_at
		FROM event_log
		ORDER BY occurred_at DESC, event_id DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit: %w", err)
	}
	defer rows.Close()

	var records []domain.AttemptRecord
	for rows.Next() {
		var rec domain.AttemptRecord
		var errDetail sql.NullString
		var latency sql.NullInt64
		if err := rows.Scan(&rec.ID, &rec.EventType, &rec.Direction, &rec.Channel, &rec.Attempt,
			&rec.Outcome, &errDetail, &latency, &rec.Payload, &rec.At); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		rec.ErrorDetail = errDetail.String
		if latency.Valid {
			rec.Latency = time.Duration(latency.Int64) * time.Millisecond
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (m *MySQLAdapter) RecordConsumption(ctx context.Context, rec domain.ConsumptionRecord) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT IGNORE INTO consumption_history (hospital_id, product_code, consumption_date, units_consumed, opening_stock, closing_stock, day_of_week, is_weekend)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.HospitalID, rec.ProductCode, rec.Date.Format("2006-01-02"),
		rec.UnitsConsumed, rec.OpeningStock, rec.ClosingStock, rec.DayOfWeek, rec.IsWeekend,
	)
	if err != nil {
		return fmt.Errorf("record consumption: %w", err)
	}
	return nil
}
