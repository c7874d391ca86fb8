package domain

import "time"

// StockSnapshot is the state of one product's inventory at a point in time.
// DaysOfSupply is always recomputed from the other two values, never mutated
// independently.
type StockSnapshot struct {
	HospitalID            string
	ProductCode           string
	CurrentStockUnits     int
	DailyConsumptionUnits int
	DaysOfSupply          float64
	AsOf                  time.Time
}

type BreachKind string

const (
	BreachNone       BreachKind = "NONE"
	BreachLow        BreachKind = "LOW"
	BreachCritical   BreachKind = "CRITICAL"
	BreachOutOfStock BreachKind = "OUT_OF_STOCK"
)

type Severity string

const (
	SeverityNone   Severity = "NONE"
	SeverityHigh   Severity = "HIGH"
	SeverityUrgent Severity = "URGENT"
)

// Classification is the result of evaluating a snapshot against a
// days-of-supply threshold. It is a transient value with no identity.
type Classification struct {
	Breached bool
	Kind     BreachKind
	Severity Severity
}
