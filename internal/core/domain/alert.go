package domain

import "time"

// Alert is persisted once per detected breach. Consecutive breaching cycles
// each insert a fresh row; acknowledgment is the only mutation.
type Alert struct {
	ID               int64
	HospitalID       string
	Kind             BreachKind
	Severity         Severity
	CurrentStock     int
	DailyConsumption int
	DaysOfSupply     float64
	Threshold        float64
	Acknowledged     bool
	CreatedAt        time.Time
	AcknowledgedAt   *time.Time
}
