package domain

import "time"

// ConsumptionRecord is one simulated day of consumption history. Keyed by
// (hospital, product, date); re-recording the same day is a no-op.
type ConsumptionRecord struct {
	HospitalID    string
	ProductCode   string
	Date          time.Time
	UnitsConsumed int
	OpeningStock  int
	ClosingStock  int
	DayOfWeek     string
	IsWeekend     bool
}
