package service

import (
	"math"

	"github.com/hospital-e/supply-node/internal/core/domain"
)

// DaysOfSupply returns remaining days of supply rounded to two decimals.
// A zero consumption rate means infinite supply while any stock remains.
func DaysOfSupply(currentStock, dailyConsumption int) float64 {
	if dailyConsumption <= 0 {
		if currentStock > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return math.Round(float64(currentStock)/float64(dailyConsumption)*100) / 100
}

// Classify evaluates a stock level against a days-of-supply threshold.
// Every boundary is strictly less-than: days exactly equal to a cut point do
// not breach that tier. Pure and safe for concurrent use.
func Classify(currentStock, dailyConsumption int, thresholdDays float64) domain.Classification {
	days := DaysOfSupply(currentStock, dailyConsumption)

	switch {
	case math.IsInf(days, 1):
		return domain.Classification{Kind: domain.BreachNone, Severity: domain.SeverityNone}
	case days <= 0:
		return domain.Classification{Breached: true, Kind: domain.BreachOutOfStock, Severity: domain.SeverityUrgent}
	case days < 1.0:
		return domain.Classification{Breached: true, Kind: domain.BreachCritical, Severity: domain.SeverityUrgent}
	case days < thresholdDays:
		return domain.Classification{Breached: true, Kind: domain.BreachLow, Severity: domain.SeverityHigh}
	default:
		return domain.Classification{Kind: domain.BreachNone, Severity: domain.SeverityNone}
	}
}
