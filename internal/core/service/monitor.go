package service

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hospital-e/supply-node/internal/core/domain"
	"github.com/hospital-e/supply-node/internal/port"
)

// Monitor owns the consumption/notification cycle: advance the simulation,
// persist the new stock state, classify it, and hand breaches to the
// notifier. One instance is constructed at startup and shared by the loop
// and the operator surface.
type Monitor struct {
	store    port.Store
	sim      *Simulator
	notifier *Notifier
	log      *logrus.Logger

	hospitalID    string
	productCode   string
	dailyRate     int
	initialStock  int
	thresholdDays float64

	now func() time.Time
}

func NewMonitor(
	store port.Store,
	sim *Simulator,
	notifier *Notifier,
	log *logrus.Logger,
	hospitalID, productCode string,
	dailyRate, initialStock int,
	thresholdDays float64,
) *Monitor {
	return &Monitor{
		store:         store,
		sim:           sim,
		notifier:      notifier,
		log:           log,
		hospitalID:    hospitalID,
		productCode:   productCode,
		dailyRate:     dailyRate,
		initialStock:  initialStock,
		thresholdDays: thresholdDays,
		now:           time.Now,
	}
}

// CycleResult summarizes one simulated period.
type CycleResult struct {
	PreviousStock     int           `json:"previousStock"`
	Consumed          int           `json:"consumed"`
	CurrentStock      int           `json:"currentStock"`
	DaysOfSupply      float64       `json:"daysOfSupply"`
	ThresholdBreached bool          `json:"thresholdBreached"`
	Kind              string        `json:"alertType,omitempty"`
	Severity          string        `json:"severity,omitempty"`
	Notification      *NotifyResult `json:"communicationResult,omitempty"`
}

// StatusReport is the operator-facing view of the current stock row.
type StatusReport struct {
	HospitalID       string   `json:"hospitalId"`
	ProductCode      string   `json:"productCode"`
	CurrentStock     int      `json:"currentStock"`
	DailyConsumption int      `json:"dailyConsumption"`
	DaysOfSupply     *float64 `json:"daysOfSupply"`
	Threshold        float64  `json:"threshold"`
	Status           string   `json:"status"`
	LastUpdated      string   `json:"lastUpdated,omitempty"`
}

// RunCycle simulates one period of consumption, persists the result, and
// notifies on breach. Errors from history recording and notification do not
// fail the cycle; only stock reads/writes can.
func (m *Monitor) RunCycle(ctx context.Context) (*CycleResult, error) {
	stock, err := m.store.GetStock(ctx)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		stock, err = m.initializeStock(ctx)
		if err != nil {
			return nil, err
		}
	}

	today := m.now()
	weekday := today.Weekday()
	isWeekend := weekday == time.Saturday || weekday == time.Sunday

	prior := stock.CurrentStockUnits
	newStock, consumed := m.sim.Advance(prior, m.dailyRate, isWeekend)

	// Days of supply uses the published daily rate, not the fluctuating
	// simulated draw, so the displayed figure stays stable.
	days := DaysOfSupply(newStock, m.dailyRate)

	snap := domain.StockSnapshot{
		HospitalID:            m.hospitalID,
		ProductCode:           m.productCode,
		CurrentStockUnits:     newStock,
		DailyConsumptionUnits: m.dailyRate,
		DaysOfSupply:          days,
		AsOf:                  today.UTC(),
	}
	if err := m.store.UpsertStock(ctx, snap); err != nil {
		return nil, err
	}

	if err := m.store.RecordConsumption(ctx, domain.ConsumptionRecord{
		HospitalID:    m.hospitalID,
		ProductCode:   m.productCode,
		Date:          today,
		UnitsConsumed: consumed,
		OpeningStock:  prior,
		ClosingStock:  newStock,
		DayOfWeek:     weekday.String(),
		IsWeekend:     isWeekend,
	}); err != nil {
		m.log.WithError(err).Error("failed to record consumption history")
	}

	m.log.WithFields(logrus.Fields{
		"previous_stock": prior,
		"consumed":       consumed,
		"current_stock":  newStock,
		"days_of_supply": days,
	}).Info("stock updated")

	cls := Classify(newStock, m.dailyRate, m.thresholdDays)
	result := &CycleResult{
		PreviousStock:     prior,
		Consumed:          consumed,
		CurrentStock:      newStock,
		DaysOfSupply:      days,
		ThresholdBreached: cls.Breached,
	}
	if cls.Breached {
		result.Kind = string(cls.Kind)
		result.Severity = string(cls.Severity)
		notify := m.notifier.Notify(ctx, snap, cls, m.thresholdDays)
		result.Notification = &notify
	}
	return result, nil
}

// TriggerCheckNow runs a single cycle outside the schedule.
func (m *Monitor) TriggerCheckNow(ctx context.Context) (*CycleResult, error) {
	m.log.Info("manual stock check triggered")
	return m.RunCycle(ctx)
}

// Status reports the current stock row without advancing the simulation.
func (m *Monitor) Status(ctx context.Context) (*StatusReport, error) {
	stock, err := m.store.GetStock(ctx)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return &StatusReport{
			HospitalID:  m.hospitalID,
			ProductCode: m.productCode,
			Threshold:   m.thresholdDays,
			Status:      "not_initialized",
		}, nil
	}

	report := &StatusReport{
		HospitalID:       stock.HospitalID,
		ProductCode:      stock.ProductCode,
		CurrentStock:     stock.CurrentStockUnits,
		DailyConsumption: stock.DailyConsumptionUnits,
		Threshold:        m.thresholdDays,
		LastUpdated:      stock.AsOf.UTC().Format(time.RFC3339),
	}
	if !math.IsInf(stock.DaysOfSupply, 1) {
		days := stock.DaysOfSupply
		report.DaysOfSupply = &days
	}
	switch {
	case stock.DaysOfSupply < 1.0:
		report.Status = "critical"
	case stock.DaysOfSupply < m.thresholdDays:
		report.Status = "low"
	default:
		report.Status = "adequate"
	}
	return report, nil
}

// Run executes cycles at the given interval until ctx is canceled. Cycle
// errors are logged and the loop continues at the same cadence.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	m.log.WithFields(logrus.Fields{
		"hospital":  m.hospitalID,
		"product":   m.productCode,
		"threshold": m.thresholdDays,
		"interval":  interval.String(),
	}).Info("starting stock monitor")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := m.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			m.log.WithError(err).Error("monitor cycle failed")
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			m.log.Info("stock monitor stopped")
			return
		}
	}
}

func (m *Monitor) initializeStock(ctx context.Context) (*domain.StockSnapshot, error) {
	snap := domain.StockSnapshot{
		HospitalID:            m.hospitalID,
		ProductCode:           m.productCode,
		CurrentStockUnits:     m.initialStock,
		DailyConsumptionUnits: m.dailyRate,
		DaysOfSupply:          DaysOfSupply(m.initialStock, m.dailyRate),
		AsOf:                  m.now().UTC(),
	}
	if err := m.store.UpsertStock(ctx, snap); err != nil {
		return nil, err
	}
	m.log.WithField("initial_stock", m.initialStock).Info("stock initialized")
	return &snap, nil
}
