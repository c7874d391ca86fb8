package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hospital-e/supply-node/internal/core/domain"
	"github.com/hospital-e/supply-node/internal/port"
)

// Notifier drives the two delivery channels for a breach. The sync path
// retries with a fixed, interruptible delay; the async path is single-shot.
// The two run concurrently and neither can abort or delay the other.
type Notifier struct {
	syncChannel port.SyncChannel
	events      port.EventPublisher
	store       port.Store
	log         *logrus.Logger
	retryCount  int
	retryDelay  time.Duration
}

type NotifyResult struct {
	SyncOK      bool   `json:"syncOk"`
	SyncDetail  string `json:"syncDetail"`
	AsyncOK     bool   `json:"asyncOk"`
	AsyncDetail string `json:"asyncDetail"`
}

func NewNotifier(
	syncChannel port.SyncChannel,
	events port.EventPublisher,
	store port.Store,
	log *logrus.Logger,
	retryCount int,
	retryDelay time.Duration,
) *Notifier {
	return &Notifier{
		syncChannel: syncChannel,
		events:      events,
		store:       store,
		log:         log,
		retryCount:  retryCount,
		retryDelay:  retryDelay,
	}
}

// Notify records the alert, then launches both deliveries and waits for both.
// A panic inside one path is converted to a failed outcome for that path only.
func (n *Notifier) Notify(ctx context.Context, snap domain.StockSnapshot, cls domain.Classification, thresholdDays float64) NotifyResult {
	alert := domain.Alert{
		HospitalID:       snap.HospitalID,
		Kind:             cls.Kind,
		Severity:         cls.Severity,
		CurrentStock:     snap.CurrentStockUnits,
		DailyConsumption: snap.DailyConsumptionUnits,
		DaysOfSupply:     snap.DaysOfSupply,
		Threshold:        thresholdDays,
	}
	if err := n.store.InsertAlert(ctx, alert); err != nil {
		n.log.WithError(err).Error("failed to insert alert")
	}

	n.log.WithFields(logrus.Fields{
		"kind":           cls.Kind,
		"severity":       cls.Severity,
		"stock":          snap.CurrentStockUnits,
		"days_of_supply": snap.DaysOfSupply,
	}).Warn("threshold breach, triggering dual-path notification")

	var res NotifyResult
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				res.SyncOK = false
				res.SyncDetail = fmt.Sprintf("panic: %v", r)
				n.log.WithField("channel", domain.ChannelSync).Errorf("sync delivery panicked: %v", r)
			}
		}()
		res.SyncOK, res.SyncDetail = n.deliverSync(ctx, snap)
	}()

	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				res.AsyncOK = false
				res.AsyncDetail = fmt.Sprintf("panic: %v", r)
				n.log.WithField("channel", domain.ChannelAsync).Errorf("async publish panicked: %v", r)
			}
		}()
		res.AsyncOK, res.AsyncDetail = n.deliverAsync(ctx, snap, thresholdDays)
	}()

	wg.Wait()
	return res
}

func (n *Notifier) deliverSync(ctx context.Context, snap domain.StockSnapshot) (bool, string) {
	payload, _ := json.Marshal(map[string]any{
		"hospitalId":            snap.HospitalID,
		"productCode":           snap.ProductCode,
		"currentStockUnits":     snap.CurrentStockUnits,
		"dailyConsumptionUnits": snap.DailyConsumptionUnits,
		"daysOfSupply":          snap.DaysOfSupply,
		"timestamp":             snap.AsOf.UTC().Format(time.RFC3339),
	})

	for attempt := 1; attempt <= n.retryCount; attempt++ {
		start := time.Now()
		resp, err := n.syncChannel.SendStockUpdate(ctx, snap)
		latency := time.Since(start)

		if err == nil {
			n.appendAudit(ctx, domain.AttemptRecord{
				EventType: domain.EventStockUpdateSent,
				Direction: domain.DirectionOutgoing,
				Channel:   domain.ChannelSync,
				Attempt:   attempt,
				Outcome:   domain.OutcomeSuccess,
				Latency:   latency,
				Payload:   string(payload),
				At:        time.Now().UTC(),
			})
			detail := resp.Message
			if resp.OrderTriggered {
				detail = fmt.Sprintf("%s (order %s triggered)", resp.Message, resp.OrderID)
			}
			n.log.WithFields(logrus.Fields{
				"attempt":    attempt,
				"latency_ms": latency.Milliseconds(),
			}).Info("sync stock update delivered")
			return true, detail
		}

		outcome := domain.OutcomeFailure
		var terr *port.TransportError
		if errors.As(err, &terr) && terr.Timeout {
			outcome = domain.OutcomeTimeout
		}
		n.appendAudit(ctx, domain.AttemptRecord{
			EventType:   domain.EventStockUpdateSent,
			Direction:   domain.DirectionOutgoing,
			Channel:     domain.ChannelSync,
			Attempt:     attempt,
			Outcome:     outcome,
			ErrorDetail: err.Error(),
			Latency:     latency,
			Payload:     string(payload),
			At:          time.Now().UTC(),
		})
		n.log.WithFields(logrus.Fields{
			"attempt": attempt,
			"outcome": outcome,
		}).WithError(err).Warn("sync delivery attempt failed")

		if attempt < n.retryCount {
			select {
			case <-time.After(n.retryDelay):
			case <-ctx.Done():
				return false, "canceled during retry wait: " + ctx.Err().Error()
			}
		}
	}
	return false, fmt.Sprintf("all %d attempts failed", n.retryCount)
}

func (n *Notifier) deliverAsync(ctx context.Context, snap domain.StockSnapshot, thresholdDays float64) (bool, string) {
	event := domain.InventoryLowEvent{
		EventID:               "evt-" + uuid.NewString(),
		EventType:             domain.EventTypeInventoryLow,
		HospitalID:            snap.HospitalID,
		ProductCode:           snap.ProductCode,
		CurrentStockUnits:     snap.CurrentStockUnits,
		DailyConsumptionUnits: snap.DailyConsumptionUnits,
		DaysOfSupply:          snap.DaysOfSupply,
		Threshold:             thresholdDays,
		Timestamp:             time.Now().UTC().Format(time.RFC3339),
	}
	payload, _ := json.Marshal(event)

	start := time.Now()
	err := n.events.PublishInventoryLow(ctx, event)
	latency := time.Since(start)

	rec := domain.AttemptRecord{
		EventType: domain.EventInventoryLowPublished,
		Direction: domain.DirectionOutgoing,
		Channel:   domain.ChannelAsync,
		Attempt:   1,
		Outcome:   domain.OutcomeSuccess,
		Latency:   latency,
		Payload:   string(payload),
		At:        time.Now().UTC(),
	}
	if err != nil {
		rec.Outcome = domain.OutcomeFailure
		rec.ErrorDetail = err.Error()
		n.appendAudit(ctx, rec)
		n.log.WithError(err).Warn("async publish failed")
		return false, err.Error()
	}
	n.appendAudit(ctx, rec)
	n.log.WithFields(logrus.Fields{
		"event_id":   event.EventID,
		"latency_ms": latency.Milliseconds(),
	}).Info("inventory low event published")
	return true, "published " + event.EventID
}

func (n *Notifier) appendAudit(ctx context.Context, rec domain.AttemptRecord) {
	if err := n.store.AppendAudit(ctx, rec); err != nil {
		n.log.WithError(err).Error("failed to append audit record")
	}
}
