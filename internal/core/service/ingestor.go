package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/hospital-e/supply-node/internal/core/domain"
	"github.com/hospital-e/supply-node/internal/port"
)

// CommandOutcome is the result of handling one inbound command.
type CommandOutcome string

const (
	OutcomeAccepted  CommandOutcome = "ACCEPTED"
	OutcomeDuplicate CommandOutcome = "DUPLICATE"
	OutcomeRejected  CommandOutcome = "REJECTED"
	OutcomeSkipped   CommandOutcome = "SKIPPED"
)

// Ingestor consumes replenishment commands from the inbound transport,
// validates them, and persists accepted orders idempotently by orderId.
// It runs on its own lifecycle, independent of the monitor loop.
type Ingestor struct {
	store      port.Store
	log        *logrus.Logger
	validate   *validator.Validate
	hospitalID string
}

func NewIngestor(store port.Store, log *logrus.Logger, hospitalID string) *Ingestor {
	return &Ingestor{
		store:      store,
		log:        log,
		validate:   validator.New(),
		hospitalID: hospitalID,
	}
}

// Ingest handles one raw message, which may hold a single command object or
// an array of them. Every element is processed independently in order; a bad
// element never stops the rest of the batch. The returned outcomes are
// informational; no error is fatal to the caller's loop.
func (ing *Ingestor) Ingest(ctx context.Context, raw []byte) []CommandOutcome {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var elements []json.RawMessage
		if err := json.Unmarshal(trimmed, &elements); err != nil {
			ing.auditRejected(ctx, string(raw), "malformed batch: "+err.Error())
			return []CommandOutcome{OutcomeRejected}
		}
		ing.log.WithField("count", len(elements)).Info("received command batch")
		outcomes := make([]CommandOutcome, 0, len(elements))
		for _, element := range elements {
			outcomes = append(outcomes, ing.processCommand(ctx, element))
		}
		return outcomes
	}
	return []CommandOutcome{ing.processCommand(ctx, trimmed)}
}

func (ing *Ingestor) processCommand(ctx context.Context, raw []byte) CommandOutcome {
	var cmd domain.OrderCommand
	if err := json.Unmarshal(raw, &cmd); err != nil {
		ing.auditRejected(ctx, string(raw), "malformed command: "+err.Error())
		return OutcomeRejected
	}

	if err := ing.validateCommand(cmd); err != nil {
		ing.auditRejected(ctx, string(raw), err.Error())
		return OutcomeRejected
	}

	// Commands addressed to another facility are discarded without audit.
	if cmd.HospitalID != ing.hospitalID {
		ing.log.WithFields(logrus.Fields{
			"order_id": cmd.OrderID,
			"hospital": cmd.HospitalID,
		}).Debug("skipping command for another facility")
		return OutcomeSkipped
	}

	order := orderFromCommand(cmd)
	inserted, err := ing.store.InsertOrder(ctx, order)
	if err != nil {
		ing.auditRejected(ctx, string(raw), "order insert failed: "+err.Error())
		return OutcomeRejected
	}
	if !inserted {
		ing.appendAudit(ctx, domain.AttemptRecord{
			EventType:   domain.EventOrderReceived,
			Direction:   domain.DirectionIncoming,
			Channel:     domain.ChannelAsync,
			Attempt:     1,
			Outcome:     domain.OutcomeFailure,
			ErrorDetail: "duplicate orderId " + cmd.OrderID,
			Payload:     string(raw),
			At:          time.Now().UTC(),
		})
		ing.log.WithField("order_id", cmd.OrderID).Warn("order already exists")
		return OutcomeDuplicate
	}

	ing.appendAudit(ctx, domain.AttemptRecord{
		EventType: domain.EventOrderReceived,
		Direction: domain.DirectionIncoming,
		Channel:   domain.ChannelAsync,
		Attempt:   1,
		Outcome:   domain.OutcomeSuccess,
		Payload:   string(raw),
		At:        time.Now().UTC(),
	})
	ing.log.WithFields(logrus.Fields{
		"order_id": cmd.OrderID,
		"quantity": cmd.OrderQuantity,
		"priority": cmd.Priority,
	}).Info("order received")
	return OutcomeAccepted
}

// Run consumes batches from the source until ctx is canceled. A batch is
// acked only after every command in it has been handled; receive errors are
// logged and the loop continues.
func (ing *Ingestor) Run(ctx context.Context, source port.CommandSource) {
	ing.log.WithField("hospital", ing.hospitalID).Info("starting order command consumer")

	for {
		batch, err := source.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				ing.log.Info("order command consumer stopped")
				return
			}
			ing.log.WithError(err).Error("failed to receive command batch")
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
			}
			continue
		}

		for _, payload := range batch.Payloads() {
			ing.Ingest(ctx, payload)
		}

		if err := batch.Ack(ctx); err != nil {
			ing.log.WithError(err).Error("failed to ack command batch")
		}
	}
}

func (ing *Ingestor) validateCommand(cmd domain.OrderCommand) error {
	if err := ing.validate.Struct(cmd); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if _, err := time.Parse(time.RFC3339, cmd.Timestamp); err != nil {
		return fmt.Errorf("invalid timestamp %q", cmd.Timestamp)
	}
	if _, err := time.Parse(time.RFC3339, cmd.EstimatedDeliveryDate); err != nil {
		return fmt.Errorf("invalid estimatedDeliveryDate %q", cmd.EstimatedDeliveryDate)
	}
	return nil
}

func (ing *Ingestor) auditRejected(ctx context.Context, payload, detail string) {
	ing.appendAudit(ctx, domain.AttemptRecord{
		EventType:   domain.EventOrderReceived,
		Direction:   domain.DirectionIncoming,
		Channel:     domain.ChannelAsync,
		Attempt:     1,
		Outcome:     domain.OutcomeFailure,
		ErrorDetail: detail,
		Payload:     payload,
		At:          time.Now().UTC(),
	})
	ing.log.WithField("detail", detail).Error("rejected order command")
}

func (ing *Ingestor) appendAudit(ctx context.Context, rec domain.AttemptRecord) {
	if err := ing.store.AppendAudit(ctx, rec); err != nil {
		ing.log.WithError(err).Error("failed to append audit record")
	}
}

func orderFromCommand(cmd domain.OrderCommand) domain.Order {
	// Validation has already checked both timestamps parse.
	estimated, _ := time.Parse(time.RFC3339, cmd.EstimatedDeliveryDate)
	warehouse := cmd.WarehouseID
	if warehouse == "" {
		warehouse = "CENTRAL-WAREHOUSE"
	}
	return domain.Order{
		OrderID:           cmd.OrderID,
		CommandID:         cmd.CommandID,
		HospitalID:        cmd.HospitalID,
		ProductCode:       cmd.ProductCode,
		Quantity:          cmd.OrderQuantity,
		Priority:          cmd.Priority,
		Status:            domain.OrderStatusPending,
		EstimatedDelivery: estimated,
		WarehouseID:       warehouse,
		ReceivedAt:        time.Now().UTC(),
	}
}
