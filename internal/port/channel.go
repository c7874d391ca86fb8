package port

import (
	"context"
	"fmt"

	"github.com/hospital-e/supply-node/internal/core/domain"
)

// StockUpdateResponse is the authority's answer on the sync channel.
type StockUpdateResponse struct {
	Success        bool
	Message        string
	OrderTriggered bool
	OrderID        string
}

// RemoteFault is an explicit rejection by the remote service.
type RemoteFault struct {
	Code    string
	Message string
}

func (f *RemoteFault) Error() string {
	return fmt.Sprintf("remote fault %s: %s", f.Code, f.Message)
}

// TransportError is a network-level failure. Timeout marks time-based
// failures, which are audited as TIMEOUT rather than FAILURE.
type TransportError struct {
	Op      string
	Timeout bool
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SyncChannel is the blocking request/response path to the central authority.
// Errors are *RemoteFault or *TransportError; both are retried by the caller.
type SyncChannel interface {
	SendStockUpdate(ctx context.Context, snap domain.StockSnapshot) (*StockUpdateResponse, error)
}

// EventPublisher is the fire-and-forget async path.
type EventPublisher interface {
	PublishInventoryLow(ctx context.Context, event domain.InventoryLowEvent) error
}

// CommandBatch is one delivery from the inbound transport. Ack must only be
// called after every payload has been handled; the transport is at-least-once
// and may redeliver an unacked batch.
type CommandBatch interface {
	Payloads() [][]byte
	Ack(ctx context.Context) error
}

// CommandSource feeds the ingestion loop. Receive blocks until a batch
// arrives, the poll interval elapses (empty batch), or ctx is done.
type CommandSource interface {
	Receive(ctx context.Context) (CommandBatch, error)
}
