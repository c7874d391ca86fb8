package domain

import "time"

type Channel string

const (
	ChannelSync  Channel = "SYNC"
	ChannelAsync Channel = "ASYNC"
)

type Direction string

const (
	DirectionOutgoing Direction = "OUTGOING"
	DirectionIncoming Direction = "INCOMING"
)

type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailure Outcome = "FAILURE"
	OutcomeTimeout Outcome = "TIMEOUT"
)

const (
	EventStockUpdateSent       = "STOCK_UPDATE_SENT"
	EventInventoryLowPublished = "INVENTORY_EVENT_PUBLISHED"
	EventOrderReceived         = "ORDER_RECEIVED"
)

// AttemptRecord is one append-only audit entry. Every delivery attempt on
// either channel and every handled inbound command produces exactly one.
type AttemptRecord struct {
	ID          int64
	EventType   string
	Direction   Direction
	Channel     Channel
	Attempt     int
	Outcome     Outcome
	ErrorDetail string
	Latency     time.Duration
	Payload     string
	At          time.Time
}
