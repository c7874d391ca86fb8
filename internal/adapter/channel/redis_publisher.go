package channel

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/hospital-e/supply-node/internal/core/domain"
)

const payloadField = "payload"

// RedisEventPublisher implements port.EventPublisher by appending inventory
// events to a Redis stream. Single-shot: the caller does not retry this path.
type RedisEventPublisher struct {
	client *redis.Client
	stream string
}

func NewRedisEventPublisher(client *redis.Client, stream string) *RedisEventPublisher {
	return &RedisEventPublisher{client: client, stream: stream}
}

func (p *RedisEventPublisher) PublishInventoryLow(ctx context.Context, event domain.InventoryLowEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{payloadField: payload},
	}).Err()
	if err != nil {
		return fmt.Errorf("publish to %s: %w", p.stream, err)
	}
	return nil
}
