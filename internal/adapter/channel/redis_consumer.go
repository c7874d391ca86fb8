package channel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hospital-e/supply-node/internal/port"
)

// RedisCommandSource implements port.CommandSource over a Redis stream
// consumer group. Delivery is at-least-once: entries stay pending until the
// batch is acked, and an unacked batch is redelivered to the group.
type RedisCommandSource struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string
	block    time.Duration
	count    int64
}

func NewRedisCommandSource(client *redis.Client, stream, group, consumer string, block time.Duration) *RedisCommandSource {
	return &RedisCommandSource{
		client:   client,
		stream:   stream,
		group:    group,
		consumer: consumer,
		block:    block,
		count:    16,
	}
}

// Init creates the consumer group if it does not exist. This is the only
// setup step that is fatal to the process.
func (s *RedisCommandSource) Init(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, s.stream, s.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group %s on %s: %w", s.group, s.stream, err)
	}
	return nil
}

func (s *RedisCommandSource) Receive(ctx context.Context) (port.CommandBatch, error) {
	streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: s.consumer,
		Streams:  []string{s.stream, ">"},
		Count:    s.count,
		Block:    s.block,
	}).Result()

	if err == redis.Nil {
		// Poll interval elapsed with nothing to read.
		return &redisBatch{source: s}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.stream, err)
	}

	batch := &redisBatch{source: s}
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			payload, ok := msg.Values[payloadField].(string)
			if !ok {
				// Malformed entry: ack it so it does not wedge the group.
				batch.ids = append(batch.ids, msg.ID)
				continue
			}
			batch.ids = append(batch.ids, msg.ID)
			batch.payloads = append(batch.payloads, []byte(payload))
		}
	}
	return batch, nil
}

type redisBatch struct {
	source   *RedisCommandSource
	ids      []string
	payloads [][]byte
}

func (b *redisBatch) Payloads() [][]byte {
	return b.payloads
}

func (b *redisBatch) Ack(ctx context.Context) error {
	if len(b.ids) == 0 {
		return nil
	}
	return b.source.client.XAck(ctx, b.source.stream, b.source.group, b.ids...).Err()
}
