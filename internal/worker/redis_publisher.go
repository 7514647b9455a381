package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"customerbooking/internal/models"

	"github.com/redis/go-redis/v9"
)

// envelope is the wire form published to subscribers.
type envelope struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	BookingID int64           `json:"booking_id"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// RedisPublisher publishes events on a pub/sub channel and parks
// undeliverable ones in a dead-letter list.
type RedisPublisher struct {
	client        *redis.Client
	channel       string
	deadLetterKey string
}

func NewRedisPublisher(client *redis.Client, channel, deadLetterKey string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel, deadLetterKey: deadLetterKey}
}

func encodeEnvelope(msg *models.OutboxMessage) ([]byte, error) {
	payload := json.RawMessage(msg.Payload)
	if !json.Valid(payload) {
		return nil, fmt.Errorf("outbox message %d has invalid payload", msg.ID)
	}
	return json.Marshal(envelope{
		ID:        msg.ID,
		Type:      msg.EventType,
		BookingID: msg.BookingID,
		Payload:   payload,
		CreatedAt: msg.CreatedAt,
	})
}

func (p *RedisPublisher) Publish(ctx context.Context, msg *models.OutboxMessage) error {
	if p.client == nil {
		return errors.New("redis client is nil")
	}
	data, err := encodeEnvelope(msg)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, data).Err()
}

func (p *RedisPublisher) DeadLetter(ctx context.Context, msg *models.OutboxMessage) error {
	if p.client == nil {
		return errors.New("redis client is nil")
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return p.client.LPush(ctx, p.deadLetterKey, data).Err()
}
