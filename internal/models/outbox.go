package models

import "time"

// Outbox message states.
const (
	OutboxPending   = "pending"
	OutboxRetry     = "retry"
	OutboxDelivered = "delivered"
	OutboxFailed    = "failed"
)

// OutboxMessage is a lifecycle event waiting for delivery to subscribers outside the process.
type OutboxMessage struct {
	ID          int64      `json:"id"`
	EventType   string     `json:"event_type"`
	BookingID   int64      `json:"booking_id"`
	Payload     string     `json:"payload"`
	Status      string     `json:"status"`
	RetryCount  int        `json:"retry_count"`
	LastError   *string    `json:"last_error"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at"`
	NextRetryAt *time.Time `json:"next_retry_at"`
}
