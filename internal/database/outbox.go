package database

import (
	"context"
	"fmt"
	"time"

	"customerbooking/internal/models"
)

const outboxColumns = `id, event_type, booking_id, payload, status, retry_count, last_error, created_at, processed_at, next_retry_at`

func (db *DB) CreateOutboxMessage(ctx context.Context, msg *models.OutboxMessage) error {
	if msg.Status == "" {
		msg.Status = models.OutboxPending
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO outbox (event_type, booking_id, payload, status, retry_count, last_error, created_at, next_retry_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		msg.EventType,
		msg.BookingID,
		msg.Payload,
		msg.Status,
		msg.RetryCount,
		msg.LastError,
		msg.CreatedAt,
		msg.NextRetryAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	msg.ID = id
	return nil
}

// GetPendingOutboxMessages returns pending and due retry messages, oldest first.
func (db *DB) GetPendingOutboxMessages(ctx context.Context, limit int) ([]models.OutboxMessage, error) {
	query := `SELECT ` + outboxColumns + `
              FROM outbox
              WHERE status IN (?, ?) AND (next_retry_at IS NULL OR next_retry_at <= ?)
              ORDER BY created_at ASC, id ASC LIMIT ?`
	return db.queryOutbox(ctx, query, models.OutboxPending, models.OutboxRetry, time.Now().UTC(), limit)
}

func (db *DB) GetFailedOutboxMessages(ctx context.Context) ([]models.OutboxMessage, error) {
	query := `SELECT ` + outboxColumns + ` FROM outbox WHERE status = ? ORDER BY created_at DESC`
	return db.queryOutbox(ctx, query, models.OutboxFailed)
}

func (db *DB) queryOutbox(ctx context.Context, query string, args ...any) ([]models.OutboxMessage, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	defer rows.Close()

	var msgs []models.OutboxMessage
	for rows.Next() {
		var m models.OutboxMessage
		err := rows.Scan(
			&m.ID, &m.EventType, &m.BookingID, &m.Payload, &m.Status, &m.RetryCount,
			&m.LastError, &m.CreatedAt, &m.ProcessedAt, &m.NextRetryAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// UpdateOutboxStatus moves a message to status. A retry bumps retry_count;
// delivered and failed stamp processed_at.
func (db *DB) UpdateOutboxStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error {
	var (
		query string
		args  []any
	)
	lastError := nullableString(errMsg)

	switch status {
	case models.OutboxRetry:
		query = `UPDATE outbox SET status = ?, last_error = ?, next_retry_at = ?, retry_count = retry_count + 1 WHERE id = ?`
		args = []any{status, lastError, nextRetryAt, id}
	case models.OutboxDelivered, models.OutboxFailed:
		now := time.Now().UTC()
		query = `UPDATE outbox SET status = ?, last_error = ?, next_retry_at = NULL, processed_at = ? WHERE id = ?`
		args = []any{status, lastError, now, id}
	default:
		query = `UPDATE outbox SET status = ?, last_error = ?, next_retry_at = ? WHERE id = ?`
		args = []any{status, lastError, nextRetryAt, id}
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update outbox status: %w", err)
	}
	return nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
