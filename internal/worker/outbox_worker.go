package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"customerbooking/internal/domain"
	"customerbooking/internal/events"
	"customerbooking/internal/metrics"
	"customerbooking/internal/models"

	"github.com/rs/zerolog"
)

// Publisher delivers outbox messages outside the process.
type Publisher interface {
	Publish(ctx context.Context, msg *models.OutboxMessage) error
	DeadLetter(ctx context.Context, msg *models.OutboxMessage) error
}

// OutboxWorker persists booking events and delivers them with retries.
// Enqueue only wakes the loop; the outbox table is the single source of work,
// so a message is never picked up twice.
type OutboxWorker struct {
	store        domain.OutboxRepository
	publisher    Publisher
	retryPolicy  RetryPolicy
	wake         chan struct{}
	pollInterval time.Duration
	batchSize    int
	logger       *zerolog.Logger
	now          func() time.Time
}

func NewOutboxWorker(store domain.OutboxRepository, publisher Publisher, retry RetryPolicy, logger *zerolog.Logger) *OutboxWorker {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &OutboxWorker{
		store:        store,
		publisher:    publisher,
		retryPolicy:  retry.withDefaults(),
		wake:         make(chan struct{}, 1),
		pollInterval: 2 * time.Second,
		batchSize:    20,
		logger:       logger,
		now:          time.Now,
	}
}

// WithPolling overrides the poll interval and batch size; zero values keep the defaults.
func (w *OutboxWorker) WithPolling(interval time.Duration, batchSize int) *OutboxWorker {
	if interval > 0 {
		w.pollInterval = interval
	}
	if batchSize > 0 {
		w.batchSize = batchSize
	}
	return w
}

// Enqueue stores ev in the outbox and nudges the delivery loop.
func (w *OutboxWorker) Enqueue(ctx context.Context, ev *events.Event) error {
	bookingID, err := bookingIDOf(ev)
	if err != nil {
		return err
	}

	createdAt := ev.CreatedAt
	if createdAt.IsZero() {
		createdAt = w.now().UTC()
	}
	msg := models.OutboxMessage{
		EventType: ev.Type,
		BookingID: bookingID,
		Payload:   string(ev.Payload),
		Status:    models.OutboxPending,
		CreatedAt: createdAt,
	}
	if err := w.store.CreateOutboxMessage(ctx, &msg); err != nil {
		return fmt.Errorf("persist outbox message: %w", err)
	}

	select {
	case w.wake <- struct{}{}:
	default:
	}
	return nil
}

// bookingIDOf extracts the booking id every booking event payload carries.
func bookingIDOf(ev *events.Event) (int64, error) {
	if ev == nil || ev.Type == "" {
		return 0, errors.New("event type is required")
	}

	var payload events.BookingEventPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		return 0, fmt.Errorf("decode event payload: %w", err)
	}
	if payload.BookingID == 0 {
		return 0, errors.New("booking id is required")
	}
	return payload.BookingID, nil
}

// HandleEvent adapts Enqueue to events.EventHandler.
func (w *OutboxWorker) HandleEvent(ev *events.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return w.Enqueue(ctx, ev)
}

// Start runs the delivery loop until ctx is done.
func (w *OutboxWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("outbox worker started")
	defer w.logger.Info().Msg("outbox worker stopped")

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		w.drain(ctx)

		select {
		case <-ctx.Done():
			return
		case <-w.wake:
		case <-ticker.C:
		}
	}
}

// drain delivers due messages batch by batch until none are left.
func (w *OutboxWorker) drain(ctx context.Context) {
	for ctx.Err() == nil {
		msgs, err := w.store.GetPendingOutboxMessages(ctx, w.batchSize)
		if err != nil {
			w.logger.Error().Err(err).Msg("fetch pending outbox messages")
			return
		}
		if len(msgs) == 0 {
			return
		}
		for i := range msgs {
			w.processMessage(ctx, &msgs[i])
		}
		if len(msgs) < w.batchSize {
			return
		}
	}
}

func (w *OutboxWorker) processMessage(ctx context.Context, msg *models.OutboxMessage) {
	if err := w.publisher.Publish(ctx, msg); err != nil {
		w.retryOrFail(ctx, msg, err)
		return
	}

	metrics.RecordOutboxDelivery(models.OutboxDelivered)
	if err := w.store.UpdateOutboxStatus(ctx, msg.ID, models.OutboxDelivered, "", nil); err != nil {
		w.logger.Error().Err(err).Int64("outbox_id", msg.ID).Msg("mark delivered")
	}
}

func (w *OutboxWorker) retryOrFail(ctx context.Context, msg *models.OutboxMessage, cause error) {
	attempt := msg.RetryCount + 1
	log := w.logger.With().Int64("outbox_id", msg.ID).Int("attempt", attempt).Logger()

	if w.retryPolicy.Exhausted(attempt) {
		metrics.RecordOutboxDelivery(models.OutboxFailed)
		log.Error().Err(cause).Msg("outbox delivery failed permanently")
		if err := w.store.UpdateOutboxStatus(ctx, msg.ID, models.OutboxFailed, cause.Error(), nil); err != nil {
			log.Error().Err(err).Msg("mark failed")
		}
		if err := w.publisher.DeadLetter(ctx, msg); err != nil {
			log.Error().Err(err).Msg("dead-letter push")
		}
		return
	}

	metrics.RecordOutboxDelivery(models.OutboxRetry)
	next := w.now().UTC().Add(w.retryPolicy.NextDelay(attempt))
	log.Warn().Err(cause).Time("next_retry_at", next).Msg("outbox delivery failed, will retry")
	if err := w.store.UpdateOutboxStatus(ctx, msg.ID, models.OutboxRetry, cause.Error(), &next); err != nil {
		log.Error().Err(err).Msg("mark retry")
	}
}
