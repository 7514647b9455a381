package worker

import (
	"context"
	"fmt"
	"time"

	"customerbooking/internal/events"
	"customerbooking/internal/metrics"
	"customerbooking/internal/models"

	"github.com/rs/zerolog"
)

// SheetsClient writes booking rows to the spreadsheet mirror.
type SheetsClient interface {
	UpsertBooking(ctx context.Context, booking *models.Booking) error
	DeleteBookingRow(ctx context.Context, bookingID int64) error
	WarmUpCache(ctx context.Context) error
}

// BookingSource reads the current state of a booking; (nil, nil) means it is gone.
type BookingSource interface {
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
}

// SheetsWorker keeps the spreadsheet mirror in step with booking events.
// Each event only names a booking id: the row is rebuilt from the store,
// so out-of-order or repeated events converge on the latest state.
type SheetsWorker struct {
	bookings        BookingSource
	sheets          SheetsClient
	retryPolicy     RetryPolicy
	queue           chan int64
	refreshInterval time.Duration
	logger          *zerolog.Logger
}

func NewSheetsWorker(bookings BookingSource, sheets SheetsClient, retry RetryPolicy, queueSize int, logger *zerolog.Logger) *SheetsWorker {
	if queueSize <= 0 {
		queueSize = 128
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &SheetsWorker{
		bookings:        bookings,
		sheets:          sheets,
		retryPolicy:     retry.withDefaults(),
		queue:           make(chan int64, queueSize),
		refreshInterval: time.Hour,
		logger:          logger,
	}
}

// WithRefresh sets how often the row index is re-read from the sheet.
func (w *SheetsWorker) WithRefresh(interval time.Duration) *SheetsWorker {
	if interval > 0 {
		w.refreshInterval = interval
	}
	return w
}

// HandleEvent queues the event's booking for mirroring. It never blocks the publisher.
func (w *SheetsWorker) HandleEvent(ev *events.Event) error {
	bookingID, err := bookingIDOf(ev)
	if err != nil {
		return err
	}

	select {
	case w.queue <- bookingID:
		return nil
	default:
		metrics.RecordSheetsSync("dropped")
		return fmt.Errorf("sheets queue full, booking %d not mirrored", bookingID)
	}
}

// Start processes queued bookings until ctx is done.
func (w *SheetsWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("sheets worker started")
	defer w.logger.Info().Msg("sheets worker stopped")

	w.refresh(ctx)

	ticker := time.NewTicker(w.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case id := <-w.queue:
			w.sync(ctx, id)
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *SheetsWorker) refresh(ctx context.Context) {
	refreshCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := w.sheets.WarmUpCache(refreshCtx); err != nil {
		w.logger.Warn().Err(err).Msg("refresh sheet row index")
	}
}

func (w *SheetsWorker) sync(ctx context.Context, bookingID int64) {
	log := w.logger.With().Int64("booking_id", bookingID).Logger()

	for attempt := 1; ; attempt++ {
		err := w.apply(ctx, bookingID)
		if err == nil {
			metrics.RecordSheetsSync("ok")
			return
		}
		if w.retryPolicy.Exhausted(attempt) {
			metrics.RecordSheetsSync("failed")
			log.Error().Err(err).Int("attempt", attempt).Msg("sheets sync failed permanently")
			return
		}

		metrics.RecordSheetsSync("retry")
		delay := w.retryPolicy.NextDelay(attempt)
		log.Warn().Err(err).Int("attempt", attempt).Dur("backoff", delay).Msg("sheets sync failed, will retry")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (w *SheetsWorker) apply(ctx context.Context, bookingID int64) error {
	booking, err := w.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("load booking: %w", err)
	}
	if booking == nil {
		return w.sheets.DeleteBookingRow(ctx, bookingID)
	}
	return w.sheets.UpsertBooking(ctx, booking)
}
