package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"customerbooking/internal/domain"
	"customerbooking/internal/events"
	"customerbooking/internal/metrics"
	"customerbooking/internal/models"

	"github.com/rs/zerolog"
)

// ErrInvalidRange is returned when a date window ends before it starts.
var ErrInvalidRange = errors.New("invalid date range")

// BookingService owns the booking lifecycle. Every mutation checks that the
// entities it references exist before anything is written, so its readers
// must see the store directly rather than a cache.
type BookingService struct {
	customers domain.CustomerReader
	brands    domain.BrandReader
	bookings  domain.BookingRepository
	clock     domain.Clock
	eventBus  domain.EventPublisher
	logger    *zerolog.Logger
}

func NewBookingService(
	customers domain.CustomerReader,
	brands domain.BrandReader,
	bookings domain.BookingRepository,
	clock domain.Clock,
	eventBus domain.EventPublisher,
	logger *zerolog.Logger,
) *BookingService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &BookingService{
		customers: customers,
		brands:    brands,
		bookings:  bookings,
		clock:     clock,
		eventBus:  eventBus,
		logger:    nopIfNil(logger),
	}
}

// CreateBooking binds a new booking to an existing customer and saves it.
func (s *BookingService) CreateBooking(ctx context.Context, in models.CreateBookingInput) (b *models.Booking, err error) {
	defer func() { metrics.RecordBookingOp("create", outcome(err)) }()

	customer, err := s.customers.GetCustomer(ctx, in.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if customer == nil {
		return nil, domain.NotFound(models.EntityCustomer, in.CustomerID)
	}

	b = in.ToBooking()
	b.CustomerID = customer.ID
	now := s.clock.Now()
	b.CreatedAt = now
	b.UpdatedAt = now

	if err := s.saveBooking(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("booking_id", b.ID).Int64("customer_id", b.CustomerID).Msg("booking created")
	s.publishEvent(events.EventBookingCreated, b)
	return b, nil
}

// DeleteBooking removes an existing booking. Deleting an unknown id, including
// one deleted before, fails with not found.
func (s *BookingService) DeleteBooking(ctx context.Context, id int64) (err error) {
	defer func() { metrics.RecordBookingOp("delete", outcome(err)) }()

	exists, err := s.bookings.BookingExists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check booking: %w", err)
	}
	if !exists {
		return domain.NotFound(models.EntityBooking, id)
	}

	if err := s.bookings.DeleteBooking(ctx, id); err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	s.logger.Info().Int64("booking_id", id).Msg("booking deleted")
	s.publishEvent(events.EventBookingDeleted, &models.Booking{ID: id})
	return nil
}

// AttachBrand sets the brand of an existing booking. The booking is resolved
// first, so when both ids are unknown the error names the booking.
func (s *BookingService) AttachBrand(ctx context.Context, bookingID, brandID int64) (b *models.Booking, err error) {
	defer func() { metrics.RecordBookingOp("attach_brand", outcome(err)) }()

	current, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if current == nil {
		return nil, domain.NotFound(models.EntityBooking, bookingID)
	}

	brand, err := s.brands.GetBrand(ctx, brandID)
	if err != nil {
		return nil, fmt.Errorf("failed to get brand: %w", err)
	}
	if brand == nil {
		return nil, domain.NotFound(models.EntityBrand, brandID)
	}

	b = current.Clone()
	b.BrandID = &brand.ID
	b.BrandName = brand.Name
	b.UpdatedAt = s.clock.Now()

	if err := s.saveBooking(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("booking_id", b.ID).Int64("brand_id", brand.ID).Msg("brand attached")
	s.publishEvent(events.EventBookingBrandAttached, b)
	return b, nil
}

// saveBooking passes a not-found through as is: a reference that vanished
// between the check and the write reads the same as one that never existed.
func (s *BookingService) saveBooking(ctx context.Context, b *models.Booking) error {
	err := s.bookings.SaveBooking(ctx, b)
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return fmt.Errorf("failed to save booking: %w", err)
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	b, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if b == nil {
		return nil, domain.NotFound(models.EntityBooking, id)
	}
	return b, nil
}

// ListBookingsBetween returns bookings starting within [from, to], by start date.
func (s *BookingService) ListBookingsBetween(ctx context.Context, from, to time.Time) ([]*models.Booking, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: %s is after %s", ErrInvalidRange, from.Format(models.DateLayout), to.Format(models.DateLayout))
	}
	list, err := s.bookings.ListBookingsBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return list, nil
}

func (s *BookingService) publishEvent(eventType string, b *models.Booking) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:  b.ID,
		CustomerID: b.CustomerID,
		BrandID:    b.BrandID,
		Status:     string(b.Status),
		Title:      b.Title,
		OccurredAt: s.clock.Now(),
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", b.ID).Msg("publish event error")
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
