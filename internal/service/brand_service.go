package service

import (
	"context"
	"fmt"

	"customerbooking/internal/domain"
	"customerbooking/internal/events"
	"customerbooking/internal/models"

	"github.com/rs/zerolog"
)

type BrandService struct {
	brands   domain.BrandRepository
	bookings domain.BookingRepository
	clock    domain.Clock
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewBrandService(
	brands domain.BrandRepository,
	bookings domain.BookingRepository,
	clock domain.Clock,
	eventBus domain.EventPublisher,
	logger *zerolog.Logger,
) *BrandService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &BrandService{brands: brands, bookings: bookings, clock: clock, eventBus: eventBus, logger: nopIfNil(logger)}
}

func (s *BrandService) ListBrands(ctx context.Context, page models.PageRequest) ([]*models.Brand, error) {
	list, err := s.brands.ListBrands(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	return list, nil
}

func (s *BrandService) GetBrand(ctx context.Context, id int64) (*models.Brand, error) {
	b, err := s.brands.GetBrand(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get brand: %w", err)
	}
	if b == nil {
		return nil, domain.NotFound(models.EntityBrand, id)
	}
	return b, nil
}

func (s *BrandService) CreateBrand(ctx context.Context, in models.BrandInput) (*models.Brand, error) {
	b := &models.Brand{}
	in.Apply(b)
	now := s.clock.Now()
	b.CreatedAt = now
	b.UpdatedAt = now

	if err := s.brands.CreateBrand(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to create brand: %w", err)
	}
	s.logger.Info().Int64("brand_id", b.ID).Msg("brand created")
	return b, nil
}

func (s *BrandService) UpdateBrand(ctx context.Context, id int64, in models.BrandInput) (*models.Brand, error) {
	b, err := s.GetBrand(ctx, id)
	if err != nil {
		return nil, err
	}

	oldName := b.Name
	in.Apply(b)
	b.UpdatedAt = s.clock.Now()
	if err := s.brands.UpdateBrand(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to update brand: %w", err)
	}
	if b.Name != oldName {
		s.publishRenamed(ctx, b)
	}
	return b, nil
}

// publishRenamed announces every booking of a renamed brand, since bookings
// carry the brand name in their snapshot. Failures are logged only.
func (s *BrandService) publishRenamed(ctx context.Context, b *models.Brand) {
	if s.eventBus == nil {
		return
	}

	page := models.PageRequest{Size: models.MaxPageSize}
	for {
		list, err := s.bookings.ListBookingsByBrand(ctx, b.ID, page)
		if err != nil {
			s.logger.Error().Err(err).Int64("brand_id", b.ID).Msg("list bookings for renamed brand")
			return
		}
		for _, booking := range list {
			payload := events.BookingEventPayload{
				BookingID:  booking.ID,
				CustomerID: booking.CustomerID,
				BrandID:    booking.BrandID,
				Status:     string(booking.Status),
				Title:      booking.Title,
				OccurredAt: b.UpdatedAt,
			}
			if err := s.eventBus.PublishJSON(events.EventBookingBrandRenamed, payload); err != nil {
				s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("publish event error")
			}
		}
		if len(list) < page.Size {
			return
		}
		page.Page++
	}
}

func (s *BrandService) DeleteBrand(ctx context.Context, id int64) error {
	if _, err := s.GetBrand(ctx, id); err != nil {
		return err
	}

	n, err := s.bookings.CountBookingsByBrand(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count bookings: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("brand %d has %d bookings: %w", id, n, domain.ErrReferenced)
	}

	if err := s.brands.DeleteBrand(ctx, id); err != nil {
		return fmt.Errorf("failed to delete brand: %w", err)
	}
	s.logger.Info().Int64("brand_id", id).Msg("brand deleted")
	return nil
}

func (s *BrandService) ListBrandBookings(ctx context.Context, id int64, page models.PageRequest) ([]*models.Booking, error) {
	if _, err := s.GetBrand(ctx, id); err != nil {
		return nil, err
	}
	list, err := s.bookings.ListBookingsByBrand(ctx, id, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return list, nil
}
