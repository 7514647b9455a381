package service

import (
	"context"
	"fmt"

	"customerbooking/internal/domain"
	"customerbooking/internal/models"

	"github.com/rs/zerolog"
)

type CustomerService struct {
	customers domain.CustomerRepository
	bookings  domain.BookingRepository
	clock     domain.Clock
	logger    *zerolog.Logger
}

func NewCustomerService(customers domain.CustomerRepository, bookings domain.BookingRepository, clock domain.Clock, logger *zerolog.Logger) *CustomerService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &CustomerService{customers: customers, bookings: bookings, clock: clock, logger: nopIfNil(logger)}
}

func (s *CustomerService) ListCustomers(ctx context.Context, page models.PageRequest) ([]*models.Customer, error) {
	list, err := s.customers.ListCustomers(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return list, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	c, err := s.customers.GetCustomer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if c == nil {
		return nil, domain.NotFound(models.EntityCustomer, id)
	}
	return c, nil
}

func (s *CustomerService) CreateCustomer(ctx context.Context, in models.CustomerInput) (*models.Customer, error) {
	c := &models.Customer{}
	in.Apply(c)
	now := s.clock.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := s.customers.CreateCustomer(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	s.logger.Info().Int64("customer_id", c.ID).Msg("customer created")
	return c, nil
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, id int64, in models.CustomerInput) (*models.Customer, error) {
	c, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	in.Apply(c)
	c.UpdatedAt = s.clock.Now()
	if err := s.customers.UpdateCustomer(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return c, nil
}

// DeleteCustomer refuses with domain.ErrReferenced while bookings point at the customer.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id int64) error {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return err
	}

	n, err := s.bookings.CountBookingsByCustomer(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count bookings: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("customer %d has %d bookings: %w", id, n, domain.ErrReferenced)
	}

	if err := s.customers.DeleteCustomer(ctx, id); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	s.logger.Info().Int64("customer_id", id).Msg("customer deleted")
	return nil
}

func (s *CustomerService) ListCustomerBookings(ctx context.Context, id int64, page models.PageRequest) ([]*models.Booking, error) {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return nil, err
	}
	list, err := s.bookings.ListBookingsByCustomer(ctx, id, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return list, nil
}
