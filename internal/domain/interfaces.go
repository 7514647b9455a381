package domain

import (
	"context"
	"time"

	"customerbooking/internal/models"
)

// Readers return (nil, nil) when the id does not resolve.

type CustomerReader interface {
	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
}

type BrandReader interface {
	GetBrand(ctx context.Context, id int64) (*models.Brand, error)
}

type CustomerRepository interface {
	CustomerReader
	ListCustomers(ctx context.Context, page models.PageRequest) ([]*models.Customer, error)
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	UpdateCustomer(ctx context.Context, customer *models.Customer) error
	DeleteCustomer(ctx context.Context, id int64) error
}

type BrandRepository interface {
	BrandReader
	ListBrands(ctx context.Context, page models.PageRequest) ([]*models.Brand, error)
	CreateBrand(ctx context.Context, brand *models.Brand) error
	UpdateBrand(ctx context.Context, brand *models.Brand) error
	DeleteBrand(ctx context.Context, id int64) error
}

type BookingRepository interface {
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	BookingExists(ctx context.Context, id int64) (bool, error)
	// SaveBooking inserts when booking.ID is zero and assigns the new id, otherwise updates the row.
	SaveBooking(ctx context.Context, booking *models.Booking) error
	DeleteBooking(ctx context.Context, id int64) error
	ListBookingsByCustomer(ctx context.Context, customerID int64, page models.PageRequest) ([]*models.Booking, error)
	ListBookingsByBrand(ctx context.Context, brandID int64, page models.PageRequest) ([]*models.Booking, error)
	ListBookingsBetween(ctx context.Context, from, to time.Time) ([]*models.Booking, error)
	CountBookingsByCustomer(ctx context.Context, customerID int64) (int, error)
	CountBookingsByBrand(ctx context.Context, brandID int64) (int, error)
}

type OutboxRepository interface {
	CreateOutboxMessage(ctx context.Context, msg *models.OutboxMessage) error
	GetPendingOutboxMessages(ctx context.Context, limit int) ([]models.OutboxMessage, error)
	UpdateOutboxStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error
}

// EntityCache stores JSON snapshots of entities under string keys.
// Get reports a miss with (false, nil).
type EntityCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

type Clock interface {
	Now() time.Time
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type Pinger interface {
	PingContext(ctx context.Context) error
}
