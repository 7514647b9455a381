package service

import (
	"context"
	"sync"
	"time"

	"customerbooking/internal/models"

	"github.com/stretchr/testify/mock"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type mockCustomers struct {
	mock.Mock
}

func (m *mockCustomers) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *mockCustomers) ListCustomers(ctx context.Context, page models.PageRequest) ([]*models.Customer, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Customer), args.Error(1)
}

func (m *mockCustomers) CreateCustomer(ctx context.Context, c *models.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCustomers) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCustomers) DeleteCustomer(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockBrands struct {
	mock.Mock
}

func (m *mockBrands) GetBrand(ctx context.Context, id int64) (*models.Brand, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Brand), args.Error(1)
}

func (m *mockBrands) ListBrands(ctx context.Context, page models.PageRequest) ([]*models.Brand, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Brand), args.Error(1)
}

func (m *mockBrands) CreateBrand(ctx context.Context, b *models.Brand) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockBrands) UpdateBrand(ctx context.Context, b *models.Brand) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockBrands) DeleteBrand(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockBookings struct {
	mock.Mock
}

func (m *mockBookings) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockBookings) BookingExists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockBookings) SaveBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockBookings) DeleteBooking(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockBookings) ListBookingsByCustomer(ctx context.Context, id int64, page models.PageRequest) ([]*models.Booking, error) {
	args := m.Called(ctx, id, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *mockBookings) ListBookingsByBrand(ctx context.Context, id int64, page models.PageRequest) ([]*models.Booking, error) {
	args := m.Called(ctx, id, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *mockBookings) ListBookingsBetween(ctx context.Context, from, to time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *mockBookings) CountBookingsByCustomer(ctx context.Context, id int64) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *mockBookings) CountBookingsByBrand(ctx context.Context, id int64) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

type recordedEvent struct {
	Type    string
	Payload interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (p *recordingPublisher) PublishJSON(eventType string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Type: eventType, Payload: payload})
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
