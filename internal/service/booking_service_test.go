package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"customerbooking/internal/config"
	"customerbooking/internal/database"
	"customerbooking/internal/domain"
	"customerbooking/internal/events"
	"customerbooking/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type bookingFixture struct {
	customers *mockCustomers
	brands    *mockBrands
	bookings  *mockBookings
	publisher *recordingPublisher
	svc       *BookingService
}

func newBookingFixture() *bookingFixture {
	f := &bookingFixture{
		customers: new(mockCustomers),
		brands:    new(mockBrands),
		bookings:  new(mockBookings),
		publisher: &recordingPublisher{},
	}
	logger := zerolog.New(io.Discard)
	f.svc = NewBookingService(f.customers, f.brands, f.bookings, fixedClock{now: testNow}, f.publisher, &logger)
	return f
}

func consultationInput(customerID int64) models.CreateBookingInput {
	return models.CreateBookingInput{
		Title:      "Consultation",
		Status:     models.BookingPending,
		StartDate:  models.NewDate(2025, time.July, 1),
		EndDate:    models.NewDate(2025, time.July, 2),
		CustomerID: customerID,
	}
}

func TestCreateBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("ValidCustomer", func(t *testing.T) {
		f := newBookingFixture()
		f.customers.On("GetCustomer", ctx, int64(1)).Return(&models.Customer{ID: 1, FullName: "Alice"}, nil)
		f.bookings.On("SaveBooking", ctx, mock.AnythingOfType("*models.Booking")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*models.Booking).ID = 100
			}).
			Return(nil).Once()

		b, err := f.svc.CreateBooking(ctx, consultationInput(1))
		require.NoError(t, err)
		assert.Equal(t, int64(100), b.ID)
		assert.Equal(t, "Consultation", b.Title)
		assert.Equal(t, int64(1), b.CustomerID)
		assert.Nil(t, b.BrandID)
		assert.Equal(t, testNow, b.CreatedAt)
		assert.Equal(t, testNow, b.UpdatedAt)
		assert.Equal(t, []string{events.EventBookingCreated}, f.publisher.types())
		f.bookings.AssertExpectations(t)
	})

	t.Run("UnknownCustomer", func(t *testing.T) {
		f := newBookingFixture()
		f.customers.On("GetCustomer", ctx, int64(404)).Return(nil, nil)

		b, err := f.svc.CreateBooking(ctx, consultationInput(404))
		assert.Nil(t, b)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		assert.Equal(t, models.EntityCustomer, domain.NotFoundEntity(err))
		assert.EqualError(t, err, "Customer not found (id=404)")
		f.bookings.AssertNotCalled(t, "SaveBooking", mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.types())
	})

	t.Run("CustomerLookupError", func(t *testing.T) {
		f := newBookingFixture()
		f.customers.On("GetCustomer", ctx, int64(1)).Return(nil, errors.New("db down"))

		_, err := f.svc.CreateBooking(ctx, consultationInput(1))
		require.Error(t, err)
		assert.False(t, errors.Is(err, domain.ErrNotFound))
		f.bookings.AssertNotCalled(t, "SaveBooking", mock.Anything, mock.Anything)
	})

	t.Run("SaveError", func(t *testing.T) {
		f := newBookingFixture()
		f.customers.On("GetCustomer", ctx, int64(1)).Return(&models.Customer{ID: 1}, nil)
		f.bookings.On("SaveBooking", ctx, mock.Anything).Return(errors.New("disk full"))

		_, err := f.svc.CreateBooking(ctx, consultationInput(1))
		assert.ErrorContains(t, err, "disk full")
		assert.Empty(t, f.publisher.types())
	})

	t.Run("CustomerVanishedBeforeSave", func(t *testing.T) {
		f := newBookingFixture()
		f.customers.On("GetCustomer", ctx, int64(1)).Return(&models.Customer{ID: 1}, nil)
		f.bookings.On("SaveBooking", ctx, mock.Anything).Return(domain.NotFound(models.EntityCustomer, 1))

		_, err := f.svc.CreateBooking(ctx, consultationInput(1))
		assert.EqualError(t, err, "Customer not found (id=1)")
		assert.Equal(t, models.EntityCustomer, domain.NotFoundEntity(err))
		assert.Empty(t, f.publisher.types())
	})

	t.Run("PublishErrorDoesNotFail", func(t *testing.T) {
		f := newBookingFixture()
		f.publisher.err = errors.New("bus down")
		f.customers.On("GetCustomer", ctx, int64(1)).Return(&models.Customer{ID: 1}, nil)
		f.bookings.On("SaveBooking", ctx, mock.Anything).Return(nil)

		_, err := f.svc.CreateBooking(ctx, consultationInput(1))
		assert.NoError(t, err)
	})
}

func TestDeleteBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("DeleteTwice", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("BookingExists", ctx, int64(1)).Return(true, nil).Once()
		f.bookings.On("DeleteBooking", ctx, int64(1)).Return(nil).Once()
		f.bookings.On("BookingExists", ctx, int64(1)).Return(false, nil).Once()

		require.NoError(t, f.svc.DeleteBooking(ctx, 1))

		err := f.svc.DeleteBooking(ctx, 1)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		assert.Equal(t, models.EntityBooking, domain.NotFoundEntity(err))
		f.bookings.AssertNumberOfCalls(t, "DeleteBooking", 1)
		assert.Equal(t, []string{events.EventBookingDeleted}, f.publisher.types())
	})

	t.Run("ExistsError", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("BookingExists", ctx, int64(2)).Return(false, errors.New("locked"))

		err := f.svc.DeleteBooking(ctx, 2)
		assert.ErrorContains(t, err, "locked")
		f.bookings.AssertNotCalled(t, "DeleteBooking", mock.Anything, mock.Anything)
	})
}

func TestAttachBrand(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newBookingFixture()
		original := &models.Booking{ID: 1, Title: "Consultation", CustomerID: 1, CreatedAt: testNow.Add(-time.Hour), UpdatedAt: testNow.Add(-time.Hour)}
		f.bookings.On("GetBooking", ctx, int64(1)).Return(original, nil)
		f.brands.On("GetBrand", ctx, int64(2)).Return(&models.Brand{ID: 2, Name: "Acme"}, nil)
		f.bookings.On("SaveBooking", ctx, mock.MatchedBy(func(b *models.Booking) bool {
			return b.ID == 1 && b.BrandID != nil && *b.BrandID == 2
		})).Return(nil).Once()

		b, err := f.svc.AttachBrand(ctx, 1, 2)
		require.NoError(t, err)
		require.NotNil(t, b.BrandID)
		assert.Equal(t, int64(1), b.ID)
		assert.Equal(t, int64(2), *b.BrandID)
		assert.Equal(t, "Acme", b.BrandName)
		assert.Equal(t, testNow, b.UpdatedAt)
		assert.False(t, b.UpdatedAt.Before(b.CreatedAt))
		assert.Nil(t, original.BrandID, "loaded booking is not mutated")
		assert.Equal(t, []string{events.EventBookingBrandAttached}, f.publisher.types())
	})

	t.Run("UnknownBrand", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("GetBooking", ctx, int64(1)).Return(&models.Booking{ID: 1, CustomerID: 1}, nil)
		f.brands.On("GetBrand", ctx, int64(999)).Return(nil, nil)

		_, err := f.svc.AttachBrand(ctx, 1, 999)
		require.Error(t, err)
		assert.Equal(t, models.EntityBrand, domain.NotFoundEntity(err))
		f.bookings.AssertNotCalled(t, "SaveBooking", mock.Anything, mock.Anything)
	})

	t.Run("UnknownBooking", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("GetBooking", ctx, int64(5)).Return(nil, nil)

		_, err := f.svc.AttachBrand(ctx, 5, 2)
		require.Error(t, err)
		assert.Equal(t, models.EntityBooking, domain.NotFoundEntity(err))
		f.brands.AssertNotCalled(t, "GetBrand", mock.Anything, mock.Anything)
	})

	t.Run("BothUnknownNamesBooking", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("GetBooking", ctx, int64(7)).Return(nil, nil)
		f.brands.On("GetBrand", ctx, int64(8)).Return(nil, nil)

		_, err := f.svc.AttachBrand(ctx, 7, 8)
		require.Error(t, err)
		assert.EqualError(t, err, "Booking not found (id=7)")
	})
}

func TestGetBooking(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture()
	f.bookings.On("GetBooking", ctx, int64(1)).Return(&models.Booking{ID: 1}, nil)
	f.bookings.On("GetBooking", ctx, int64(2)).Return(nil, nil)

	b, err := f.svc.GetBooking(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), b.ID)

	_, err = f.svc.GetBooking(ctx, 2)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestListBookingsBetween(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture()
	from := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)
	f.bookings.On("ListBookingsBetween", ctx, from, to).Return([]*models.Booking{{ID: 1}}, nil)

	list, err := f.svc.ListBookingsBetween(ctx, from, to)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.svc.ListBookingsBetween(ctx, to, from)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

// TestBookingLifecycle_SQLite runs the lifecycle against the real store.
func TestBookingLifecycle_SQLite(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "svc.db")}, &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clock := fixedClock{now: testNow}
	customers := NewCustomerService(db, db, clock, &logger)
	brands := NewBrandService(db, db, clock, nil, &logger)
	bookings := NewBookingService(db, db, db, clock, events.NewEventBus(), &logger)

	alice, err := customers.CreateCustomer(ctx, models.CustomerInput{FullName: "Alice", Status: models.CustomerActive, Age: 30})
	require.NoError(t, err)
	acme, err := brands.CreateBrand(ctx, models.BrandInput{Name: "Acme", Address: "Main st", ShortCode: "ACM"})
	require.NoError(t, err)

	b, err := bookings.CreateBooking(ctx, consultationInput(alice.ID))
	require.NoError(t, err)
	assert.NotZero(t, b.ID)

	t.Run("AttachUnknownBrandLeavesBookingUnchanged", func(t *testing.T) {
		_, err := bookings.AttachBrand(ctx, b.ID, 999)
		require.Error(t, err)

		reread, err := bookings.GetBooking(ctx, b.ID)
		require.NoError(t, err)
		assert.Nil(t, reread.BrandID)
		assert.True(t, b.UpdatedAt.Equal(reread.UpdatedAt))
	})

	t.Run("AttachBrand", func(t *testing.T) {
		attached, err := bookings.AttachBrand(ctx, b.ID, acme.ID)
		require.NoError(t, err)

		reread, err := bookings.GetBooking(ctx, attached.ID)
		require.NoError(t, err)
		require.NotNil(t, reread.BrandID)
		assert.Equal(t, acme.ID, *reread.BrandID)
		assert.Equal(t, "Acme", reread.BrandName)
	})

	t.Run("ReferencedDeletesAreBlocked", func(t *testing.T) {
		assert.ErrorIs(t, customers.DeleteCustomer(ctx, alice.ID), domain.ErrReferenced)
		assert.ErrorIs(t, brands.DeleteBrand(ctx, acme.ID), domain.ErrReferenced)
	})

	t.Run("DeleteTwice", func(t *testing.T) {
		require.NoError(t, bookings.DeleteBooking(ctx, b.ID))
		err := bookings.DeleteBooking(ctx, b.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, models.EntityBooking, domain.NotFoundEntity(err))

		assert.NoError(t, customers.DeleteCustomer(ctx, alice.ID))
	})
}
