package service

import (
	"context"
	"errors"
	"testing"

	"customerbooking/internal/domain"
	"customerbooking/internal/events"
	"customerbooking/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBrandService(t *testing.T) {
	ctx := context.Background()
	input := models.BrandInput{Name: "Acme", Address: "Main st. 1", ShortCode: "ACM"}

	newSvc := func() (*BrandService, *mockBrands, *mockBookings) {
		brands, bookings := new(mockBrands), new(mockBookings)
		return NewBrandService(brands, bookings, fixedClock{now: testNow}, nil, nil), brands, bookings
	}

	t.Run("Create", func(t *testing.T) {
		svc, brands, _ := newSvc()
		brands.On("CreateBrand", ctx, mock.Anything).
			Run(func(args mock.Arguments) { args.Get(1).(*models.Brand).ID = 2 }).
			Return(nil)

		b, err := svc.CreateBrand(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, int64(2), b.ID)
		assert.Equal(t, "ACM", b.ShortCode)
		assert.Equal(t, testNow, b.CreatedAt)
	})

	t.Run("CreateStoreError", func(t *testing.T) {
		svc, brands, _ := newSvc()
		brands.On("CreateBrand", ctx, mock.Anything).Return(errors.New("readonly"))

		_, err := svc.CreateBrand(ctx, input)
		assert.ErrorContains(t, err, "readonly")
	})

	t.Run("Update", func(t *testing.T) {
		svc, brands, _ := newSvc()
		brands.On("GetBrand", ctx, int64(2)).Return(&models.Brand{ID: 2, Name: "Old"}, nil)
		brands.On("UpdateBrand", ctx, mock.MatchedBy(func(b *models.Brand) bool { return b.Name == "Acme" })).Return(nil)

		b, err := svc.UpdateBrand(ctx, 2, input)
		require.NoError(t, err)
		assert.Equal(t, testNow, b.UpdatedAt)
	})

	t.Run("RenamePublishesPerBooking", func(t *testing.T) {
		brands, bookings := new(mockBrands), new(mockBookings)
		publisher := &recordingPublisher{}
		svc := NewBrandService(brands, bookings, fixedClock{now: testNow}, publisher, nil)

		firstPage := make([]*models.Booking, models.MaxPageSize)
		for i := range firstPage {
			firstPage[i] = &models.Booking{ID: int64(i + 1)}
		}
		brands.On("GetBrand", ctx, int64(2)).Return(&models.Brand{ID: 2, Name: "Old"}, nil)
		brands.On("UpdateBrand", ctx, mock.Anything).Return(nil)
		bookings.On("ListBookingsByBrand", ctx, int64(2), models.PageRequest{Page: 0, Size: models.MaxPageSize}).Return(firstPage, nil)
		bookings.On("ListBookingsByBrand", ctx, int64(2), models.PageRequest{Page: 1, Size: models.MaxPageSize}).
			Return([]*models.Booking{{ID: 500}}, nil)

		_, err := svc.UpdateBrand(ctx, 2, input)
		require.NoError(t, err)

		types := publisher.types()
		assert.Len(t, types, models.MaxPageSize+1)
		assert.Equal(t, events.EventBookingBrandRenamed, types[0])
		last := publisher.events[len(publisher.events)-1].Payload.(events.BookingEventPayload)
		assert.Equal(t, int64(500), last.BookingID)
	})

	t.Run("SameNameIsSilent", func(t *testing.T) {
		brands, bookings := new(mockBrands), new(mockBookings)
		publisher := &recordingPublisher{}
		svc := NewBrandService(brands, bookings, fixedClock{now: testNow}, publisher, nil)

		brands.On("GetBrand", ctx, int64(2)).Return(&models.Brand{ID: 2, Name: "Acme", Address: "Old st"}, nil)
		brands.On("UpdateBrand", ctx, mock.Anything).Return(nil)

		_, err := svc.UpdateBrand(ctx, 2, input)
		require.NoError(t, err)
		assert.Empty(t, publisher.types())
		bookings.AssertNotCalled(t, "ListBookingsByBrand", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("RenameListErrorStillUpdates", func(t *testing.T) {
		brands, bookings := new(mockBrands), new(mockBookings)
		publisher := &recordingPublisher{}
		svc := NewBrandService(brands, bookings, fixedClock{now: testNow}, publisher, nil)

		brands.On("GetBrand", ctx, int64(2)).Return(&models.Brand{ID: 2, Name: "Old"}, nil)
		brands.On("UpdateBrand", ctx, mock.Anything).Return(nil)
		bookings.On("ListBookingsByBrand", ctx, int64(2), mock.Anything).Return(nil, errors.New("locked"))

		b, err := svc.UpdateBrand(ctx, 2, input)
		require.NoError(t, err)
		assert.Equal(t, "Acme", b.Name)
		assert.Empty(t, publisher.types())
	})

	t.Run("DeleteNotFound", func(t *testing.T) {
		svc, brands, bookings := newSvc()
		brands.On("GetBrand", ctx, int64(9)).Return(nil, nil)

		err := svc.DeleteBrand(ctx, 9)
		assert.Equal(t, models.EntityBrand, domain.NotFoundEntity(err))
		bookings.AssertNotCalled(t, "CountBookingsByBrand", mock.Anything, mock.Anything)
	})

	t.Run("DeleteReferenced", func(t *testing.T) {
		svc, brands, bookings := newSvc()
		brands.On("GetBrand", ctx, int64(2)).Return(&models.Brand{ID: 2}, nil)
		bookings.On("CountBookingsByBrand", ctx, int64(2)).Return(1, nil)

		assert.ErrorIs(t, svc.DeleteBrand(ctx, 2), domain.ErrReferenced)
		brands.AssertNotCalled(t, "DeleteBrand", mock.Anything, mock.Anything)
	})

	t.Run("ListBrandBookings", func(t *testing.T) {
		svc, brands, bookings := newSvc()
		page := models.NewPageRequest(0, 5)
		brands.On("GetBrand", ctx, int64(2)).Return(&models.Brand{ID: 2}, nil)
		bookings.On("ListBookingsByBrand", ctx, int64(2), page).Return([]*models.Booking{{ID: 1}, {ID: 3}}, nil)

		list, err := svc.ListBrandBookings(ctx, 2, page)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})
}

func TestSystemClock(t *testing.T) {
	now := SystemClock{}.Now()
	assert.Equal(t, "UTC", now.Location().String())
	assert.False(t, now.IsZero())
}
