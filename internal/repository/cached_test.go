package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"customerbooking/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCustomerRepo struct {
	mock.Mock
}

func (m *MockCustomerRepo) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*models.Customer)
	return c, args.Error(1)
}

func (m *MockCustomerRepo) ListCustomers(ctx context.Context, page models.PageRequest) ([]*models.Customer, error) {
	args := m.Called(ctx, page)
	list, _ := args.Get(0).([]*models.Customer)
	return list, args.Error(1)
}

func (m *MockCustomerRepo) CreateCustomer(ctx context.Context, c *models.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCustomerRepo) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCustomerRepo) DeleteCustomer(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockBrandRepo struct {
	mock.Mock
}

func (m *MockBrandRepo) GetBrand(ctx context.Context, id int64) (*models.Brand, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*models.Brand)
	return b, args.Error(1)
}

func (m *MockBrandRepo) ListBrands(ctx context.Context, page models.PageRequest) ([]*models.Brand, error) {
	args := m.Called(ctx, page)
	list, _ := args.Get(0).([]*models.Brand)
	return list, args.Error(1)
}

func (m *MockBrandRepo) CreateBrand(ctx context.Context, b *models.Brand) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBrandRepo) UpdateBrand(ctx context.Context, b *models.Brand) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBrandRepo) DeleteBrand(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func TestCachedCustomers(t *testing.T) {
	repo := new(MockCustomerRepo)
	cache := NewMemoryCache(time.Hour)
	logger := zerolog.Nop()
	r := NewCachedCustomers(repo, cache, &logger)
	ctx := context.Background()

	alice := &models.Customer{ID: 1, FullName: "Alice", Status: models.CustomerActive, Age: 30}

	t.Run("ReadThrough", func(t *testing.T) {
		repo.On("GetCustomer", ctx, int64(1)).Return(alice, nil).Once()

		got, err := r.GetCustomer(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Alice", got.FullName)

		// second read is served from the cache
		got, err = r.GetCustomer(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Alice", got.FullName)
		repo.AssertNumberOfCalls(t, "GetCustomer", 1)
	})

	t.Run("MissIsNotCached", func(t *testing.T) {
		repo.On("GetCustomer", ctx, int64(404)).Return(nil, nil).Twice()

		for i := 0; i < 2; i++ {
			got, err := r.GetCustomer(ctx, 404)
			require.NoError(t, err)
			assert.Nil(t, got)
		}
		repo.AssertExpectations(t)
	})

	t.Run("UpdateEvicts", func(t *testing.T) {
		updated := &models.Customer{ID: 1, FullName: "Alice B", Status: models.CustomerActive, Age: 31}
		repo.On("UpdateCustomer", ctx, updated).Return(nil).Once()
		repo.On("GetCustomer", ctx, int64(1)).Return(updated, nil).Once()

		require.NoError(t, r.UpdateCustomer(ctx, updated))
		got, err := r.GetCustomer(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Alice B", got.FullName)
	})

	t.Run("FailedDeleteKeepsEntry", func(t *testing.T) {
		repo.On("DeleteCustomer", ctx, int64(1)).Return(errors.New("referenced")).Once()

		assert.Error(t, r.DeleteCustomer(ctx, 1))
		var cached models.Customer
		found, _ := cache.Get(ctx, customerKey(1), &cached)
		assert.True(t, found)
	})

	t.Run("DeleteEvicts", func(t *testing.T) {
		repo.On("DeleteCustomer", ctx, int64(1)).Return(nil).Once()

		require.NoError(t, r.DeleteCustomer(ctx, 1))
		var cached models.Customer
		found, _ := cache.Get(ctx, customerKey(1), &cached)
		assert.False(t, found)
	})
}

func TestCachedCustomers_FillRacingDeleteIsDropped(t *testing.T) {
	repo := new(MockCustomerRepo)
	cache := NewMemoryCache(time.Hour)
	logger := zerolog.Nop()
	r := NewCachedCustomers(repo, cache, &logger)
	ctx := context.Background()

	bob := &models.Customer{ID: 9, FullName: "Bob"}
	repo.On("DeleteCustomer", ctx, int64(9)).Return(nil).Once()
	// the row is read, then deleted before the reader fills the cache
	repo.On("GetCustomer", ctx, int64(9)).Return(bob, nil).Once().Run(func(mock.Arguments) {
		require.NoError(t, r.DeleteCustomer(ctx, 9))
	})

	got, err := r.GetCustomer(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, "Bob", got.FullName)

	var cached models.Customer
	found, _ := cache.Get(ctx, customerKey(9), &cached)
	assert.False(t, found)
}

func TestCachedCustomers_CacheErrorFallsThrough(t *testing.T) {
	repo := new(MockCustomerRepo)
	cache := new(MockCache)
	logger := zerolog.Nop()
	r := NewCachedCustomers(repo, cache, &logger)
	ctx := context.Background()

	alice := &models.Customer{ID: 1, FullName: "Alice"}
	cache.On("Get", ctx, "customer:1", mock.Anything).Return(false, errors.New("down")).Once()
	cache.On("Set", ctx, "customer:1", alice).Return(errors.New("down")).Once()
	repo.On("GetCustomer", ctx, int64(1)).Return(alice, nil).Once()

	got, err := r.GetCustomer(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, alice, got)
	cache.AssertExpectations(t)
}

func TestCachedBrands(t *testing.T) {
	repo := new(MockBrandRepo)
	cache := NewMemoryCache(time.Hour)
	logger := zerolog.Nop()
	r := NewCachedBrands(repo, cache, &logger)
	ctx := context.Background()

	acme := &models.Brand{ID: 7, Name: "Acme", Address: "Main st", ShortCode: "ACM"}
	repo.On("GetBrand", ctx, int64(7)).Return(acme, nil).Once()

	got, err := r.GetBrand(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
	_, err = r.GetBrand(ctx, 7)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "GetBrand", 1)

	repo.On("DeleteBrand", ctx, int64(7)).Return(nil).Once()
	require.NoError(t, r.DeleteBrand(ctx, 7))
	var cached models.Brand
	found, _ := cache.Get(ctx, brandKey(7), &cached)
	assert.False(t, found)
}
