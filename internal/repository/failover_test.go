package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"customerbooking/internal/config"
	"customerbooking/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value any) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func TestFailoverCache(t *testing.T) {
	primary := new(MockCache)
	fallback := new(MockCache)
	logger := zerolog.Nop()
	c := NewFailoverCache(primary, fallback, &logger)
	ctx := context.Background()
	errDown := errors.New("connection refused")

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	t.Run("PrimarySuccess", func(t *testing.T) {
		primary.On("Get", ctx, "customer:1", mock.Anything).Return(true, nil).Once()

		found, err := c.Get(ctx, "customer:1", &models.Customer{})
		assert.NoError(t, err)
		assert.True(t, found)
		assert.False(t, c.isDown.Load())
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallback", func(t *testing.T) {
		primary.On("Get", ctx, "customer:2", mock.Anything).Return(false, errDown).Once()
		fallback.On("Get", ctx, "customer:2", mock.Anything).Return(true, nil).Once()

		found, err := c.Get(ctx, "customer:2", &models.Customer{})
		assert.NoError(t, err)
		assert.True(t, found)
		assert.True(t, c.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("AlreadyDownSkipsPrimary", func(t *testing.T) {
		fallback.On("Set", ctx, "customer:3", mock.Anything).Return(nil).Once()

		require.NoError(t, c.Set(ctx, "customer:3", &models.Customer{ID: 3}))
		primary.AssertNotCalled(t, "Set", ctx, "customer:3", mock.Anything)
		fallback.AssertExpectations(t)
	})

	t.Run("RecoveryAttemptFails", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		primary.On("Get", ctx, "customer:4", mock.Anything).Return(false, errDown).Once()
		fallback.On("Get", ctx, "customer:4", mock.Anything).Return(false, nil).Once()

		found, err := c.Get(ctx, "customer:4", &models.Customer{})
		assert.NoError(t, err)
		assert.False(t, found)
		assert.True(t, c.isDown.Load())
		primary.AssertExpectations(t)
	})

	t.Run("Recovery", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		primary.On("Set", ctx, "customer:5", mock.Anything).Return(nil).Once()

		require.NoError(t, c.Set(ctx, "customer:5", &models.Customer{ID: 5}))
		assert.False(t, c.isDown.Load())
		primary.AssertExpectations(t)
	})

	t.Run("DeleteClearsBoth", func(t *testing.T) {
		fallback.On("Delete", ctx, "customer:6").Return(nil).Once()
		primary.On("Delete", ctx, "customer:6").Return(nil).Once()

		require.NoError(t, c.Delete(ctx, "customer:6"))
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("DeletePrimaryFailure", func(t *testing.T) {
		fallback.On("Delete", ctx, "customer:7").Return(nil).Once()
		primary.On("Delete", ctx, "customer:7").Return(errDown).Once()

		assert.NoError(t, c.Delete(ctx, "customer:7"))
		assert.True(t, c.isDown.Load())
		assert.Contains(t, c.pending, "customer:7")
	})
}

func TestFailoverCache_DeleteDuringOutageIsReplayed(t *testing.T) {
	t.Run("Mock", func(t *testing.T) {
		primary := new(MockCache)
		fallback := NewMemoryCache(time.Hour)
		logger := zerolog.Nop()
		c := NewFailoverCache(primary, fallback, &logger)
		ctx := context.Background()
		now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		c.now = func() time.Time { return now }

		primary.On("Delete", ctx, "brand:1").Return(errors.New("connection refused")).Once()
		require.NoError(t, c.Delete(ctx, "brand:1"))
		assert.True(t, c.isDown.Load())

		now = now.Add(2 * time.Minute)
		primary.On("Delete", ctx, "brand:1").Return(nil).Once()
		primary.On("Get", ctx, "brand:1", mock.Anything).Return(false, nil).Once()

		found, err := c.Get(ctx, "brand:1", &models.Brand{})
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, c.pending)
		primary.AssertExpectations(t)
	})

	t.Run("Redis", func(t *testing.T) {
		s, err := miniredis.Run()
		require.NoError(t, err)
		defer s.Close()

		client := NewRedisClient(config.RedisConfig{Address: s.Addr()})
		defer client.Close()

		logger := zerolog.Nop()
		c := NewFailoverCache(NewRedisCache(client, "cb:", time.Hour), NewMemoryCache(time.Hour), &logger)
		ctx := context.Background()
		now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		c.now = func() time.Time { return now }

		require.NoError(t, c.Set(ctx, "customer:1", &models.Customer{ID: 1, FullName: "Alice"}))
		require.True(t, s.Exists("cb:customer:1"))

		s.Close()
		require.NoError(t, c.Delete(ctx, "customer:1"))
		require.NoError(t, s.Restart())

		now = now.Add(2 * time.Minute)
		found, err := c.Get(ctx, "customer:1", &models.Customer{})
		require.NoError(t, err)
		assert.False(t, found)
		assert.False(t, s.Exists("cb:customer:1"))
		assert.False(t, c.isDown.Load())
	})
}
