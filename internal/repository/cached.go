package repository

import (
	"context"
	"fmt"
	"sync/atomic"

	"customerbooking/internal/domain"
	"customerbooking/internal/models"

	"github.com/rs/zerolog"
)

// readThrough serves key from cache or loads and caches it. writes is bumped by
// every eviction; a fill that raced one is removed again so a stale row never outlives the write.
func readThrough[T any](
	ctx context.Context,
	cache domain.EntityCache,
	writes *atomic.Uint64,
	key string,
	load func() (*T, error),
	logger *zerolog.Logger,
) (*T, error) {
	var cached T
	if found, err := cache.Get(ctx, key, &cached); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if found {
		return &cached, nil
	}

	epoch := writes.Load()
	v, err := load()
	if err != nil || v == nil {
		return v, err
	}
	if err := cache.Set(ctx, key, v); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	if writes.Load() != epoch {
		_ = cache.Delete(ctx, key)
	}
	return v, nil
}

func evict(ctx context.Context, cache domain.EntityCache, writes *atomic.Uint64, key string, logger *zerolog.Logger) {
	writes.Add(1)
	if err := cache.Delete(ctx, key); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("cache evict failed")
	}
}

// CachedCustomers is a read-through cache in front of a CustomerRepository.
// Cache errors are logged and never fail the call; writes evict the entry.
// Reads that gate a mutation should go to the repository itself.
type CachedCustomers struct {
	domain.CustomerRepository
	cache  domain.EntityCache
	writes atomic.Uint64
	logger *zerolog.Logger
}

func NewCachedCustomers(repo domain.CustomerRepository, cache domain.EntityCache, logger *zerolog.Logger) *CachedCustomers {
	return &CachedCustomers{CustomerRepository: repo, cache: cache, logger: logger}
}

func customerKey(id int64) string { return fmt.Sprintf("customer:%d", id) }

func (r *CachedCustomers) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	return readThrough(ctx, r.cache, &r.writes, customerKey(id), func() (*models.Customer, error) {
		return r.CustomerRepository.GetCustomer(ctx, id)
	}, r.logger)
}

func (r *CachedCustomers) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	if err := r.CustomerRepository.UpdateCustomer(ctx, c); err != nil {
		return err
	}
	evict(ctx, r.cache, &r.writes, customerKey(c.ID), r.logger)
	return nil
}

func (r *CachedCustomers) DeleteCustomer(ctx context.Context, id int64) error {
	if err := r.CustomerRepository.DeleteCustomer(ctx, id); err != nil {
		return err
	}
	evict(ctx, r.cache, &r.writes, customerKey(id), r.logger)
	return nil
}

// CachedBrands mirrors CachedCustomers for brands.
type CachedBrands struct {
	domain.BrandRepository
	cache  domain.EntityCache
	writes atomic.Uint64
	logger *zerolog.Logger
}

func NewCachedBrands(repo domain.BrandRepository, cache domain.EntityCache, logger *zerolog.Logger) *CachedBrands {
	return &CachedBrands{BrandRepository: repo, cache: cache, logger: logger}
}

func brandKey(id int64) string { return fmt.Sprintf("brand:%d", id) }

func (r *CachedBrands) GetBrand(ctx context.Context, id int64) (*models.Brand, error) {
	return readThrough(ctx, r.cache, &r.writes, brandKey(id), func() (*models.Brand, error) {
		return r.BrandRepository.GetBrand(ctx, id)
	}, r.logger)
}

func (r *CachedBrands) UpdateBrand(ctx context.Context, b *models.Brand) error {
	if err := r.BrandRepository.UpdateBrand(ctx, b); err != nil {
		return err
	}
	evict(ctx, r.cache, &r.writes, brandKey(b.ID), r.logger)
	return nil
}

func (r *CachedBrands) DeleteBrand(ctx context.Context, id int64) error {
	if err := r.BrandRepository.DeleteBrand(ctx, id); err != nil {
		return err
	}
	evict(ctx, r.cache, &r.writes, brandKey(id), r.logger)
	return nil
}
