package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"customerbooking/internal/domain"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverCache routes to primary until it errors, then serves from fallback
// and probes primary again once recoveryInterval has passed.
// Keys deleted while primary is unreachable are purged from it before it serves again.
type FailoverCache struct {
	primary   domain.EntityCache
	fallback  domain.EntityCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64 // unix nanos
	now       func() time.Time

	pendingMu sync.Mutex
	pending   map[string]struct{}
}

func NewFailoverCache(primary, fallback domain.EntityCache, logger *zerolog.Logger) *FailoverCache {
	return &FailoverCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
		pending:  make(map[string]struct{}),
	}
}

func (c *FailoverCache) markDown(err error) {
	if !c.isDown.Swap(true) {
		c.logger.Error().Err(err).Msg("primary cache failed, falling back to memory")
	}
	c.lastCheck.Store(c.now().UnixNano())
}

// usePrimary reports whether the next call should try primary.
func (c *FailoverCache) usePrimary() bool {
	if !c.isDown.Load() {
		return true
	}
	return c.now().Sub(time.Unix(0, c.lastCheck.Load())) > recoveryInterval
}

func (c *FailoverCache) recovered() {
	if c.isDown.Swap(false) {
		c.logger.Info().Msg("primary cache recovered")
	}
}

func (c *FailoverCache) rememberDeleted(key string) {
	c.pendingMu.Lock()
	c.pending[key] = struct{}{}
	c.pendingMu.Unlock()
}

// purgePending replays deletes missed during an outage. Keys stay pending until primary confirms them.
func (c *FailoverCache) purgePending(ctx context.Context) error {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()

	for key := range c.pending {
		if err := c.primary.Delete(ctx, key); err != nil {
			return err
		}
		delete(c.pending, key)
	}
	return nil
}

func (c *FailoverCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if c.usePrimary() {
		err := c.purgePending(ctx)
		var found bool
		if err == nil {
			found, err = c.primary.Get(ctx, key, dest)
		}
		if err == nil {
			c.recovered()
			return found, nil
		}
		c.markDown(err)
	}
	return c.fallback.Get(ctx, key, dest)
}

func (c *FailoverCache) Set(ctx context.Context, key string, value any) error {
	if c.usePrimary() {
		err := c.purgePending(ctx)
		if err == nil {
			err = c.primary.Set(ctx, key, value)
		}
		if err == nil {
			c.recovered()
			return nil
		}
		c.markDown(err)
	}
	return c.fallback.Set(ctx, key, value)
}

// Delete always clears the fallback so an entry written during an outage cannot outlive an update.
// A delete primary cannot take is remembered and replayed on recovery.
func (c *FailoverCache) Delete(ctx context.Context, key string) error {
	_ = c.fallback.Delete(ctx, key)
	if c.usePrimary() {
		err := c.primary.Delete(ctx, key)
		if err == nil {
			c.recovered()
			return nil
		}
		c.markDown(err)
	}
	c.rememberDeleted(key)
	return nil
}
