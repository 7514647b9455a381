package api

import (
	"sync"
	"sync/atomic"
	"time"

	"customerbooking/internal/config"

	"golang.org/x/time/rate"
)

const (
	defaultBurst = 5
	// bucketIdleTTL is the minimum time a client key may stay silent before its bucket is dropped.
	bucketIdleTTL = 10 * time.Minute
	sweepInterval = time.Minute
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

// rateLimiter keeps a token bucket per client key, shared by the HTTP and gRPC surfaces.
// A nil limiter or a non-positive RPS lets everything through. Idle buckets are
// swept so the key set stays bounded by recent clients.
type rateLimiter struct {
	buckets   sync.Map // string -> *bucket
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep atomic.Int64
	now       func() time.Time
}

func newRateLimiter(cfg config.APIRateLimitConfig) *rateLimiter {
	burst := cfg.Burst
	if burst <= 0 {
		burst = defaultBurst
	}
	l := &rateLimiter{limit: rate.Limit(cfg.RPS), burst: burst, idleTTL: bucketIdleTTL, now: time.Now}
	if cfg.RPS > 0 {
		// never drop a bucket before it could have refilled completely
		if refill := time.Duration(float64(burst) / cfg.RPS * float64(time.Second)); refill > l.idleTTL {
			l.idleTTL = refill
		}
	}
	l.lastSweep.Store(l.now().UnixNano())
	return l
}

func (l *rateLimiter) Allow(key string) bool {
	if l == nil || l.limit <= 0 {
		return true
	}

	now := l.now()
	l.maybeSweep(now)

	b := l.bucket(key)
	b.lastSeen.Store(now.UnixNano())
	return b.limiter.AllowN(now, 1)
}

func (l *rateLimiter) bucket(key string) *bucket {
	if v, ok := l.buckets.Load(key); ok {
		return v.(*bucket)
	}
	v, _ := l.buckets.LoadOrStore(key, &bucket{limiter: rate.NewLimiter(l.limit, l.burst)})
	return v.(*bucket)
}

// maybeSweep lets one caller per sweepInterval drop buckets idle longer than idleTTL.
// A dropped bucket would be full again anyway, so recreating it changes no decision.
func (l *rateLimiter) maybeSweep(now time.Time) {
	last := l.lastSweep.Load()
	if now.UnixNano()-last < int64(sweepInterval) || !l.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}

	cutoff := now.Add(-l.idleTTL).UnixNano()
	l.buckets.Range(func(key, v any) bool {
		if v.(*bucket).lastSeen.Load() < cutoff {
			l.buckets.Delete(key)
		}
		return true
	})
}
