package chat

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter is a per-sender token bucket: limit events per window, with
// bursts up to limit.
type RateLimiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	every    rate.Limit
	now      func() time.Time
	limiters map[string]*rate.Limiter
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return NewRateLimiterWithClock(limit, window, time.Now)
}

func NewRateLimiterWithClock(limit int, window time.Duration, now func() time.Time) *RateLimiter {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = time.Second
	}
	if now == nil {
		now = time.Now
	}

	return &RateLimiter{
		limit:    limit,
		window:   window,
		every:    rate.Every(window / time.Duration(limit)),
		now:      now,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Reserve takes one token for key, or returns a *RateLimitError naming scope
// and the wait until a token is available again.
func (r *RateLimiter) Reserve(key, scope string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	lim, ok := r.limiters[key]
	if !ok {
		lim = rate.NewLimiter(r.every, r.limit)
		r.limiters[key] = lim
	}

	now := r.now()
	res := lim.ReserveN(now, 1)
	if !res.OK() {
		return NewRateLimitError(scope, r.window)
	}
	if wait := res.DelayFrom(now); wait > 0 {
		res.CancelAt(now)
		return NewRateLimitError(scope, wait)
	}
	return nil
}
