package extract

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket shared by every pipeline that talks to the
// same LLM endpoint.
type RateLimiter struct {
	mu sync.Mutex

	perMinute  int
	tokens     float64
	lastUpdate time.Time

	consumed int64
	waited   time.Duration
}

// RateLimiterStatus reports current limiter state.
type RateLimiterStatus struct {
	TokensAvailable int           `json:"tokens_available"`
	TokensLimit     int           `json:"tokens_limit"`
	TotalConsumed   int64         `json:"total_consumed"`
	TotalWaited     time.Duration `json:"total_waited"`
}

// NewRateLimiter returns nil when requestsPerMinute is not positive; a nil
// limiter never blocks.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	return &RateLimiter{
		perMinute:  requestsPerMinute,
		tokens:     float64(requestsPerMinute),
		lastUpdate: time.Now(),
	}
}

// Wait blocks until a token is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if r == nil {
		return ctx.Err()
	}
	for {
		r.mu.Lock()
		r.refill()
		if r.tokens >= 1 {
			r.tokens--
			r.consumed++
			r.mu.Unlock()
			return nil
		}
		wait := time.Duration((1 - r.tokens) / r.rate() * float64(time.Second))
		r.mu.Unlock()

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
			r.mu.Lock()
			r.waited += wait
			r.mu.Unlock()
		}
	}
}

// Status is safe to call on a nil limiter.
func (r *RateLimiter) Status() RateLimiterStatus {
	if r == nil {
		return RateLimiterStatus{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refill()
	return RateLimiterStatus{
		TokensAvailable: int(r.tokens),
		TokensLimit:     r.perMinute,
		TotalConsumed:   r.consumed,
		TotalWaited:     r.waited,
	}
}

// tokens per second
func (r *RateLimiter) rate() float64 {
	return float64(r.perMinute) / 60
}

// refill must be called with mu held.
func (r *RateLimiter) refill() {
	now := time.Now()
	r.tokens += now.Sub(r.lastUpdate).Seconds() * r.rate()
	r.lastUpdate = now
	if max := float64(r.perMinute); r.tokens > max {
		r.tokens = max
	}
}
