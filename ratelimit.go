package xraytl

import (
	"context"
	"sync"
	"time"
)

// RateLimitConfig configures a RateLimiter.
type RateLimitConfig struct {
	RequestsPerMinute int // sustained rate; 60 when unset
	BurstSize         int // bucket capacity; RequestsPerMinute when unset
}

// RateLimiter is a token bucket shared by every worker that talks to one
// backend. Each backend batch costs one token.
type RateLimiter struct {
	mu        sync.Mutex
	capacity  float64
	perSecond float64
	level     float64
	updated   time.Time
	now       func() time.Time
}

// NewRateLimiter returns a limiter whose bucket starts full.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = rpm
	}

	l := &RateLimiter{
		capacity:  float64(burst),
		perSecond: float64(rpm) / 60,
		level:     float64(burst),
		now:       time.Now,
	}
	l.updated = l.now()
	return l
}

// Wait blocks until a token is taken or ctx is done.
func (l *RateLimiter) Wait(ctx context.Context) error {
	for {
		delay := l.take()
		if delay == 0 {
			return nil
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// TryAcquire takes a token if one is available right now.
func (l *RateLimiter) TryAcquire() bool {
	return l.take() == 0
}

// Available reports the current bucket level.
func (l *RateLimiter) Available() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.advance()
	return l.level
}

// take spends one token and returns zero, or returns the time until a token
// will be available.
func (l *RateLimiter) take() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.advance()
	if l.level >= 1 {
		l.level--
		return 0
	}
	delay := time.Duration((1 - l.level) / l.perSecond * float64(time.Second))
	if delay <= 0 {
		delay = time.Millisecond
	}
	return delay
}

// advance credits the tokens earned since the last update. l.mu must be held.
func (l *RateLimiter) advance() {
	now := l.now()
	if elapsed := now.Sub(l.updated).Seconds(); elapsed > 0 {
		l.level = min(l.capacity, l.level+elapsed*l.perSecond)
	}
	l.updated = now
}

// RateLimitedBackend gates every batch of a Backend through a RateLimiter.
type RateLimitedBackend struct {
	backend Backend
	limiter *RateLimiter
}

// NewRateLimitedBackend wraps backend with a fresh limiter built from cfg.
func NewRateLimitedBackend(backend Backend, cfg RateLimitConfig) *RateLimitedBackend {
	return &RateLimitedBackend{backend: backend, limiter: NewRateLimiter(cfg)}
}

// Translate waits for a token and then forwards the batch.
func (b *RateLimitedBackend) Translate(ctx context.Context, req BatchRequest) ([]string, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, &ProviderError{Message: "rate limit wait cancelled", Cause: err}
	}
	return b.backend.Translate(ctx, req)
}

// Limiter exposes the limiter so callers can inspect or share it.
func (b *RateLimitedBackend) Limiter() *RateLimiter {
	return b.limiter
}
