package provider

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces a minimum delay between successive provider calls for
// one sport. Each sport's client owns its own instance, so cross-sport
// pipelines never serialize on each other.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a limiter with the given minimum inter-call interval.
func NewLimiter(minInterval time.Duration) *Limiter {
	if minInterval <= 0 {
		minInterval = 500 * time.Millisecond
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
	}
}

// Throttle blocks until the next call is permitted or the context ends.
func (l *Limiter) Throttle(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
