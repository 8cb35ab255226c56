package worker

import (
	"context"
	"time"
)

// Throttle paces calls to one external service: a fixed pause after each
// call plus an optional token bucket shared through a Limiter.
type Throttle struct {
	limiter *Limiter
	service string
	delay   time.Duration
}

// NewThrottle creates a throttle for service
func NewThrottle(service string, delay time.Duration, requestsPerSecond float64, burst int) *Throttle {
	return &Throttle{
		limiter: NewLimiter(requestsPerSecond, burst),
		service: service,
		delay:   delay,
	}
}

// Wait blocks until the next call may proceed
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil {
		return ctx.Err()
	}
	return t.limiter.WaitWithDelay(ctx, t.service, t.delay)
}

// Delay returns the fixed pause applied after each call
func (t *Throttle) Delay() time.Duration {
	if t == nil {
		return 0
	}
	return t.delay
}
