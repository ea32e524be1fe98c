package cleaner

import (
	"context"
	"time"
)

// Throttle spaces successive rewriter calls inside one source batch.
// A Throttle is used by a single goroutine and is not safe for concurrent use.
type Throttle interface {
	// Wait blocks until the next call may proceed or ctx is done.
	Wait(ctx context.Context) error
}

// ThrottleFactory creates a fresh Throttle for each batch.
type ThrottleFactory func() Throttle

// FixedInterval lets the first call through and delays every later call by a fixed interval.
type FixedInterval struct {
	interval time.Duration
	started  bool
	after    func(time.Duration) <-chan time.Time
}

// NewFixedInterval returns a throttle that waits interval between calls.
func NewFixedInterval(interval time.Duration) *FixedInterval {
	return &FixedInterval{interval: interval, after: time.After}
}

// FixedIntervalFactory returns a factory producing independent FixedInterval throttles.
func FixedIntervalFactory(interval time.Duration) ThrottleFactory {
	return func() Throttle { return NewFixedInterval(interval) }
}

func (f *FixedInterval) Wait(ctx context.Context) error {
	if !f.started {
		f.started = true
		return ctx.Err()
	}
	if f.interval <= 0 {
		return ctx.Err()
	}
	select {
	case <-f.after(f.interval):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NoThrottle never waits.
type NoThrottle struct{}

func (NoThrottle) Wait(ctx context.Context) error { return ctx.Err() }

// NoThrottleFactory produces NoThrottle values.
func NoThrottleFactory() Throttle { return NoThrottle{} }
