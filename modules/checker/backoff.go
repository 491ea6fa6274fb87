package checker

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// backoff computes retry pauses for the marketplace client: exponential
// growth from base, doubled per attempt, with up to jitter of random spread,
// capped at max. Attempt starts at 1 for the first retry.
type backoff struct {
	base   time.Duration
	max    time.Duration
	jitter float64
}

func (b backoff) delay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	base := b.base
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	limit := b.max
	if limit <= 0 {
		limit = 10 * time.Second
	}

	d := float64(base) * math.Pow(2, float64(attempt-1))
	if b.jitter > 0 {
		d *= 1 + (rand.Float64()*2-1)*b.jitter
	}
	if d > float64(limit) {
		d = float64(limit)
	}
	return time.Duration(d)
}

// sleep blocks for d or until ctx is done, returning ctx.Err() in that case.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
