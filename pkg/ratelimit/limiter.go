package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Result is the outcome of a non-blocking admission check.
type Result struct {
	// Allowed reports whether the request was admitted and recorded.
	Allowed bool
	// Limit is the maximum number of requests per window.
	Limit int
	// Remaining is the number of admissions left in the current window.
	Remaining int
	// RetryAfter is how long until the next admission can succeed.
	// Zero when the request was allowed.
	RetryAfter time.Duration
}

// window holds the admission timestamps for one key.
type window struct {
	mu     sync.Mutex
	stamps []time.Time
}

// Limiter is a sliding-window rate limiter. It is safe for concurrent use.
type Limiter struct {
	limit  int
	window time.Duration

	adaptive  bool
	baseDelay time.Duration
	jitterMax time.Duration

	mu      sync.Mutex
	windows map[string]*window

	now func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithAdaptiveDelay enables burst smoothing: Acquire sleeps a little after
// each admission, starting from base and growing as the window fills, plus up
// to jitterMax of random jitter.
func WithAdaptiveDelay(base, jitterMax time.Duration) Option {
	return func(l *Limiter) {
		l.adaptive = true
		if base > 0 {
			l.baseDelay = base
		}
		if jitterMax >= 0 {
			l.jitterMax = jitterMax
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// New creates a Limiter admitting at most limit requests per trailing window.
func New(limit int, windowDur time.Duration, opts ...Option) (*Limiter, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if windowDur <= 0 {
		return nil, ErrInvalidWindow
	}
	l := &Limiter{
		limit:     limit,
		window:    windowDur,
		baseDelay: 500 * time.Millisecond,
		jitterMax: 200 * time.Millisecond,
		windows:   make(map[string]*window),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Allow makes a non-blocking admission decision for key. On admission the
// current timestamp is recorded atomically with the count check.
func (l *Limiter) Allow(key string) (Result, error) {
	if key == "" {
		return Result{}, ErrKeyRequired
	}

	w := l.windowFor(key)
	now := l.now()

	w.mu.Lock()
	defer w.mu.Unlock()

	w.prune(now.Add(-l.window))
	if len(w.stamps) >= l.limit {
		retry := l.window - now.Sub(w.stamps[0])
		if retry < 0 {
			retry = 0
		}
		return Result{Limit: l.limit, Remaining: 0, RetryAfter: retry}, nil
	}

	w.stamps = append(w.stamps, now)
	return Result{Allowed: true, Limit: l.limit, Remaining: l.limit - len(w.stamps)}, nil
}

// Acquire blocks until a request for key is admitted or the context ends.
// In adaptive mode the post-admission smoothing delay is also slept here.
func (l *Limiter) Acquire(ctx context.Context, key string) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := l.Allow(key)
		if err != nil {
			return err
		}
		if res.Allowed {
			if l.adaptive {
				if err := sleep(ctx, l.AdaptiveDelay(key)); err != nil {
					return err
				}
			}
			return nil
		}

		wait := res.RetryAfter
		if wait <= 0 {
			wait = time.Millisecond
		}
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// AdaptiveDelay computes the current smoothing delay for key: the base delay
// while the window has headroom, stretching toward an even request spacing as
// the window fills, plus jitter.
func (l *Limiter) AdaptiveDelay(key string) time.Duration {
	w := l.windowFor(key)
	now := l.now()

	w.mu.Lock()
	w.prune(now.Add(-l.window))
	count := len(w.stamps)
	var oldest time.Time
	if count > 0 {
		oldest = w.stamps[0]
	}
	w.mu.Unlock()

	delay := l.baseDelay
	if count >= l.limit {
		if left := l.window - now.Sub(oldest); left > 0 {
			delay = left / time.Duration(l.limit)
		}
	}
	if l.jitterMax > 0 {
		delay += time.Duration(rand.Int63n(int64(l.jitterMax)))
	}
	return delay
}

// Status reports the window occupancy for key without recording an admission.
func (l *Limiter) Status(key string) Result {
	w := l.windowFor(key)
	now := l.now()

	w.mu.Lock()
	defer w.mu.Unlock()

	w.prune(now.Add(-l.window))
	remaining := l.limit - len(w.stamps)
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: remaining > 0, Limit: l.limit, Remaining: remaining}
}

// Reset drops the recorded window for key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

func (l *Limiter) windowFor(key string) *window {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.windows[key]
	if !ok {
		w = &window{stamps: make([]time.Time, 0, l.limit)}
		l.windows[key] = w
	}
	return w
}

// prune drops timestamps at or before cutoff. Caller holds w.mu.
func (w *window) prune(cutoff time.Time) {
	keep := 0
	for _, ts := range w.stamps {
		if ts.After(cutoff) {
			break
		}
		keep++
	}
	if keep > 0 {
		w.stamps = append(w.stamps[:0], w.stamps[keep:]...)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
