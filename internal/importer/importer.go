// Package importer loads code-split content with a bounded, fixed-interval retry policy.
package importer

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	// DefaultRetries is the retry budget applied after the initial attempt.
	DefaultRetries = 3
	// DefaultDelay is the fixed wait between attempts.
	DefaultDelay = time.Second
)

// Policy describes how a load is retried. The zero value performs a single attempt.
type Policy struct {
	// Retries is the number of additional attempts after the first one.
	Retries int
	// Delay is the fixed wait between attempts. There is no growth and no jitter.
	Delay time.Duration
	// AttemptTimeout bounds each attempt when positive. Zero leaves attempts unbounded.
	AttemptTimeout time.Duration
	// Notify, when set, is called before each retry with the failed attempt number (1-based).
	Notify func(attempt int, err error, next time.Duration)
}

// DefaultPolicy returns the standard policy: three retries one second apart.
func DefaultPolicy() Policy {
	return Policy{Retries: DefaultRetries, Delay: DefaultDelay}
}

// Option customises a Policy.
type Option func(*Policy)

// WithDelay overrides the fixed wait between attempts.
func WithDelay(d time.Duration) Option {
	return func(p *Policy) {
		if d >= 0 {
			p.Delay = d
		}
	}
}

// WithAttemptTimeout bounds every individual attempt.
func WithAttemptTimeout(d time.Duration) Option {
	return func(p *Policy) {
		p.AttemptTimeout = d
	}
}

// WithNotify registers a callback invoked before each retry.
func WithNotify(fn func(attempt int, err error, next time.Duration)) Option {
	return func(p *Policy) {
		p.Notify = fn
	}
}

// ImportWithRetry runs load once and then up to retries more times, waiting a fixed delay
// between attempts. When the budget is exhausted the last error is returned unchanged.
// A negative retries value is treated as zero.
func ImportWithRetry[T any](ctx context.Context, load func(context.Context) (T, error), retries int, opts ...Option) (T, error) {
	p := DefaultPolicy()
	p.Retries = retries
	for _, opt := range opts {
		opt(&p)
	}
	return Do(ctx, p, load)
}

// Do runs load under the given policy.
func Do[T any](ctx context.Context, p Policy, load func(context.Context) (T, error)) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	retries := p.Retries
	if retries < 0 {
		retries = 0
	}
	delay := p.Delay
	if delay < 0 {
		delay = 0
	}

	attempt := 0
	operation := func() (T, error) {
		attempt++
		if p.AttemptTimeout <= 0 {
			return load(ctx)
		}
		return loadWithTimeout(ctx, p.AttemptTimeout, load)
	}

	retryOpts := []backoff.RetryOption{
		backoff.WithBackOff(backoff.NewConstantBackOff(delay)),
		backoff.WithMaxTries(uint(retries) + 1),
		backoff.WithMaxElapsedTime(0),
	}
	if p.Notify != nil {
		retryOpts = append(retryOpts, backoff.WithNotify(func(err error, next time.Duration) {
			p.Notify(attempt, err, next)
		}))
	}
	return backoff.Retry(ctx, operation, retryOpts...)
}

type result[T any] struct {
	value T
	err   error
}

// loadWithTimeout abandons an attempt that outlives d even if load ignores its context.
func loadWithTimeout[T any](ctx context.Context, d time.Duration, load func(context.Context) (T, error)) (T, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	done := make(chan result[T], 1)
	go func() {
		v, err := load(attemptCtx)
		done <- result[T]{value: v, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-attemptCtx.Done():
		var zero T
		return zero, attemptCtx.Err()
	}
}

// Permanent marks err as not worth retrying. Do returns it after the current attempt,
// and errors.Is still matches the wrapped error.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
