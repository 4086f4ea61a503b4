// Package retry implements the bounded exponential-backoff policy used
// around every generative backend call.
package retry

import (
	"context"
	"time"
)

const (
	DefaultMaxRetries   = 3
	DefaultInitialDelay = time.Second
)

// Policy describes one retry budget: up to MaxRetries re-attempts after
// the initial call, sleeping InitialDelay before the first retry and
// doubling before each subsequent one. Only errors the Retryable
// predicate accepts are retried; everything else propagates after a
// single attempt.
type Policy struct {
	MaxRetries   int
	InitialDelay time.Duration

	// Retryable classifies an error; nil retries nothing.
	Retryable func(error) bool

	// sleep is swapped in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New builds a policy with the given budget, normalizing non-positive
// values to the defaults.
func New(maxRetries int, initialDelay time.Duration, retryable func(error) bool) Policy {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if initialDelay <= 0 {
		initialDelay = DefaultInitialDelay
	}
	return Policy{MaxRetries: maxRetries, InitialDelay: initialDelay, Retryable: retryable}
}

// WithSleep returns a copy of the policy using the provided sleeper.
// Intended for tests that want to observe backoff without waiting.
func (p Policy) WithSleep(sleep func(ctx context.Context, d time.Duration) error) Policy {
	p.sleep = sleep
	return p
}

// Do runs op, retrying per the policy. The last failure is returned
// unwrapped once the budget is exhausted. Context cancellation during a
// backoff aborts with ctx.Err().
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	sleep := p.sleep
	if sleep == nil {
		sleep = wait
	}
	delay := p.InitialDelay
	for attempt := 0; ; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if attempt >= p.MaxRetries || p.Retryable == nil || !p.Retryable(err) {
			return zero, err
		}
		if serr := sleep(ctx, delay); serr != nil {
			return zero, serr
		}
		delay *= 2
	}
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
