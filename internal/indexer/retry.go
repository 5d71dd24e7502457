package indexer

import (
	"context"
	"time"

	"poolFeeSync/internal/provider"
)

// RetryPolicy bounds each external call and retries transient failures.
type RetryPolicy struct {
	CallTimeout time.Duration
	MaxRetries  int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy returns the production call policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{CallTimeout: 15 * time.Second, MaxRetries: 2, BaseDelay: 500 * time.Millisecond}
}

func withRetry(ctx context.Context, policy RetryPolicy, fn func(context.Context) error) error {
	maxRetries := policy.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	delay := policy.BaseDelay
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	for attempt := 0; ; attempt++ {
		err := callWithTimeout(ctx, policy.CallTimeout, fn)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries || !provider.IsTransient(err) || ctx.Err() != nil {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
	}
}

func callWithTimeout(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(callCtx)
}
