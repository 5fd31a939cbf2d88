package restclient

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"

	appErrors "github.com/A7maad1/LSA/pkg/errors"
)

// RetryPolicy configures Retry. Attempts counts retries after the first try.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// Enabled reports whether the policy retries at all.
func (p RetryPolicy) Enabled() bool {
	return p.Attempts > 0
}

// Retry runs fn with exponential backoff. Only network and timeout failures
// are retried; backend, parse and validation errors return immediately.
func Retry(ctx context.Context, policy RetryPolicy, fn func(context.Context) error) error {
	if !policy.Enabled() {
		return fn(ctx)
	}
	delay := policy.Delay
	if delay <= 0 {
		delay = time.Second
	}
	backoff := retry.WithMaxRetries(uint64(policy.Attempts), retry.NewExponential(delay))

	var last error
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		last = fn(ctx)
		if last == nil {
			return nil
		}
		if Retryable(last) {
			return retry.RetryableError(last)
		}
		return last
	})
	if err != nil && last != nil {
		return last
	}
	return err
}

// Retryable reports whether err is a transient transport failure.
func Retryable(err error) bool {
	return appErrors.HasCode(err, appErrors.ErrNetwork.Code) || appErrors.HasCode(err, appErrors.ErrTimeout.Code)
}
