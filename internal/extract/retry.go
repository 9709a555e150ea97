package extract

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
)

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}

// withRetry runs fn until it succeeds, returns a non-retryable error, or
// runs out of attempts. Cancelling ctx stops waiting between attempts.
func withRetry(ctx context.Context, retries int, delay time.Duration, fn func() error) error {
	if retries < 0 {
		retries = 0
	}
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(uint(retries)+1),
		retry.Delay(delay),
		retry.MaxDelay(30*time.Second),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.MaxJitter(delay/2+time.Millisecond),
		retry.RetryIf(IsRetryable),
		retry.LastErrorOnly(true),
	)
}
