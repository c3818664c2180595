package retry

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	defaultAttempts = 3
	defaultDelay    = 100 * time.Millisecond
	defaultMaxDelay = 2 * time.Second
)

type RetryConfig struct {
	Attempts uint
	Delay    time.Duration
	MaxDelay time.Duration
}

func (rc *RetryConfig) ToRetryOptions(ctx context.Context) []retry.Option {
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(rc.Attempts),
		retry.Delay(rc.Delay),
		retry.MaxDelay(rc.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	}
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		Attempts: defaultAttempts,
		Delay:    defaultDelay,
		MaxDelay: defaultMaxDelay,
	}
}

// NewRetryConfig builds a config with the given attempts and base delay,
// falling back to the defaults for zero values
func NewRetryConfig(attempts uint, delay time.Duration) *RetryConfig {
	rc := DefaultRetryConfig()
	if attempts > 0 {
		rc.Attempts = attempts
	}
	if delay > 0 {
		rc.Delay = delay
		rc.MaxDelay = max(rc.MaxDelay, delay*8)
	}
	return rc
}

// Do runs fn until it succeeds, the attempts run out or ctx is done.
// onRetry, when set, is called after every failed attempt.
func Do(ctx context.Context, rc *RetryConfig, fn func() error, onRetry func(attempt uint, err error)) error {
	opts := rc.ToRetryOptions(ctx)
	if onRetry != nil {
		opts = append(opts, retry.OnRetry(onRetry))
	}
	return retry.Do(fn, opts...)
}
