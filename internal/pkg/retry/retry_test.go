package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDoSucceedsAfterFailures(t *testing.T) {
	rc := NewRetryConfig(3, time.Millisecond)

	calls := 0
	var retried []uint
	err := Do(context.Background(), rc, func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}, func(attempt uint, _ error) {
		retried = append(retried, attempt)
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []uint{0, 1}, retried)
}

func TestDoReturnsLastError(t *testing.T) {
	rc := NewRetryConfig(2, time.Millisecond)

	calls := 0
	err := Do(context.Background(), rc, func() error {
		calls++
		return errors.New("still down")
	}, nil)

	assert.EqualError(t, err, "still down")
	assert.Equal(t, 2, calls)
}

func TestNewRetryConfigDefaults(t *testing.T) {
	rc := NewRetryConfig(0, 0)
	assert.Equal(t, uint(defaultAttempts), rc.Attempts)
	assert.Equal(t, defaultDelay, rc.Delay)
	assert.Equal(t, defaultMaxDelay, rc.MaxDelay)
}
