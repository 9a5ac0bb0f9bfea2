package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grant-workers/internal/common/logger"
)

func TestRetryWithBackoff_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
		}
		return nil
	}, 5, time.Millisecond, logger.NewNoOpLogger(), "postgres")

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoff_StopsOnPermanentError(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), func() error {
		attempts++
		return errors.New("pq: password authentication failed")
	}, 5, time.Millisecond, logger.NewNoOpLogger(), "postgres")

	assert.ErrorContains(t, err, "password authentication failed")
	assert.Equal(t, 1, attempts)
}

func TestRetryWithBackoff_Exhausted(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), func() error {
		attempts++
		return errors.New("rpc error: code = Unavailable")
	}, 3, time.Millisecond, logger.NewNoOpLogger(), "zeebe")

	assert.ErrorContains(t, err, "zeebe failed after retries")
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoff_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return errors.New("i/o timeout")
	}, 5, time.Hour, logger.NewNoOpLogger(), "redis")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsTransient(t *testing.T) {
	tests := map[string]bool{
		"connection refused":                    true,
		"context deadline exceeded":             true,
		"rpc error: code = Unavailable desc = x": true,
		"unexpected EOF":                        true,
		"pq: relation \"x\" does not exist":     false,
		"invalid configuration":                 false,
	}
	for msg, want := range tests {
		assert.Equal(t, want, IsTransient(errors.New(msg)), msg)
	}
}
