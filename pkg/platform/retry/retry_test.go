package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestPolicy_RetriesUntilSuccess(t *testing.T) {
	p := Policy{MaxAttempts: 3}
	calls := 0
	err := p.Do(context.Background(), func(_ context.Context, attempt int) error {
		calls++
		if attempt < 3 {
			return errBoom
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPolicy_ExhaustedReturnsLastError(t *testing.T) {
	p := Policy{MaxAttempts: 3, Backoff: time.Millisecond}
	calls := 0
	err := p.Do(context.Background(), func(context.Context, int) error {
		calls++
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 3, calls)
}

func TestPolicy_NonRetryableStopsImmediately(t *testing.T) {
	p := Policy{MaxAttempts: 3, Retryable: func(error) bool { return false }}
	calls := 0
	err := p.Do(context.Background(), func(context.Context, int) error {
		calls++
		return errBoom
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestPolicy_ZeroValueMakesOneAttempt(t *testing.T) {
	calls := 0
	_ = Policy{}.Do(context.Background(), func(context.Context, int) error {
		calls++
		return errBoom
	})
	assert.Equal(t, 1, calls)
}

func TestPolicy_StopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{MaxAttempts: 5, Backoff: time.Hour}
	calls := 0
	err := p.Do(ctx, func(context.Context, int) error {
		calls++
		cancel()
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, calls)
}
