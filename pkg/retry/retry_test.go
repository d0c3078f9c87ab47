package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
	}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastConfig(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_ReturnsLastErrorAfterExhaustion(t *testing.T) {
	lastErr := errors.New("still down")
	attempts := 0
	err := Do(context.Background(), fastConfig(), func() error {
		attempts++
		return lastErr
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, lastErr)
	assert.Equal(t, 3, attempts)
}

func TestDo_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	err := Do(ctx, Config{MaxAttempts: 100, InitialDelay: 10 * time.Millisecond, MaxDelay: 10 * time.Millisecond}, func() error {
		attempts++
		if attempts == 1 {
			cancel()
		}
		return errors.New("transient")
	})

	require.Error(t, err)
	assert.Less(t, attempts, 100)
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	got, err := DoWithResult(context.Background(), fastConfig(), func() (int, error) {
		attempts++
		if attempts < 2 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
}
