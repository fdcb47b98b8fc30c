package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// instant records every requested delay and fires immediately.
func instant(delays *[]time.Duration) func(time.Duration) <-chan time.Time {
	return func(d time.Duration) <-chan time.Time {
		*delays = append(*delays, d)
		ch := make(chan time.Time, 1)
		ch <- time.Now()
		return ch
	}
}

func TestFetchConfig_AtMostThreeRetries(t *testing.T) {
	var delays []time.Duration
	cfg := FetchConfig()
	cfg.after = instant(&delays)

	calls := 0
	boom := errors.New("fetch failed")
	err := Do(context.Background(), cfg, func() error {
		calls++
		return boom
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 4, calls, "one attempt plus three retries")
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, delays)
}

func TestFetchConfig_NthRetryWaitsNSeconds(t *testing.T) {
	cfg := FetchConfig()
	for n := 1; n <= 3; n++ {
		assert.GreaterOrEqual(t, cfg.DelayFor(n), time.Duration(n)*time.Second)
	}
}

func TestDo_SucceedsAfterRetry(t *testing.T) {
	var delays []time.Duration
	cfg := FetchConfig()
	cfg.after = instant(&delays)

	calls := 0
	err := Do(context.Background(), cfg, func() error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Len(t, delays, 1)
}

func TestDo_CancelledContextStopsPendingRetry(t *testing.T) {
	cfg := FetchConfig()
	cfg.after = func(time.Duration) <-chan time.Time { return make(chan time.Time) }

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	failed := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- Do(ctx, cfg, func() error {
			calls++
			close(failed)
			return errors.New("offline")
		})
	}()

	<-failed
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(time.Second):
		t.Fatal("retry loop did not stop after cancellation")
	}
}

func TestDelayFor_Exponential(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 100*time.Millisecond, cfg.DelayFor(1))
	assert.Equal(t, 200*time.Millisecond, cfg.DelayFor(2))
	assert.Equal(t, 10*time.Second, cfg.DelayFor(20))
}

func TestDoWithLog_ReportsEachFailure(t *testing.T) {
	var delays []time.Duration
	cfg := FetchConfig()
	cfg.after = instant(&delays)

	var attempts []int
	err := DoWithLog(context.Background(), cfg, "calendar", func() error {
		return errors.New("down")
	}, func(attempt int, err error, next time.Duration) {
		attempts = append(attempts, attempt)
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "calendar: max retry attempts (4) exceeded")
	assert.Equal(t, []int{1, 2, 3}, attempts)
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	var delays []time.Duration
	cfg := FetchConfig()
	cfg.after = instant(&delays)

	calls := 0
	denied := errors.New("not found")
	err := Do(context.Background(), cfg, func() error {
		calls++
		return Permanent(denied)
	})

	assert.Same(t, denied, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, delays)
	assert.NoError(t, Permanent(nil))
}
