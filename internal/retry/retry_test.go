package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HerbCaudill/journal-calendar/internal/core/domain"
)

// noSleep records requested delays without waiting.
func noSleep(delays *[]time.Duration) func(ctx context.Context, d time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sleep = func(context.Context, time.Duration) error {
		t.Fatal("should not sleep on success")
		return nil
	}

	out := Do(context.Background(), func(context.Context) (int, error) {
		return 42, nil
	}, cfg)

	require.True(t, out.OK())
	assert.Equal(t, 42, out.Value)
	assert.Equal(t, 1, out.Attempts)
}

func TestDo_RetriesThenSucceeds(t *testing.T) {
	var delays []time.Duration
	cfg := DefaultConfig()
	cfg.Rand = func() float64 { return 0 }
	cfg.Sleep = noSleep(&delays)

	calls := 0
	out := Do(context.Background(), func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", &domain.RateLimitError{StatusCode: 503}
		}
		return "ok", nil
	}, cfg)

	require.True(t, out.OK())
	assert.Equal(t, "ok", out.Value)
	assert.Equal(t, 3, out.Attempts)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, 1 * time.Second}, delays)
}

func TestDo_ExhaustsRetries(t *testing.T) {
	var delays []time.Duration
	cfg := DefaultConfig()
	cfg.Rand = func() float64 { return 0 }
	cfg.Sleep = noSleep(&delays)

	wantErr := &domain.RateLimitError{StatusCode: 429}
	out := Do(context.Background(), func(context.Context) (int, error) {
		return 0, wantErr
	}, cfg)

	require.False(t, out.OK())
	assert.Equal(t, 4, out.Attempts) // first attempt + 3 retries
	assert.Len(t, delays, 3)
	var rle *domain.RateLimitError
	assert.True(t, errors.As(out.Err, &rle))
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sleep = func(context.Context, time.Duration) error {
		t.Fatal("should not sleep for terminal errors")
		return nil
	}

	out := Do(context.Background(), func(context.Context) (int, error) {
		return 0, domain.ErrAuthExpired
	}, cfg)

	require.False(t, out.OK())
	assert.Equal(t, 1, out.Attempts)
	assert.ErrorIs(t, out.Err, domain.ErrAuthExpired)
}

func TestDo_HonoursRetryAfterHint(t *testing.T) {
	var delays []time.Duration
	cfg := DefaultConfig()
	cfg.Rand = func() float64 { return 0 }
	cfg.Sleep = noSleep(&delays)
	cfg.MaxRetries = 1

	out := Do(context.Background(), func(context.Context) (int, error) {
		return 0, &domain.RateLimitError{StatusCode: 429, RetryAfter: 7 * time.Second}
	}, cfg)

	require.False(t, out.OK())
	assert.Equal(t, []time.Duration{7 * time.Second}, delays)
}

func TestDo_RetryAfterCappedAtMaxDelay(t *testing.T) {
	var delays []time.Duration
	cfg := DefaultConfig()
	cfg.Sleep = noSleep(&delays)
	cfg.MaxRetries = 1

	out := Do(context.Background(), func(context.Context) (int, error) {
		return 0, &domain.RateLimitError{StatusCode: 429, RetryAfter: 10 * time.Minute}
	}, cfg)

	require.False(t, out.OK())
	assert.Equal(t, []time.Duration{cfg.MaxDelay}, delays)
}

func TestDo_CancelledContextStopsRetrying(t *testing.T) {
	cfg := DefaultConfig()
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	out := Do(ctx, func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, &domain.RateLimitError{StatusCode: 503}
	}, cfg)

	require.False(t, out.OK())
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, out.Err, context.Canceled)
}

func TestDo_PanicBecomesError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRetries = 0

	out := Do(context.Background(), func(context.Context) (int, error) {
		panic("boom")
	}, cfg)

	require.False(t, out.OK())
	assert.Contains(t, out.Err.Error(), "boom")
}
