package retry

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/HerbCaudill/journal-calendar/internal/core/domain"
)

func fixedRand(v float64) func() float64 {
	return func() float64 { return v }
}

func TestBackoffDelay_ExponentialGrowth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rand = fixedRand(0) // no jitter

	assert.Equal(t, 500*time.Millisecond, BackoffDelay(0, cfg))
	assert.Equal(t, 1*time.Second, BackoffDelay(1, cfg))
	assert.Equal(t, 2*time.Second, BackoffDelay(2, cfg))
	assert.Equal(t, 4*time.Second, BackoffDelay(3, cfg))
}

func TestBackoffDelay_CappedAtMax(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rand = fixedRand(0)

	// 500ms * 2^10 would be ~512s; the cap is 30s.
	assert.Equal(t, 30*time.Second, BackoffDelay(10, cfg))
}

func TestBackoffDelay_JitterIsAdditiveAndBounded(t *testing.T) {
	cfg := DefaultConfig()

	low := BackoffDelay(1, withRand(cfg, 0))
	high := BackoffDelay(1, withRand(cfg, 1))

	assert.Equal(t, 1*time.Second, low)
	// Full jitter adds base*JitterFactor on top.
	assert.Equal(t, 1200*time.Millisecond, high)
}

func withRand(cfg Config, v float64) Config {
	cfg.Rand = fixedRand(v)
	return cfg
}

func TestDefaultRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", &domain.RateLimitError{StatusCode: 429}, true},
		{"server error", &domain.RateLimitError{StatusCode: 503}, true},
		{"client error status", &domain.RateLimitError{StatusCode: 403}, false},
		{"network timeout", &net.DNSError{IsTimeout: true}, true},
		{"plain error", errors.New("nope"), false},
		{"auth expired", domain.ErrAuthExpired, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DefaultRetryable(tc.err))
		})
	}
}
