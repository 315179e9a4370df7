package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"net"
	"time"

	"github.com/HerbCaudill/journal-calendar/internal/core/domain"
)

// Config controls retry behaviour. The zero value is not usable; start
// from DefaultConfig.
type Config struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// InitialDelay is the backoff before the first retry.
	InitialDelay time.Duration
	// MaxDelay caps the computed backoff and any retry-after hint.
	MaxDelay time.Duration
	// Multiplier is the exponential growth factor.
	Multiplier float64
	// JitterFactor adds delay*JitterFactor*rand() on top of the
	// computed backoff to avoid synchronised retry storms.
	JitterFactor float64
	// Retryable decides whether an error is worth retrying.
	// Defaults to DefaultRetryable.
	Retryable func(error) bool

	// Rand and Sleep are injectable for deterministic tests.
	Rand  func() float64
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultConfig returns the retry configuration used by the calendar
// fetcher.
func DefaultConfig() Config {
	return Config{
		MaxRetries:   3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.2,
	}
}

// DefaultRetryable retries rate-limit errors, server errors, and
// network-class errors (timeouts included). Everything else is
// terminal.
func DefaultRetryable(err error) bool {
	if err == nil {
		return false
	}
	var rle *domain.RateLimitError
	if errors.As(err, &rle) {
		return rle.StatusCode == 429 || rle.StatusCode >= 500
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// BackoffDelay computes the wait before retry number attempt (0-based):
// min(initial*multiplier^attempt, max) plus additive jitter.
// Deterministic given a fixed cfg.Rand.
func BackoffDelay(attempt int, cfg Config) time.Duration {
	base := float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(attempt))
	if capd := float64(cfg.MaxDelay); base > capd {
		base = capd
	}
	jitter := base * cfg.JitterFactor * cfg.randFloat()
	return time.Duration(base + jitter)
}

func (c Config) randFloat() float64 {
	if c.Rand != nil {
		return c.Rand()
	}
	return rand.Float64()
}

func (c Config) retryable(err error) bool {
	if c.Retryable != nil {
		return c.Retryable(err)
	}
	return DefaultRetryable(err)
}

func (c Config) sleep(ctx context.Context, d time.Duration) error {
	if c.Sleep != nil {
		return c.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
