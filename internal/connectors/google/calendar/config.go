package calendar

import (
	"time"

	"github.com/HerbCaudill/journal-calendar/internal/connectors/google"
	"github.com/HerbCaudill/journal-calendar/internal/retry"
)

// Config holds fetcher configuration.
type Config struct {
	// MaxResults is the page size for API requests.
	MaxResults int64
	// MaxConcurrent bounds simultaneous per-calendar fetches.
	MaxConcurrent int
	// DelayBetweenStarts is the minimum spacing between per-calendar
	// request starts, respecting Google's rate policy.
	DelayBetweenStarts time.Duration
	// RateLimit configures the shared token-bucket limiter.
	RateLimit google.RateLimitConfig
	// Retry configures per-calendar retry behaviour.
	Retry retry.Config
	// Service configures API service construction (endpoint override
	// for tests).
	Service google.ServiceOptions
}

// DefaultConfig returns the defaults used in production: small
// concurrency and conservative spacing, since a journal day view only
// ever needs a handful of calendars.
func DefaultConfig() Config {
	return Config{
		MaxResults:         250,
		MaxConcurrent:      2,
		DelayBetweenStarts: 250 * time.Millisecond,
		RateLimit:          google.DefaultRateLimit,
		Retry:              retry.DefaultConfig(),
	}
}
