package retry

import (
	"context"
	"errors"
	"fmt"

	"github.com/HerbCaudill/journal-calendar/internal/core/domain"
)

// Outcome is the terminal result of a retried operation. Errors never
// propagate past this package in any other form.
type Outcome[T any] struct {
	// Value is the result of the final successful attempt.
	Value T
	// Err is the last error if the operation failed.
	Err error
	// Attempts is how many times the function ran.
	Attempts int
}

// OK reports whether the operation ultimately succeeded.
func (o Outcome[T]) OK() bool {
	return o.Err == nil
}

// Do runs fn up to cfg.MaxRetries+1 times, sleeping the computed
// backoff between attempts. A rate-limit error's retry-after hint is
// honoured in preference to the computed backoff, capped at
// cfg.MaxDelay. Non-retryable errors terminate immediately.
//
// A panic inside fn is captured as a failed outcome.
func Do[T any](ctx context.Context, fn func(ctx context.Context) (T, error), cfg Config) (out Outcome[T]) {
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		value, err := run(ctx, fn)
		out.Attempts = attempt + 1

		if err == nil {
			out.Value = value
			out.Err = nil
			return out
		}
		out.Err = err

		if !cfg.retryable(err) || attempt == cfg.MaxRetries {
			return out
		}

		delay := BackoffDelay(attempt, cfg)
		var rle *domain.RateLimitError
		if errors.As(err, &rle) && rle.RetryAfter > 0 {
			delay = rle.RetryAfter
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}

		if err := cfg.sleep(ctx, delay); err != nil {
			out.Err = err
			return out
		}
	}
	return out
}

// run invokes fn, converting a panic into an error.
func run[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return fn(ctx)
}
