package google

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/HerbCaudill/journal-calendar/internal/core/domain"
)

// WrapError classifies a Google API error into the engine's taxonomy:
// 401 becomes domain.ErrAuthExpired (the session must re-authenticate),
// 429 and 5xx become *domain.RateLimitError (the retry layer recognises
// them), everything else passes through.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	switch {
	case gerr.Code == http.StatusUnauthorized:
		return domain.ErrAuthExpired
	case gerr.Code == http.StatusTooManyRequests || gerr.Code >= 500:
		return &domain.RateLimitError{
			StatusCode: gerr.Code,
			RetryAfter: retryAfterHint(gerr),
		}
	default:
		return err
	}
}

// IsAuthExpired returns true if the error indicates invalid or expired
// credentials.
func IsAuthExpired(err error) bool {
	if errors.Is(err, domain.ErrAuthExpired) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusUnauthorized
	}
	return false
}

// retryAfterHint extracts the Retry-After header from a Google API
// error, zero if absent or unparseable. Both header forms are
// accepted: delta seconds and an HTTP date.
func retryAfterHint(gerr *googleapi.Error) time.Duration {
	if gerr.Header == nil {
		return 0
	}
	raw := gerr.Header.Get("Retry-After")
	if raw == "" {
		return 0
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(raw); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
