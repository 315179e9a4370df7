package driven

import (
	"context"

	"github.com/HerbCaudill/journal-calendar/internal/core/domain"
)

// EventFetcher retrieves calendar events for a local calendar date.
//
// date is a "YYYY-MM-DD" string interpreted in the local time zone.
// Implementations validate the date before any network I/O and return
// domain.ErrInvalidDate for malformed or impossible dates.
//
// A 401 from the provider surfaces as domain.ErrAuthExpired so the
// session can fall back to unauthenticated.
type EventFetcher interface {
	// FetchDay fetches one calendar's events for the given date.
	FetchDay(ctx context.Context, tokens *domain.OAuthToken, date, calendarID string) ([]domain.CalendarEvent, error)

	// FetchAll fetches events for the date across every calendar the
	// user can access, merged and sorted by start instant. The call
	// succeeds if at least one calendar succeeds; it fails only when
	// every calendar fails, surfacing the first error.
	FetchAll(ctx context.Context, tokens *domain.OAuthToken, date string) ([]domain.CalendarEvent, error)
}
