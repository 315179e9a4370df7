package driving

import (
	"context"

	"github.com/HerbCaudill/journal-calendar/internal/core/domain"
)

// CalendarSession is the single cohesive contract the UI layer sees:
// authenticate, handle the OAuth callback, fetch events, sign out.
//
// All methods translate low-level failures into short stable error
// strings recorded on the session; none of them panic or leak raw
// provider payloads.
type CalendarSession interface {
	// Initialize probes stored tokens and settles the initial state.
	// Must be called once before any other method.
	Initialize(ctx context.Context) error

	// Reconfigure swaps the OAuth configuration and re-runs the
	// initial probe. This is the only path into or out of the
	// unconfigured state.
	Reconfigure(ctx context.Context, cfg domain.OAuthConfig) error

	// Authenticate starts an authorization flow and returns the
	// provider URL the caller must navigate to.
	Authenticate(ctx context.Context) (string, error)

	// HandleCallback completes the flow with the provider's code and
	// returned state parameter.
	HandleCallback(ctx context.Context, code, returnedState string) error

	// FetchEvents returns the day's events across all calendars.
	// Concurrent calls for the same date share one in-flight request.
	FetchEvents(ctx context.Context, date string) ([]domain.CalendarEvent, error)

	// SignOut revokes tokens best-effort and always clears local state.
	SignOut(ctx context.Context) error

	// State returns the current authentication state.
	State() domain.AuthState

	// LastError returns the last recorded user-facing error string,
	// empty if none.
	LastError() string

	// ClearError clears the recorded error without changing state.
	ClearError()
}
