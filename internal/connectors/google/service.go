package google

import (
	"context"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// ServiceOptions configures calendar service construction. The
// zero value uses Google's production endpoint.
type ServiceOptions struct {
	// Endpoint overrides the API base URL (tests point this at a
	// local httptest server).
	Endpoint string
}

// NewCalendarService creates a Google Calendar API service using the
// provided TokenSource.
func NewCalendarService(ctx context.Context, ts oauth2.TokenSource, opts ServiceOptions) (*calendar.Service, error) {
	clientOpts := []option.ClientOption{option.WithTokenSource(ts)}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}
	return calendar.NewService(ctx, clientOpts...)
}
