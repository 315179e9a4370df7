// Package domain defines the core business entities for the calendar engine.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - OAuthToken: stored OAuth credentials
//   - CalendarEvent: a normalised calendar event
//   - AuthState: the authentication state machine's states
//   - OAuthConfig: provider configuration (client id, redirect URI, scopes)
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
