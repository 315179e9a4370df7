package domain

import "time"

// RefreshBuffer is how long before expiry a token is treated as expired.
// Refreshing ahead of the deadline avoids 401s from in-flight requests.
const RefreshBuffer = 5 * time.Minute

// OAuthToken represents stored OAuth credentials.
type OAuthToken struct {
	// AccessToken is the bearer token for API access.
	AccessToken string `json:"access_token"`
	// RefreshToken is used to obtain new access tokens.
	RefreshToken string `json:"refresh_token,omitempty"`
	// TokenType is typically "Bearer".
	TokenType string `json:"token_type"`
	// Expiry is the absolute instant the access token expires.
	Expiry time.Time `json:"expiry,omitempty"`
}

// IsExpired returns true if the token has expired or expires within
// RefreshBuffer.
func (t *OAuthToken) IsExpired() bool {
	if t.Expiry.IsZero() {
		return false
	}
	return time.Now().After(t.Expiry.Add(-RefreshBuffer))
}

// IsUsable returns true if the token can still authenticate a request
// right now, ignoring the refresh buffer.
func (t *OAuthToken) IsUsable() bool {
	if t.AccessToken == "" {
		return false
	}
	return t.Expiry.IsZero() || time.Now().Before(t.Expiry)
}

// AuthState is the authentication state of a session.
type AuthState string

const (
	// StateUnconfigured means no OAuth client id is configured.
	// Only a configuration change can leave this state.
	StateUnconfigured AuthState = "unconfigured"
	// StateUnauthenticated means no valid tokens are available.
	StateUnauthenticated AuthState = "unauthenticated"
	// StateAuthenticating means an authorization flow is in progress.
	StateAuthenticating AuthState = "authenticating"
	// StateAuthenticated means valid (or refreshable) tokens are stored.
	StateAuthenticated AuthState = "authenticated"
)

// PKCEGrant holds the transient values of a pending authorization flow.
// It lives in session-scoped storage between Authenticate and
// HandleCallback and must be consumed at most once.
type PKCEGrant struct {
	// State is a cryptographically random string used for CSRF protection.
	State string `json:"state"`
	// CodeVerifier is the PKCE code verifier (plain text, not hashed).
	CodeVerifier string `json:"code_verifier"`
}
