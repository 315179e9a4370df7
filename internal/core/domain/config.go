package domain

// Google OAuth endpoints. Overridable per config for custom OAuth
// servers and tests.
const (
	DefaultAuthURL = "https://accounts.google.com/o/oauth2/v2/auth"
	//nolint:gosec // G101: Not credentials, OAuth endpoint URL
	DefaultTokenURL  = "https://oauth2.googleapis.com/token"
	DefaultRevokeURL = "https://oauth2.googleapis.com/revoke"
)

// DefaultScopes are the calendar scopes requested during authorization.
// Read-only: the engine never writes calendar data.
var DefaultScopes = []string{
	"https://www.googleapis.com/auth/calendar.readonly",
	"https://www.googleapis.com/auth/calendar.events.readonly",
}

// OAuthConfig holds OAuth application configuration.
// ClientID and RedirectURI are overridable per call and fall back to
// the process-wide configuration file.
type OAuthConfig struct {
	// ClientID is the OAuth client ID from the developer console.
	ClientID string `json:"client_id"`
	// RedirectURI is the callback URI the provider redirects to.
	RedirectURI string `json:"redirect_uri"`
	// Scopes are the OAuth scopes to request.
	Scopes []string `json:"scopes,omitempty"`
	// AuthURL is the authorization endpoint (optional override).
	AuthURL string `json:"auth_url,omitempty"`
	// TokenURL is the token exchange endpoint (optional override).
	TokenURL string `json:"token_url,omitempty"`
	// RevokeURL is the token revocation endpoint (optional override).
	RevokeURL string `json:"revoke_url,omitempty"`
}

// IsConfigured returns true if a client id is present.
func (c OAuthConfig) IsConfigured() bool {
	return c.ClientID != ""
}

// WithDefaults returns a copy with empty fields filled from the Google
// defaults.
func (c OAuthConfig) WithDefaults() OAuthConfig {
	out := c
	if out.AuthURL == "" {
		out.AuthURL = DefaultAuthURL
	}
	if out.TokenURL == "" {
		out.TokenURL = DefaultTokenURL
	}
	if out.RevokeURL == "" {
		out.RevokeURL = DefaultRevokeURL
	}
	if len(out.Scopes) == 0 {
		out.Scopes = DefaultScopes
	}
	return out
}
